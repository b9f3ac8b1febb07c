// Package gcs is a Google Cloud Storage backed BlobStore.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	blobstorage "github.com/taskwell/taskwell/internal/storage"
)

// Store persists blobs as objects in a GCS bucket under an optional
// key prefix.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a GCS store. The client authenticates via the
// ambient environment (e.g. GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{client: client, bucket: bucketName, prefix: prefix}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectName(path string) string {
	return s.prefix + path
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(path))
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, blobstorage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, path string, content []byte) error {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(path))
	w := obj.NewWriter(ctx)
	if _, err := w.Write(content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(path))
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return blobstorage.ErrNotFound
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix: s.objectName(prefix),
	})

	var paths []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		paths = append(paths, strings.TrimPrefix(attrs.Name, s.prefix))
	}
	return paths, nil
}
