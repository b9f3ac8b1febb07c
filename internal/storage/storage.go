// Package storage defines the blob persistence boundary. Task data is
// stored as whole JSON documents addressed by slash-separated paths, so
// backends only need to move opaque bytes.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read and Delete when no blob exists at the
// given path.
var ErrNotFound = errors.New("blob not found")

// BlobStore is the persistence interface all backends implement.
// Paths use forward slashes regardless of backend (e.g. "reminder.json",
// "subscribe/abc.json").
type BlobStore interface {
	// Read returns the full content of the blob at path, or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores content at path, creating or replacing the blob.
	Write(ctx context.Context, path string, content []byte) error

	// Delete removes the blob at path. Deleting a missing blob returns
	// ErrNotFound.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all blobs whose path starts with prefix,
	// in unspecified order. An empty prefix lists everything.
	List(ctx context.Context, prefix string) ([]string, error)
}
