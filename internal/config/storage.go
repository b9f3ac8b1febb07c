package config

import (
	"context"
	"fmt"

	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/storage/fs"
	"github.com/taskwell/taskwell/internal/storage/gcs"
	"github.com/taskwell/taskwell/internal/storage/memory"
	"github.com/taskwell/taskwell/internal/storage/sqlite"
)

// OpenStore builds the blob store the config names. The returned close
// function is never nil.
func (c *Config) OpenStore(ctx context.Context) (storage.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch c.StorageType {
	case "memory":
		return memory.NewStore(), noop, nil

	case "fs":
		store, err := fs.NewStore(c.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open fs storage: %w", err)
		}
		return store, noop, nil

	case "sqlite":
		store, err := sqlite.NewStore(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return store, store.Close, nil

	case "gcs":
		store, err := gcs.NewStore(ctx, c.GCSBucket, c.GCSPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gcs storage: %w", err)
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", c.StorageType)
	}
}
