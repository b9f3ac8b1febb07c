package fs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/storage/compliance"
	"github.com/taskwell/taskwell/internal/storage/fs"
)

func TestFSStoreCompliance(t *testing.T) {
	compliance.RunBlobStoreComplianceTest(t, func(t *testing.T) (storage.BlobStore, func()) {
		store, err := fs.NewStore(t.TempDir())
		require.NoError(t, err)
		return store, func() {}
	})
}
