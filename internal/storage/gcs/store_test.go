package gcs_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/storage/compliance"
	"github.com/taskwell/taskwell/internal/storage/gcs"
)

// Requires a real bucket and ambient credentials. Skipped unless
// TASKWELL_TEST_GCS_BUCKET is set.
func TestGCSStoreCompliance(t *testing.T) {
	bucket := os.Getenv("TASKWELL_TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TASKWELL_TEST_GCS_BUCKET not set")
	}

	compliance.RunBlobStoreComplianceTest(t, func(t *testing.T) (storage.BlobStore, func()) {
		ctx := context.Background()
		// Random prefix per subtest keeps runs isolated in a shared bucket.
		store, err := gcs.NewStore(ctx, bucket, "compliance-"+uuid.New().String())
		require.NoError(t, err)
		return store, func() {
			paths, err := store.List(ctx, "")
			if err == nil {
				for _, p := range paths {
					_ = store.Delete(ctx, p)
				}
			}
			store.Close()
		}
	})
}
