// Package compliance holds a shared test suite that every BlobStore
// backend must pass.
package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/storage"
)

// RunBlobStoreComplianceTest runs a standard set of tests against a
// BlobStore implementation. setup returns a fresh (empty) store for
// each subtest plus a teardown func.
func RunBlobStoreComplianceTest(t *testing.T, setup func(t *testing.T) (storage.BlobStore, func())) {
	t.Run("WriteAndRead", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		content := []byte(`{"tasks":[]}`)
		require.NoError(t, store.Write(ctx, "reminder.json", content))

		got, err := store.Read(ctx, "reminder.json")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("WriteOverwrites", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, "reminder.json", []byte("v1")))
		require.NoError(t, store.Write(ctx, "reminder.json", []byte("v2")))

		got, err := store.Read(ctx, "reminder.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("ReadMissing", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		_, err := store.Read(context.Background(), "does-not-exist.json")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, "reminder.json", []byte("x")))
		require.NoError(t, store.Delete(ctx, "reminder.json"))

		_, err := store.Read(ctx, "reminder.json")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		err := store.Delete(context.Background(), "does-not-exist.json")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("NestedPaths", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, "subscribe/abc.json", []byte("sub")))

		got, err := store.Read(ctx, "subscribe/abc.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("sub"), got)
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, "reminder.json", []byte("a")))
		require.NoError(t, store.Write(ctx, "subscribe/one.json", []byte("b")))
		require.NoError(t, store.Write(ctx, "subscribe/two.json", []byte("c")))

		paths, err := store.List(ctx, "subscribe/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"subscribe/one.json", "subscribe/two.json"}, paths)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"reminder.json", "subscribe/one.json", "subscribe/two.json"}, all)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		paths, err := store.List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})
}
