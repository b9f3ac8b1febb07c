package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/storage/memory"
	"github.com/taskwell/taskwell/internal/store"
)

func newStore(t *testing.T) (*store.Store, *memory.Store) {
	t.Helper()
	blobs := memory.NewStore()
	s := store.New(blobs, store.LocalPath)
	require.NoError(t, s.Load(context.Background()))
	return s, blobs
}

func mustUpsert(t *testing.T, s *store.Store, task *domain.Task) *domain.Task {
	t.Helper()
	saved, err := s.Upsert(context.Background(), task)
	require.NoError(t, err)
	return saved
}

func TestLoadMissingBlobIsEmptyCollection(t *testing.T) {
	blobs := memory.NewStore()
	s := store.New(blobs, store.LocalPath)
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.All())
}

func TestUpsertAssignsIDAndPersists(t *testing.T) {
	s, blobs := newStore(t)
	ctx := context.Background()

	saved := mustUpsert(t, s, &domain.Task{Title: "buy milk"})
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.CreatedAt)

	// A fresh store over the same blob sees the write.
	reloaded := store.New(blobs, store.LocalPath)
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Title)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)
}

func TestUpsertKeepsCreatedAtOnUpdate(t *testing.T) {
	s, _ := newStore(t)

	saved := mustUpsert(t, s, &domain.Task{Title: "v1"})
	saved.Title = "v2"
	saved.CreatedAt = ""
	updated := mustUpsert(t, s, saved)

	assert.Equal(t, "v2", updated.Title)
	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.CreatedAt)
}

func TestGetMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	saved := mustUpsert(t, s, &domain.Task{Title: "original"})

	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func TestDeleteCascades(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	parent := mustUpsert(t, s, &domain.Task{Title: "parent"})
	child1 := mustUpsert(t, s, &domain.Task{Title: "child 1", ParentID: parent.ID})
	mustUpsert(t, s, &domain.Task{Title: "child 2", ParentID: parent.ID})
	mustUpsert(t, s, &domain.Task{Title: "grandchild", ParentID: child1.ID})
	bystander := mustUpsert(t, s, &domain.Task{Title: "bystander"})

	removed, err := s.Delete(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	_, err = s.Get(parent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(bystander.ID)
	assert.NoError(t, err)
}

func TestDeleteTwoChildrenRemovesThree(t *testing.T) {
	s, _ := newStore(t)

	parent := mustUpsert(t, s, &domain.Task{Title: "parent"})
	mustUpsert(t, s, &domain.Task{Title: "a", ParentID: parent.ID})
	mustUpsert(t, s, &domain.Task{Title: "b", ParentID: parent.ID})

	removed, err := s.Delete(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestDeleteMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChildrenOfOrdersBySort(t *testing.T) {
	s, _ := newStore(t)

	parent := mustUpsert(t, s, &domain.Task{Title: "parent"})
	mustUpsert(t, s, &domain.Task{Title: "third", ParentID: parent.ID, Sort: 30})
	mustUpsert(t, s, &domain.Task{Title: "first", ParentID: parent.ID, Sort: 10})
	mustUpsert(t, s, &domain.Task{Title: "second", ParentID: parent.ID, Sort: 20})

	children := s.ChildrenOf(parent.ID)
	require.Len(t, children, 3)
	assert.Equal(t, "first", children[0].Title)
	assert.Equal(t, "second", children[1].Title)
	assert.Equal(t, "third", children[2].Title)
}

func TestRenumberSiblings(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	parent := mustUpsert(t, s, &domain.Task{Title: "parent"})
	mustUpsert(t, s, &domain.Task{Title: "a", ParentID: parent.ID, Sort: 7})
	mustUpsert(t, s, &domain.Task{Title: "b", ParentID: parent.ID, Sort: 19})
	mustUpsert(t, s, &domain.Task{Title: "c", ParentID: parent.ID, Sort: 1000})

	require.NoError(t, s.RenumberSiblings(ctx, parent.ID))

	children := s.ChildrenOf(parent.ID)
	require.Len(t, children, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{children[0].Sort, children[1].Sort, children[2].Sort})
	assert.Equal(t, "a", children[0].Title)
}

func TestRoots(t *testing.T) {
	s, _ := newStore(t)

	r1 := mustUpsert(t, s, &domain.Task{Title: "root 1", Sort: 20})
	r2 := mustUpsert(t, s, &domain.Task{Title: "root 2", Sort: 10})
	mustUpsert(t, s, &domain.Task{Title: "child", ParentID: r1.ID})

	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, r2.ID, roots[0].ID)
	assert.Equal(t, r1.ID, roots[1].ID)
}

func TestChildrenForOccurrence(t *testing.T) {
	s, _ := newStore(t)

	parent := mustUpsert(t, s, &domain.Task{
		Title:  "weekly review",
		Date:   "2024-01-01",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatWeekly},
	})
	stepA := mustUpsert(t, s, &domain.Task{Title: "collect notes", ParentID: parent.ID, Sort: 10})
	stepB := mustUpsert(t, s, &domain.Task{Title: "file summary", ParentID: parent.ID, Sort: 20})

	key := domain.OccurrenceKey{TemplateID: parent.ID, Date: "2024-01-08"}

	t.Run("pure ghosts", func(t *testing.T) {
		children := s.ChildrenForOccurrence(key)
		require.Len(t, children, 2)
		assert.Equal(t, stepA.ID+"_2024-01-08", children[0].ID)
		assert.Equal(t, key.String(), children[0].ParentID)
		assert.Equal(t, "collect notes", children[0].Title)
		assert.Equal(t, stepB.ID+"_2024-01-08", children[1].ID)
	})

	t.Run("persisted child shadows its ghost", func(t *testing.T) {
		edited := &domain.Task{
			ID:       stepA.ID + "_2024-01-08",
			Title:    "collect notes (edited)",
			ParentID: key.String(),
			Sort:     10,
		}
		mustUpsert(t, s, edited)

		children := s.ChildrenForOccurrence(key)
		require.Len(t, children, 2)
		assert.Equal(t, "collect notes (edited)", children[0].Title)
		assert.Equal(t, stepB.ID+"_2024-01-08", children[1].ID)
	})
}
