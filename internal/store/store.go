// Package store owns the persisted template collection: a single JSON
// document of tasks keyed by id, with parent/child links forming a
// forest.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/storage"
)

// LocalPath is the blob path of the user's own task collection.
const LocalPath = "reminder.json"

// Store is the in-memory working copy of one collection blob. All
// mutating operations persist the whole collection before returning, so
// the blob is always a complete snapshot. Safe for concurrent use; writes
// are serialized.
type Store struct {
	blobs storage.BlobStore
	path  string

	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// New creates a store over the collection blob at path. Call Load before
// anything else.
func New(blobs storage.BlobStore, path string) *Store {
	return &Store{blobs: blobs, path: path, tasks: make(map[string]*domain.Task)}
}

// Load reads the collection from storage. A missing blob is an empty
// collection, not an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.blobs.Read(ctx, s.path)
	if errors.Is(err, storage.ErrNotFound) {
		s.tasks = make(map[string]*domain.Task)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	tasks, err := DecodeCollection(data)
	if err != nil {
		return fmt.Errorf("failed to decode collection: %w", err)
	}
	s.tasks = tasks
	return nil
}

// save persists the collection. Callers hold the write lock.
func (s *Store) save(ctx context.Context) error {
	data, err := EncodeCollection(s.tasks)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := s.blobs.Write(ctx, s.path, data); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

// Upsert inserts or replaces a task and persists the collection. A task
// without an id is assigned one; CreatedAt is stamped on first insert.
func (s *Store) Upsert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := task.Clone()
	if t.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate task id: %w", err)
		}
		t.ID = id.String()
	}
	if t.CreatedAt == "" {
		if existing, ok := s.tasks[t.ID]; ok && existing.CreatedAt != "" {
			t.CreatedAt = existing.CreatedAt
		} else {
			t.CreatedAt = time.Now().Format(time.RFC3339)
		}
	}

	s.tasks[t.ID] = t
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// Delete removes the task and every descendant, persists the collection,
// and returns how many templates were removed. The cascade is
// irreversible and unscoped by date, so interactive callers confirm
// first.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return 0, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	removed := s.removeSubtree(id)
	if err := s.save(ctx); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) removeSubtree(id string) int {
	var childIDs []string
	for _, t := range s.tasks {
		if t.ParentID == id {
			childIDs = append(childIDs, t.ID)
		}
	}

	removed := 1
	delete(s.tasks, id)
	for _, cid := range childIDs {
		removed += s.removeSubtree(cid)
	}
	return removed
}

// All returns copies of every task, in no particular order.
func (s *Store) All() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Roots returns the tasks without a parent, ordered by sort key.
func (s *Store) Roots() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Task
	for _, t := range s.tasks {
		if t.ParentID == "" {
			out = append(out, t.Clone())
		}
	}
	sortSiblings(out)
	return out
}

// ChildrenOf returns the direct children of parentID, ordered by sort
// key.
func (s *Store) ChildrenOf(parentID string) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childrenOfLocked(parentID)
}

func (s *Store) childrenOfLocked(parentID string) []*domain.Task {
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.ParentID == parentID {
			out = append(out, t.Clone())
		}
	}
	sortSiblings(out)
	return out
}

// RenumberSiblings rewrites the sort keys of parentID's children (or the
// roots, for an empty parentID) as dense multiples of 10 in their current
// order, leaving gaps for future insertions.
func (s *Store) RenumberSiblings(ctx context.Context, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	siblings := s.childrenOfLocked(parentID)
	for i, sib := range siblings {
		s.tasks[sib.ID].Sort = (i + 1) * 10
	}
	return s.save(ctx)
}

// ChildrenForOccurrence resolves the child list shown under one
// occurrence of a recurring parent: children persisted directly under the
// occurrence id, plus per-date ghosts synthesized from the template's
// children. A persisted child shadows the ghost that shares its id.
func (s *Store) ChildrenForOccurrence(key domain.OccurrenceKey) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occID := key.String()
	out := s.childrenOfLocked(occID)

	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[c.ID] = true
	}

	for _, child := range s.childrenOfLocked(key.TemplateID) {
		ghostID := domain.OccurrenceKey{TemplateID: child.ID, Date: key.Date}.String()
		if seen[ghostID] {
			continue
		}
		ghost := child.Clone()
		ghost.ID = ghostID
		ghost.ParentID = occID
		out = append(out, ghost)
	}

	sortSiblings(out)
	return out
}

func sortSiblings(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Sort != tasks[j].Sort {
			return tasks[i].Sort < tasks[j].Sort
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// DecodeCollection parses a collection blob: a JSON object keyed by task
// id.
func DecodeCollection(data []byte) (map[string]*domain.Task, error) {
	tasks := make(map[string]*domain.Task)
	if len(data) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	for id, t := range tasks {
		if t == nil {
			delete(tasks, id)
			continue
		}
		// The key is authoritative when a record's id field drifted.
		t.ID = id
	}
	return tasks, nil
}

// EncodeCollection renders a collection blob.
func EncodeCollection(tasks map[string]*domain.Task) ([]byte, error) {
	return json.MarshalIndent(tasks, "", "  ")
}
