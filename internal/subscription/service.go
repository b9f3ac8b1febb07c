// Package subscription manages externally sourced calendars: their
// metadata, their per-subscription backing collections, the merged
// read view over local and subscribed tasks, and the refresh cycle.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/httpfetch"
	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/store"
)

// MetadataPath is the blob holding the subscription metadata set.
const MetadataPath = "ics-subscriptions.json"

// TaskPath returns the blob path of a subscription's backing
// collection.
func TaskPath(subID string) string {
	return "subscribe/" + subID + ".json"
}

// Fetcher downloads a feed document.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Service wires the subscription flows over a BlobStore.
type Service struct {
	blobs   storage.BlobStore
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	// Serializes the load-mutate-save cycle on the metadata set. Cron
	// jobs run on their own goroutines, so overlapping refreshes would
	// otherwise overwrite each other's recorded status.
	syncMu sync.Mutex
}

// NewService creates a subscription service. logger may be nil.
func NewService(blobs storage.BlobStore, fetcher Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{blobs: blobs, fetcher: fetcher, logger: logger, now: time.Now}
}

// NewServiceAt is NewService with an injected clock.
func NewServiceAt(blobs storage.BlobStore, fetcher Fetcher, logger *slog.Logger, now func() time.Time) *Service {
	s := NewService(blobs, fetcher, logger)
	s.now = now
	return s
}

// LoadSubscriptions reads the metadata set. A missing blob is an empty
// set.
func (s *Service) LoadSubscriptions(ctx context.Context) (*domain.SubscriptionSet, error) {
	set := &domain.SubscriptionSet{Subscriptions: make(map[string]*domain.Subscription)}

	data, err := s.blobs.Read(ctx, MetadataPath)
	if errors.Is(err, storage.ErrNotFound) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}
	if set.Subscriptions == nil {
		set.Subscriptions = make(map[string]*domain.Subscription)
	}
	return set, nil
}

// SaveSubscriptions persists the metadata set.
func (s *Service) SaveSubscriptions(ctx context.Context, set *domain.SubscriptionSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	if err := s.blobs.Write(ctx, MetadataPath, data); err != nil {
		return fmt.Errorf("failed to save subscriptions: %w", err)
	}
	return nil
}

// Add registers a subscription, normalizing its URL scheme and
// assigning an id when needed. A project is required.
func (s *Service) Add(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	if sub.ProjectID == "" {
		return nil, domain.ErrProjectRequired
	}

	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	added := *sub
	if added.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate subscription id: %w", err)
		}
		added.ID = id.String()
	}
	added.URL = httpfetch.NormalizeURL(added.URL)
	if added.Interval == "" {
		added.Interval = domain.SyncDaily
	}
	if added.CreatedAt == "" {
		added.CreatedAt = s.now().Format(time.RFC3339)
	}

	set.Subscriptions[added.ID] = &added
	if err := s.SaveSubscriptions(ctx, set); err != nil {
		return nil, err
	}
	return &added, nil
}

// Remove drops a subscription's metadata and its backing collection.
func (s *Service) Remove(ctx context.Context, subID string) error {
	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}
	if _, ok := set.Subscriptions[subID]; !ok {
		return fmt.Errorf("subscription %s: %w", subID, domain.ErrNotFound)
	}
	delete(set.Subscriptions, subID)
	if err := s.SaveSubscriptions(ctx, set); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, TaskPath(subID)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete subscription tasks: %w", err)
	}
	return nil
}

// UpdateTaskMetadata restamps every task in the subscription's backing
// collection with the subscription's current project, category,
// priority, and tags.
func (s *Service) UpdateTaskMetadata(ctx context.Context, sub *domain.Subscription) error {
	tasks, err := s.loadTasks(ctx, sub.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	for _, t := range tasks {
		t.ProjectID = sub.ProjectID
		t.CategoryID = sub.CategoryID
		t.Prio = sub.Prio
		if t.Prio == "" {
			t.Prio = domain.PriorityNone
		}
		t.Tags = append([]string(nil), sub.TagIDs...)
	}
	return s.saveTasks(ctx, sub.ID, tasks)
}

// loadTasks reads a subscription's backing collection. Missing or
// undecodable blobs degrade to an empty collection; a feed problem must
// not break the merged view.
func (s *Service) loadTasks(ctx context.Context, subID string) (map[string]*domain.Task, error) {
	data, err := s.blobs.Read(ctx, TaskPath(subID))
	if errors.Is(err, storage.ErrNotFound) {
		return make(map[string]*domain.Task), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription tasks: %w", err)
	}

	tasks, err := store.DecodeCollection(data)
	if err != nil {
		s.logger.Warn("dropping undecodable subscription collection",
			"subscription", subID, "error", err)
		return make(map[string]*domain.Task), nil
	}
	return tasks, nil
}

func (s *Service) saveTasks(ctx context.Context, subID string, tasks map[string]*domain.Task) error {
	data, err := store.EncodeCollection(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode subscription tasks: %w", err)
	}
	if err := s.blobs.Write(ctx, TaskPath(subID), data); err != nil {
		return fmt.Errorf("failed to save subscription tasks: %w", err)
	}
	return nil
}
