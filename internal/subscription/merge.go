package subscription

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/recurring"
	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/store"
)

// MergedView returns the combined collection: local tasks plus every
// enabled subscription's tasks stamped as subscribed. Reading has two
// write side effects on the backing collections: non-repeating
// subscribed tasks whose dates have fully passed are marked completed,
// and repeating ones get their already-past occurrences (over the next
// year's expansion window) added to completedInstances. Both rewrites
// keep a feed's noise out of overdue listings across restarts.
func (s *Service) MergedView(ctx context.Context) (map[string]*domain.Task, error) {
	merged, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}

	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := dateutil.FormatDate(now)
	horizon, err := dateutil.AddDays(today, 365)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expansion horizon: %w", err)
	}

	subs := set.Enabled()
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	for _, sub := range subs {
		tasks, err := s.loadTasks(ctx, sub.ID)
		if err != nil {
			return nil, err
		}

		updated := false
		for _, t := range tasks {
			if t.Repeating() {
				occs, err := recurring.Expand(t, today, horizon, recurring.Options{})
				if err == nil {
					for _, occ := range occs {
						if !occ.Completed && occ.IsPast(now) {
							t.Repeat.MarkInstanceCompleted(occ.Key.Date, "")
							updated = true
						}
					}
				}
			} else if !t.Completed && t.IsPast(now) {
				t.Completed = true
				updated = true
			}

			if old, ok := merged[t.ID]; ok {
				s.logger.Warn("subscribed task shadows an existing record",
					"id", t.ID, "subscription", sub.ID, "shadowed", old.Title)
			}
			view := t.Clone()
			view.IsSubscribed = true
			view.SubscriptionID = sub.ID
			merged[t.ID] = view
		}

		if updated {
			if err := s.saveTasks(ctx, sub.ID, tasks); err != nil {
				return nil, err
			}
		}
	}

	return merged, nil
}

func (s *Service) loadLocal(ctx context.Context) (map[string]*domain.Task, error) {
	data, err := s.blobs.Read(ctx, store.LocalPath)
	if errors.Is(err, storage.ErrNotFound) {
		return make(map[string]*domain.Task), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load local collection: %w", err)
	}
	tasks, err := store.DecodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode local collection: %w", err)
	}
	return tasks, nil
}

// OrphanedError reports merged-view records that referenced
// subscriptions missing from the metadata set at save time. The save
// itself completes; the orphans are the only records not written.
type OrphanedError struct {
	// TaskIDs per unknown subscription id.
	Orphans map[string][]string
}

func (e *OrphanedError) Error() string {
	var parts []string
	for subID, ids := range e.Orphans {
		parts = append(parts, fmt.Sprintf("%s (%d tasks)", subID, len(ids)))
	}
	sort.Strings(parts)
	return "tasks reference unknown subscriptions: " + strings.Join(parts, ", ")
}

// SplitAndSave partitions a merged collection back onto its sources:
// unsubscribed records to the local collection, subscribed ones to
// their subscription's backing collection with the transient
// isSubscribed stamp stripped. Records naming a subscription that no
// longer exists are not written anywhere; they are reported via
// *OrphanedError after everything else is saved.
func (s *Service) SplitAndSave(ctx context.Context, all map[string]*domain.Task) error {
	local := make(map[string]*domain.Task)
	bySub := make(map[string]map[string]*domain.Task)

	for id, t := range all {
		if t.IsSubscribed && t.SubscriptionID != "" {
			clean := t.Clone()
			clean.IsSubscribed = false
			if bySub[t.SubscriptionID] == nil {
				bySub[t.SubscriptionID] = make(map[string]*domain.Task)
			}
			bySub[t.SubscriptionID][id] = clean
		} else {
			local[id] = t.Clone()
		}
	}

	data, err := store.EncodeCollection(local)
	if err != nil {
		return fmt.Errorf("failed to encode local collection: %w", err)
	}
	if err := s.blobs.Write(ctx, store.LocalPath, data); err != nil {
		return fmt.Errorf("failed to save local collection: %w", err)
	}

	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}

	orphans := make(map[string][]string)
	for subID, tasks := range bySub {
		if _, ok := set.Subscriptions[subID]; !ok {
			ids := make([]string, 0, len(tasks))
			for id := range tasks {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			orphans[subID] = ids
			continue
		}
		if err := s.saveTasks(ctx, subID, tasks); err != nil {
			return err
		}
	}

	if len(orphans) > 0 {
		return &OrphanedError{Orphans: orphans}
	}
	return nil
}
