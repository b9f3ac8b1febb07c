package subscription

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/ics"
)

// SyncResult is the outcome of refreshing one subscription.
type SyncResult struct {
	SubscriptionID string
	Name           string
	EventsCount    int
	Err            error
}

// SyncReport aggregates one SyncAll pass.
type SyncReport struct {
	Succeeded int
	Failed    int
	Results   []SyncResult
}

// Sync refreshes one subscription: fetch, parse, convert, and replace
// the backing collection wholesale. An empty feed empties the
// collection. The metadata set is not touched; SyncAll owns status
// bookkeeping.
func (s *Service) Sync(ctx context.Context, sub *domain.Subscription) (int, error) {
	body, err := s.fetcher.FetchText(ctx, sub.URL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}

	events, err := ics.Parse(body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	tasks := make(map[string]*domain.Task, len(events))
	for _, t := range ics.ConvertEvents(events, sub, s.now()) {
		tasks[t.ID] = t
	}
	if err := s.saveTasks(ctx, sub.ID, tasks); err != nil {
		return 0, err
	}

	s.logger.Info("synced subscription",
		"subscription", sub.ID, "name", sub.Name, "events", len(events))
	return len(events), nil
}

// SyncAndRecord refreshes one subscription by id and records its status
// in the metadata set. Refreshes are serialized; a scheduled job never
// clobbers another job's freshly written status.
func (s *Service) SyncAndRecord(ctx context.Context, subID string) (int, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return 0, err
	}
	sub, ok := set.Subscriptions[subID]
	if !ok {
		return 0, fmt.Errorf("subscription %s: %w", subID, domain.ErrNotFound)
	}

	count, syncErr := s.Sync(ctx, sub)
	sub.LastSync = s.now().Format(time.RFC3339)
	if syncErr != nil {
		sub.LastSyncStatus = domain.SyncStatusError
		sub.LastSyncError = syncErr.Error()
	} else {
		sub.LastSyncStatus = domain.SyncStatusSuccess
		sub.LastSyncError = ""
	}
	if err := s.SaveSubscriptions(ctx, set); err != nil {
		return 0, err
	}
	return count, syncErr
}

// SyncAll refreshes every enabled subscription sequentially, recording
// per-subscription status in the metadata set. One feed's failure never
// stops the others.
func (s *Service) SyncAll(ctx context.Context) (*SyncReport, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	set, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	subs := set.Enabled()
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	report := &SyncReport{}
	for _, sub := range subs {
		count, err := s.Sync(ctx, sub)

		sub.LastSync = s.now().Format(time.RFC3339)
		if err != nil {
			sub.LastSyncStatus = domain.SyncStatusError
			sub.LastSyncError = err.Error()
			report.Failed++
			s.logger.Warn("subscription sync failed",
				"subscription", sub.ID, "name", sub.Name, "error", err)
		} else {
			sub.LastSyncStatus = domain.SyncStatusSuccess
			sub.LastSyncError = ""
			report.Succeeded++
		}
		report.Results = append(report.Results, SyncResult{
			SubscriptionID: sub.ID,
			Name:           sub.Name,
			EventsCount:    count,
			Err:            err,
		})
	}

	if len(subs) > 0 {
		if err := s.SaveSubscriptions(ctx, set); err != nil {
			return nil, err
		}
	}
	return report, nil
}
