package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/taskwell/taskwell/internal/domain"
)

// Scheduler runs periodic subscription refreshes with cron-style
// interval jobs. Manual subscriptions are never scheduled.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	logger  *slog.Logger
}

// NewScheduler creates a scheduler over the service.
func NewScheduler(service *Service, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		logger:  logger,
	}
}

// Start registers one interval job per schedulable subscription and
// begins running them. The subscription set is read once; call Start
// again after metadata changes.
func (s *Scheduler) Start(ctx context.Context) error {
	set, err := s.service.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}

	scheduled := 0
	for _, sub := range set.Enabled() {
		interval := domain.SyncIntervalDuration(sub.Interval)
		if interval <= 0 {
			continue
		}

		sub := sub
		spec := fmt.Sprintf("@every %s", interval)
		if _, err := s.cron.AddFunc(spec, func() { s.runOne(ctx, sub) }); err != nil {
			return fmt.Errorf("failed to schedule subscription %s: %w", sub.ID, err)
		}
		scheduled++
	}

	s.cron.Start()
	s.logger.Info("subscription scheduler started", "jobs", scheduled)
	return nil
}

func (s *Scheduler) runOne(ctx context.Context, sub *domain.Subscription) {
	count, err := s.service.SyncAndRecord(ctx, sub.ID)
	if err != nil {
		s.logger.Warn("scheduled sync failed",
			"subscription", sub.ID, "name", sub.Name, "error", err)
		return
	}
	s.logger.Info("scheduled sync finished",
		"subscription", sub.ID, "name", sub.Name, "events", count)
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
