// Command taskwell is the CLI for the task and reminder store:
// agenda listings, iCalendar import/export, and calendar
// subscriptions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/taskwell/taskwell/internal/config"
	"github.com/taskwell/taskwell/internal/httpfetch"
	"github.com/taskwell/taskwell/internal/observability"
	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/subscription"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "taskwell",
	Short:         "Recurring tasks, reminders, and calendar feeds",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// app bundles everything a command needs: parsed config, the blob
// store behind it, and the subscription service. Close flushes the log
// provider and releases the store.
type app struct {
	cfg        *config.Config
	blobs      storage.BlobStore
	subs       *subscription.Service
	logger     *slog.Logger
	closeStore func() error
	lp         *sdklog.LoggerProvider
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lp, logger, err := observability.InitLogger(ctx, cfg.OTelCollector, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	slog.SetDefault(logger)

	blobs, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		shutdownLoggerProvider(lp)
		return nil, err
	}

	fetcher := httpfetch.New(cfg.SyncTimeout)
	subs := subscription.NewService(blobs, fetcher, logger)

	return &app{
		cfg:        cfg,
		blobs:      blobs,
		subs:       subs,
		logger:     logger,
		closeStore: closeStore,
		lp:         lp,
	}, nil
}

func (a *app) Close() {
	if err := a.closeStore(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
	shutdownLoggerProvider(a.lp)
}

func shutdownLoggerProvider(lp *sdklog.LoggerProvider) {
	// Bounded so an unreachable collector cannot hang exit.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = lp.Shutdown(ctx)
}
