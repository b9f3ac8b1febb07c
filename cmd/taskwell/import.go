package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/ics"
	"github.com/taskwell/taskwell/internal/storage"
	"github.com/taskwell/taskwell/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Merge an iCalendar file into the local collection",
	Long: `Parses FILE and merges its events into the local collection. Events
are matched by UID first, then by title; matched tasks are updated in
place and everything else is added. Events whose dates have already
passed come in completed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("project", "", "project id for imported tasks")
	importCmd.Flags().String("category", "", "category id for imported tasks")
	importCmd.Flags().StringSlice("tag", nil, "tag ids for imported tasks")
	importCmd.Flags().String("priority", "", "priority for imported tasks (none, low, medium, high)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read calendar file: %w", err)
	}
	events, err := ics.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("failed to parse calendar: %w", err)
	}

	opts := ics.MergeOptions{}
	opts.ProjectID, _ = cmd.Flags().GetString("project")
	opts.CategoryID, _ = cmd.Flags().GetString("category")
	opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
	if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
		prio, err := domain.NewPriority(raw)
		if err != nil {
			return err
		}
		opts.Priority = prio
	}

	existing, err := loadLocalCollection(ctx, a)
	if err != nil {
		return err
	}

	merged, stats, err := ics.Merge(existing, events, opts, time.Now())
	if err != nil {
		return err
	}

	data, err := store.EncodeCollection(merged)
	if err != nil {
		return err
	}
	if err := a.blobs.Write(ctx, store.LocalPath, data); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d events: %d added, %d updated\n",
		stats.Total, stats.Added, stats.Updated)
	return nil
}

func loadLocalCollection(ctx context.Context, a *app) (map[string]*domain.Task, error) {
	data, err := a.blobs.Read(ctx, store.LocalPath)
	if errors.Is(err, storage.ErrNotFound) {
		return make(map[string]*domain.Task), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return store.DecodeCollection(data)
}
