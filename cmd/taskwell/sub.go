package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/subscription"
)

var subCmd = &cobra.Command{
	Use:     "sub",
	Aliases: []string{"subscription", "subscriptions"},
	Short:   "Manage calendar subscriptions",
}

var subListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions",
	RunE:    runSubList,
}

var subAddCmd = &cobra.Command{
	Use:   "add URL",
	Short: "Subscribe to a calendar feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubAdd,
}

var subRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a subscription and its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubRemove,
}

var subSyncCmd = &cobra.Command{
	Use:   "sync [ID]",
	Short: "Refresh one subscription, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubSync,
}

func init() {
	subAddCmd.Flags().String("name", "", "display name (defaults to the URL)")
	subAddCmd.Flags().String("project", "", "project id for the feed's tasks")
	subAddCmd.Flags().String("category", "", "category id for the feed's tasks")
	subAddCmd.Flags().String("interval", "", "sync cadence (manual, 15min, 30min, hourly, 4hour, 12hour, daily)")
	_ = subAddCmd.MarkFlagRequired("project")
	subSyncCmd.Flags().Bool("watch", false, "keep running and refresh on each subscription's cadence")

	subCmd.AddCommand(subListCmd, subAddCmd, subRemoveCmd, subSyncCmd)
	rootCmd.AddCommand(subCmd)
}

func runSubList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	set, err := a.subs.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}

	subs := make([]*domain.Subscription, 0, len(set.Subscriptions))
	for _, sub := range set.Subscriptions {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENABLED\tINTERVAL\tLAST SYNC\tSTATUS")
	for _, sub := range subs {
		lastSync := sub.LastSync
		if lastSync == "" {
			lastSync = "never"
		}
		status := sub.LastSyncStatus
		if status == domain.SyncStatusError {
			status = fmt.Sprintf("error: %s", sub.LastSyncError)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n",
			sub.ID, sub.Name, sub.Enabled, sub.Interval, lastSync, status)
	}
	return w.Flush()
}

func runSubAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sub := &domain.Subscription{URL: args[0], Enabled: true}
	sub.Name, _ = cmd.Flags().GetString("name")
	if sub.Name == "" {
		sub.Name = args[0]
	}
	sub.ProjectID, _ = cmd.Flags().GetString("project")
	sub.CategoryID, _ = cmd.Flags().GetString("category")
	if raw, _ := cmd.Flags().GetString("interval"); raw != "" {
		interval, err := domain.NewSyncInterval(raw)
		if err != nil {
			return err
		}
		sub.Interval = interval
	}

	added, err := a.subs.Add(ctx, sub)
	if err != nil {
		return err
	}

	count, err := a.subs.SyncAndRecord(ctx, added.ID)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "subscribed as %s; first sync failed: %v\n", added.ID, err)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "subscribed as %s: %d events\n", added.ID, count)
	return nil
}

func runSubRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.subs.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
	return nil
}

func runSubSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		sched := subscription.NewScheduler(a.subs, a.logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		sched.Stop()
		return nil
	}

	if len(args) == 1 {
		count, err := a.subs.SyncAndRecord(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "synced %s: %d events\n", args[0], count)
		return nil
	}

	report, err := a.subs.SyncAll(ctx)
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events\n", res.Name, res.EventsCount)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d subscriptions failed", report.Failed, report.Failed+report.Succeeded)
	}
	return nil
}
