package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/recurring"
)

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "List scheduled tasks over a date window",
	Long: `Lists every task and expanded recurring occurrence that falls inside
the window, local and subscribed alike. Defaults to the next seven days.`,
	RunE: runAgenda,
}

func init() {
	agendaCmd.Flags().String("from", "", "window start (YYYY-MM-DD, default today)")
	agendaCmd.Flags().String("to", "", "window end inclusive (YYYY-MM-DD, default from+7)")
	rootCmd.AddCommand(agendaCmd)
}

// agendaEntry is one printable line.
type agendaEntry struct {
	date      string
	time      string
	title     string
	completed bool
	source    string // subscription name, empty for local tasks
}

func runAgenda(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" {
		from = dateutil.Today(a.cfg.DayStart)
	}
	if _, err := dateutil.ParseDate(from); err != nil {
		return fmt.Errorf("invalid --from date: %w", err)
	}
	if to == "" {
		if to, err = dateutil.AddDays(from, 7); err != nil {
			return err
		}
	}
	if _, err := dateutil.ParseDate(to); err != nil {
		return fmt.Errorf("invalid --to date: %w", err)
	}
	if dateutil.Compare(to, from) < 0 {
		return fmt.Errorf("--to %s is before --from %s", to, from)
	}

	view, err := a.subs.MergedView(ctx)
	if err != nil {
		return err
	}

	subNames, err := a.subscriptionNames(ctx)
	if err != nil {
		return err
	}

	var entries []agendaEntry
	for _, t := range view {
		source := subNames[t.SubscriptionID]
		if t.Repeating() {
			occs, err := recurring.Expand(t, from, to, recurring.Options{})
			if err != nil {
				a.logger.Warn("skipping unexpandable rule", "id", t.ID, "error", err)
				continue
			}
			for _, occ := range occs {
				entries = append(entries, agendaEntry{
					date:      occ.Date,
					time:      occ.Time,
					title:     occ.Title,
					completed: occ.Completed,
					source:    source,
				})
			}
			continue
		}

		if t.Date == "" || dateutil.Compare(t.Date, from) < 0 || dateutil.Compare(t.Date, to) > 0 {
			continue
		}
		entries = append(entries, agendaEntry{
			date:      t.Date,
			time:      t.Time,
			title:     t.Title,
			completed: t.Completed,
			source:    source,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].date != entries[j].date {
			return entries[i].date < entries[j].date
		}
		// All-day entries sort before timed ones on the same date.
		if entries[i].time != entries[j].time {
			return entries[i].time < entries[j].time
		}
		return entries[i].title < entries[j].title
	})

	out := cmd.OutOrStdout()
	for _, e := range entries {
		mark := " "
		if e.completed {
			mark = "x"
		}
		tm := e.time
		if tm == "" {
			tm = "     "
		}
		if e.source != "" {
			fmt.Fprintf(out, "%s  %s  [%s] %s (%s)\n", e.date, tm, mark, e.title, e.source)
		} else {
			fmt.Fprintf(out, "%s  %s  [%s] %s\n", e.date, tm, mark, e.title)
		}
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "nothing scheduled between %s and %s\n", from, to)
	}
	return nil
}

// subscriptionNames maps subscription id to display name for agenda
// source annotations.
func (a *app) subscriptionNames(ctx context.Context) (map[string]string, error) {
	set, err := a.subs.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(set.Subscriptions))
	for id, sub := range set.Subscriptions {
		names[id] = sub.Name
	}
	return names, nil
}
