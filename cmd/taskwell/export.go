package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/ics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the merged collection as an iCalendar document",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().String("name", "", "calendar display name (X-WR-CALNAME)")
	exportCmd.Flags().Bool("xiaomi", false, "normalize day durations for Xiaomi calendar imports")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.subs.MergedView(ctx)
	if err != nil {
		return err
	}
	tasks := make([]*domain.Task, 0, len(view))
	for _, t := range view {
		tasks = append(tasks, t)
	}

	name, _ := cmd.Flags().GetString("name")
	xiaomi, _ := cmd.Flags().GetBool("xiaomi")
	doc, err := ics.Export(tasks, ics.ExportOptions{
		CalendarName:       name,
		NormalizeDurations: xiaomi,
	})
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	}
	if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	a.logger.Info("calendar exported", "file", output, "tasks", len(tasks))
	return nil
}
