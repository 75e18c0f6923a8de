package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"thermatiff/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled in the configuration")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No conversion runs recorded yet")
				return nil
			}

			if isTerminal(out) {
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						shortID(run.ID),
						run.Camera,
						run.Format,
						fmt.Sprintf("%d/%d", run.Completed, run.Total),
						fmt.Sprintf("%d", run.Failed),
						run.Status,
						run.Duration().Round(time.Millisecond).String(),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Run", "Camera", "Format", "Files", "Failed", "Status", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
				))
			} else {
				for _, run := range runs {
					fmt.Fprintf(out, "%s %s camera=%s format=%s files=%d/%d failed=%d status=%s duration=%s\n",
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						shortID(run.ID),
						run.Camera,
						run.Format,
						run.Completed,
						run.Total,
						run.Failed,
						run.Status,
						run.Duration().Round(time.Millisecond),
					)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
