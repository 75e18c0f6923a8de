package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thermatiff/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cfg)
			out := cmd.OutOrStdout()

			missingRequired := 0
			if isTerminal(out) {
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{
						status.Name,
						depState(status.Available, status.Optional),
						status.Command,
						status.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Dependency", "Status", "Command", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
			} else {
				for _, status := range statuses {
					fmt.Fprintf(out, "%s (%s): %s", status.Name, status.Command, depState(status.Available, status.Optional))
					if status.Detail != "" {
						fmt.Fprintf(out, " - %s", status.Detail)
					}
					fmt.Fprintln(out)
				}
			}

			for _, status := range statuses {
				if !status.Available && !status.Optional {
					missingRequired++
				}
			}
			if missingRequired > 0 {
				return fmt.Errorf("%d required dependency(ies) missing", missingRequired)
			}
			return nil
		},
	}
}

func depState(available, optional bool) string {
	switch {
	case available:
		return "ok"
	case optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}
