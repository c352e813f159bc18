package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts over the whole collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer env.close()

			stats := env.state.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "TaskMaster Stats")
			fmt.Fprintln(out, strings.Repeat("=", 24))
			fmt.Fprintf(out, "  Total:       %d\n", stats.Total)
			fmt.Fprintf(out, "  Completed:   %d\n", stats.Completed)
			fmt.Fprintf(out, "  Pending:     %d\n", stats.Pending)
			fmt.Fprintf(out, "  In progress: %d\n", stats.InProgress)
			fmt.Fprintf(out, "  Overdue:     %d\n", stats.Overdue)
			return nil
		},
	}
}
