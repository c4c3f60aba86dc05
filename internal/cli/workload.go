package cli

import (
	"fmt"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newWorkloadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Show task counts and summed priority per user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			counts, err := app.Workload.TaskCounts(ctx)
			if err != nil {
				return err
			}
			totals, err := app.Workload.TotalPriorityByUser(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkload(counts, totals))
			return nil
		},
	}
}
