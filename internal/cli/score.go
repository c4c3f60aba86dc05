package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/spf13/cobra"
)

func newScoreCmd(app *App) *cobra.Command {
	var (
		priority int
		severity string
		due      string
	)

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Explain the priority score of a hypothetical work item",
		Example: `  taskpilot score --priority 1 --severity "2 - High" --due 2025-06-30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task := domain.Task{Priority: priority, Severity: severity}
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q: expected YYYY-MM-DD", due)
				}
				task.DueDate = &d
			}
			b := scheduler.ExplainScore(task, app.Now(), scheduler.DefaultWeights())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScore(b))
			return nil
		},
	}
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1-5 (default 5)")
	cmd.Flags().StringVar(&severity, "severity", "", `Severity such as "2 - High" (default "3 - Medium")`)
	cmd.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD (default 30 days out)")
	return cmd
}
