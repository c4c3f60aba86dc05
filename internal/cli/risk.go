package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/spf13/cobra"
)

func newRiskCmd(app *App) *cobra.Command {
	var (
		report bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Show work items at risk of slipping",
		Long: `Show open work items due within the next week whose priority score is
above the mean. With --report the model ranks the list and the score ordering
is used when it is unavailable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				rep *service.RiskReport
				err error
			)
			if report {
				stop := app.spin(cmd.ErrOrStderr(), "Ranking risk items...")
				rep, err = app.Risk.RiskReport(cmd.Context())
				stop()
			} else {
				rep, err = app.Risk.RiskItems(cmd.Context())
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRiskReport(rep, app.Now()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "Let the model rank the risk items")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
