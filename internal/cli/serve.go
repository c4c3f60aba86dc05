package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/taskpilot/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}
			router := api.NewRouter(api.Services{
				WorkItems:  app.WorkItems,
				Workload:   app.Workload,
				Risk:       app.Risk,
				Assignment: app.Assignment,
				Email:      app.Email,
				Projects:   app.Projects,
				Chat:       app.Chat,
				Sessions:   app.Sessions,
			}, api.RouterOptions{
				AllowedOrigins: app.Config.Server.AllowedOrigins,
				Logger:         app.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go app.Sessions.RunJanitor(ctx, time.Minute)

			srv := api.NewServer(addr, router, app.Config.Server.ShutdownTimeout, app.Logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
