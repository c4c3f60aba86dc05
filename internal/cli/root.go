package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/config"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services CLI commands run against.
type App struct {
	Config config.Config
	Logger *slog.Logger

	WorkItems  service.WorkItemService
	Workload   service.WorkloadService
	Risk       service.RiskService
	Assignment service.AssignmentService
	Email      service.EmailService
	Projects   service.ProjectService
	Chat       *chat.Orchestrator
	Sessions   *chat.SessionStore

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	Now           func() time.Time
}

// WireFunc builds the App once configuration is loaded.
type WireFunc func(cfg config.Config, logger *slog.Logger) (*App, error)

// NewRootCmd creates the "taskpilot" command. Configuration is loaded and the
// App wired before any subcommand runs, so flags can point at a config file.
func NewRootCmd(wire WireFunc, logOut io.Writer) *cobra.Command {
	var configPath string
	app := &App{}

	root := &cobra.Command{
		Use:           "taskpilot",
		Short:         "Work-item prioritization, risk reporting and a tool-calling assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := NewLogger(cfg.Log, logOut)
			built, err := wire(cfg, logger)
			if err != nil {
				return fmt.Errorf("wiring services: %w", err)
			}
			*app = *built
			if app.Now == nil {
				app.Now = time.Now
			}
			if app.IsInteractive == nil {
				app.IsInteractive = func() bool { return false }
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "Path to a YAML config file")

	root.AddCommand(
		newServeCmd(app),
		newRiskCmd(app),
		newWorkloadCmd(app),
		newScoreCmd(app),
		newChatCmd(app),
	)
	return root
}

// spin shows a spinner on terminals only; the returned stop is always safe to call.
func (a *App) spin(w io.Writer, message string) func() {
	if !a.IsInteractive() {
		return func() {}
	}
	return formatter.StartSpinner(w, message)
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
