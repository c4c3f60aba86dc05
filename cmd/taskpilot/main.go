package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/cli"
	"github.com/alexanderramin/taskpilot/internal/config"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/alexanderramin/taskpilot/internal/tracker"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.NewRootCmd(wire, os.Stderr).Execute()
}

func wire(cfg config.Config, logger *slog.Logger) (*cli.App, error) {
	trackerClient := tracker.NewClient(cfg.Tracker, nil, logger)
	mailClient := mail.NewClient(cfg.Mail, nil, logger)

	// LLM is opt-in: every model-backed use case degrades or reports
	// llm.ErrDisabled when it is off.
	var client llm.ChatClient = llm.DisabledClient{}
	if cfg.LLM.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(logger)
		}
		client = llm.NewOpenAIClient(cfg.LLM, observer)
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithObserver(service.NewLogUseCaseObserver(logger)),
	}
	workItems := service.NewWorkItemService(trackerClient, opts...)
	workload := service.NewWorkloadService(trackerClient, trackerClient, opts...)
	risk := service.NewRiskService(trackerClient, intelligence.NewRiskRanker(client), cfg.LLM.RiskTopN, opts...)
	assignment := service.NewAssignmentService(trackerClient, trackerClient, intelligence.NewAssigner(client), opts...)
	email := service.NewEmailService(mailClient, intelligence.NewEmailWriter(client), opts...)
	projects := service.NewProjectService(trackerClient, opts...)

	tools, err := chat.NewDefaultToolset(chat.ToolDeps{
		WorkItems: workItems,
		Workload:  workload,
		Risk:      risk,
		Email:     email,
	})
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}
	orchestrator := chat.NewOrchestrator(chat.Options{
		Client:      client,
		Tools:       tools,
		MaxParallel: cfg.Chat.MaxParallelTools,
		Logger:      logger,
	})
	prompt := cfg.Chat.SystemPrompt
	if prompt == "" {
		prompt = chat.DefaultSystemPrompt
	}

	return &cli.App{
		Config:     cfg,
		Logger:     logger,
		WorkItems:  workItems,
		Workload:   workload,
		Risk:       risk,
		Assignment: assignment,
		Email:      email,
		Projects:   projects,
		Chat:       orchestrator,
		Sessions: chat.NewSessionStore(prompt,
			chat.WithSessionTTL(cfg.Chat.SessionTTL),
			chat.WithMaxSessions(cfg.Chat.MaxSessions),
		),
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}, nil
}
