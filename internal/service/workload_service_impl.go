package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/tracker"
	"golang.org/x/sync/errgroup"
)

type workloadService struct {
	tasks     TaskSource
	directory Directory
	opts      options
}

func NewWorkloadService(tasks TaskSource, directory Directory, opts ...Option) WorkloadService {
	return &workloadService{tasks: tasks, directory: directory, opts: buildOptions(opts)}
}

func (s *workloadService) Users(ctx context.Context) (users []domain.User, err error) {
	defer s.opts.track(ctx, "workload.users", time.Now(), &err, nil)

	users, err = s.directory.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}

func (s *workloadService) TaskCounts(ctx context.Context) (counts domain.TaskCounts, err error) {
	defer s.opts.track(ctx, "workload.task_counts", time.Now(), &err, nil)

	tasks, users, err := fetchTasksAndUsers(ctx, s.tasks, s.directory)
	if err != nil {
		return nil, err
	}
	return scheduler.CountTasksByUser(tasks, users), nil
}

func (s *workloadService) TotalPriorityByUser(ctx context.Context) (totals map[string]int, err error) {
	defer s.opts.track(ctx, "workload.total_priority", time.Now(), &err, nil)

	tasks, users, err := fetchTasksAndUsers(ctx, s.tasks, s.directory)
	if err != nil {
		return nil, err
	}
	return scheduler.TotalPriorityByUser(tasks, users, s.opts.now()), nil
}

// fetchTasksAndUsers loads the project's work items and the roster in
// parallel. Either failure fails the whole fetch.
func fetchTasksAndUsers(ctx context.Context, source TaskSource, directory Directory) ([]domain.Task, []domain.User, error) {
	var (
		tasks []domain.Task
		users []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tasks, err = source.QueryWorkItems(gctx, tracker.Query{}); err != nil {
			return fmt.Errorf("fetching work items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if users, err = directory.ListUsers(gctx); err != nil {
			return fmt.Errorf("fetching users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, users, nil
}
