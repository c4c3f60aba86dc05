package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/tracker"
)

// unassignedKey groups items without an owner in CountByAssignment.
const unassignedKey = "Unassigned"

type workItemService struct {
	tasks TaskSource
	opts  options
}

func NewWorkItemService(tasks TaskSource, opts ...Option) WorkItemService {
	return &workItemService{tasks: tasks, opts: buildOptions(opts)}
}

func (s *workItemService) query(ctx context.Context, name string, q tracker.Query) (tasks []domain.Task, err error) {
	fields := map[string]any{}
	defer s.opts.track(ctx, name, time.Now(), &err, fields)

	raw, err := s.tasks.QueryWorkItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetching work items: %w", err)
	}
	fields["count"] = len(raw)
	return scheduler.ScoreTasks(raw, s.opts.now()), nil
}

func (s *workItemService) All(ctx context.Context) ([]domain.Task, error) {
	return s.query(ctx, "work_items.all", tracker.Query{})
}

func (s *workItemService) Unassigned(ctx context.Context) ([]domain.Task, error) {
	return s.query(ctx, "work_items.unassigned", tracker.Query{Unassigned: true})
}

func (s *workItemService) Pending(ctx context.Context, dueAfter time.Time) ([]domain.Task, error) {
	return s.query(ctx, "work_items.pending", tracker.Query{NotState: "Done", DueAfter: &dueAfter})
}

func (s *workItemService) Assign(ctx context.Context, id int, email string) (task domain.Task, err error) {
	defer s.opts.track(ctx, "work_items.assign", time.Now(), &err, map[string]any{"work_item_id": id})

	email = strings.TrimSpace(email)
	if err := validateAssignment(id, email); err != nil {
		return domain.Task{}, err
	}
	task, err = s.tasks.UpdateAssignee(ctx, id, email)
	if err != nil {
		return domain.Task{}, err
	}
	task.PriorityScore = scheduler.PriorityScore(task, s.opts.now())
	return task, nil
}

func (s *workItemService) BulkAssign(ctx context.Context, assignments []Assignment) []AssignmentResult {
	results := make([]AssignmentResult, 0, len(assignments))
	for _, a := range assignments {
		res := AssignmentResult{WorkItemID: a.WorkItemID, UserEmail: a.UserEmail}
		task, err := s.Assign(ctx, a.WorkItemID, a.UserEmail)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.Task = &task
		}
		results = append(results, res)
	}
	return results
}

func validateAssignment(id int, email string) error {
	if id <= 0 {
		return fmt.Errorf("%w: work item id must be positive, got %d", ErrInvalidInput, id)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, email)
	}
	return nil
}

func (s *workItemService) CountByState(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "work_items.count_by_state", func(t domain.Task) string { return t.State })
}

func (s *workItemService) CountByAssignment(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "work_items.count_by_assignment", func(t domain.Task) string {
		if t.Unassigned() {
			return unassignedKey
		}
		if t.AssigneeName != "" {
			return t.AssigneeName
		}
		return t.AssignedTo
	})
}

func (s *workItemService) CountByType(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "work_items.count_by_type", func(t domain.Task) string { return t.Type })
}

func (s *workItemService) countBy(ctx context.Context, name string, key func(domain.Task) string) (map[string]int, error) {
	tasks, err := s.query(ctx, name, tracker.Query{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[key(t)]++
	}
	return counts, nil
}
