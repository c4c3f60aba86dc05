package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
)

type assignmentService struct {
	tasks     TaskSource
	directory Directory
	assigner  intelligence.Assigner
	opts      options
}

func NewAssignmentService(tasks TaskSource, directory Directory, assigner intelligence.Assigner, opts ...Option) AssignmentService {
	return &assignmentService{tasks: tasks, directory: directory, assigner: assigner, opts: buildOptions(opts)}
}

func (s *assignmentService) Recommend(ctx context.Context, ids []int) (recs []intelligence.Recommendation, err error) {
	fields := map[string]any{"requested": len(ids)}
	defer s.opts.track(ctx, "assignment.recommend", time.Now(), &err, fields)

	tasks, users, err := fetchTasksAndUsers(ctx, s.tasks, s.directory)
	if err != nil {
		return nil, err
	}
	now := s.opts.now()
	scored := scheduler.ScoreTasks(tasks, now)

	targets := selectTargets(scored, ids)
	if len(targets) == 0 {
		if len(ids) > 0 {
			return nil, fmt.Errorf("%w: none of the work items %v exist", ErrInvalidInput, ids)
		}
		return []intelligence.Recommendation{}, nil
	}
	fields["targets"] = len(targets)

	recs, err = s.assigner.Recommend(ctx, intelligence.AssignmentInput{
		Unassigned: targets,
		Tasks:      scored,
		Counts:     scheduler.CountTasksByUser(tasks, users),
		Totals:     scheduler.TotalPriorityByUser(tasks, users, now),
	})
	if err == nil {
		fields["source"] = "model"
		return recs, nil
	}
	if !degradable(err) {
		return nil, err
	}
	s.opts.logger.WarnContext(ctx, "assignment recommendation fell back to load balancing", "error", err)
	fields["source"] = "load"
	return loadRecommendations(targets, users, tasks, now), nil
}

// loadRecommendations proposes the least-loaded distinct users for targets.
func loadRecommendations(targets []domain.Task, users []domain.User, tasks []domain.Task, now time.Time) []intelligence.Recommendation {
	recs := []intelligence.Recommendation{}
	seen := map[string]bool{}
	for _, a := range scheduler.AllocateByLoad(targets, users, tasks, now) {
		if seen[a.Email] {
			continue
		}
		seen[a.Email] = true
		recs = append(recs, intelligence.Recommendation{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Reason:      fmt.Sprintf("lowest current priority load (%d points) when work item %d was placed", a.LoadBefore, a.Task.ID),
		})
		if len(recs) == intelligence.MaxRecommendations {
			break
		}
	}
	return recs
}

// selectTargets picks the requested ids, or every unassigned task when no
// ids are given.
func selectTargets(tasks []domain.Task, ids []int) []domain.Task {
	var out []domain.Task
	if len(ids) == 0 {
		for _, t := range tasks {
			if t.Unassigned() {
				out = append(out, t)
			}
		}
		return out
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, t := range tasks {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
