package scheduler

import (
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// ScoringWeights holds the multipliers of the additive priority score.
type ScoringWeights struct {
	Priority   int
	Severity   int
	HorizonDay int
}

// DefaultWeights returns the production weights: severity x3, priority x2 and
// one point per day inside a 30 day horizon.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Priority:   2,
		Severity:   3,
		HorizonDay: 30,
	}
}

// PriorityScore computes the urgency of a task. It never fails: missing or
// malformed priority, severity and due date fall back to the domain defaults.
//
//	score = (5 - priority)*2 + (5 - severity)*3 + max(0, 30 - daysUntilDue)
func PriorityScore(task domain.Task, now time.Time) int {
	return ScoreWithWeights(task, now, DefaultWeights())
}

// ScoreWithWeights is PriorityScore with explicit weights.
func ScoreWithWeights(task domain.Task, now time.Time, w ScoringWeights) int {
	return ExplainScore(task, now, w).Total
}

// ScoreBreakdown splits a score into its three terms.
type ScoreBreakdown struct {
	PriorityPoints int `json:"priority_points"`
	SeverityPoints int `json:"severity_points"`
	DuePoints      int `json:"due_points"`
	DaysUntilDue   int `json:"days_until_due"`
	Total          int `json:"total"`
}

// ExplainScore computes the score term by term.
func ExplainScore(task domain.Task, now time.Time, w ScoringWeights) ScoreBreakdown {
	b := ScoreBreakdown{
		PriorityPoints: (5 - task.PriorityLevel()) * w.Priority,
		SeverityPoints: (5 - task.SeverityLevel()) * w.Severity,
		DaysUntilDue:   DaysUntil(task.DueOrDefault(now), now),
	}
	if horizon := w.HorizonDay - b.DaysUntilDue; horizon > 0 {
		b.DuePoints = horizon
	}
	b.Total = b.PriorityPoints + b.SeverityPoints + b.DuePoints
	return b
}

// DaysUntil returns whole days from now until due, floored at 0 so that
// overdue work reads as due today.
func DaysUntil(due, now time.Time) int {
	days := int(due.Sub(now) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// ScoreTasks returns a copy of tasks with PriorityScore recomputed.
func ScoreTasks(tasks []domain.Task, now time.Time) []domain.Task {
	scored := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		t.PriorityScore = PriorityScore(t, now)
		scored[i] = t
	}
	return scored
}

// TotalPriorityByUser sums task scores per known user. Every user with a mail
// address starts at 0; tasks owned by anyone else are ignored.
func TotalPriorityByUser(tasks []domain.Task, users []domain.User, now time.Time) map[string]int {
	totals := make(map[string]int, len(users))
	index := mailIndex(users)
	for _, mail := range index {
		totals[mail] = 0
	}
	for _, t := range tasks {
		mail, ok := index[normalizeMail(t.AssignedTo)]
		if !ok {
			continue
		}
		totals[mail] += PriorityScore(t, now)
	}
	return totals
}

// CountTasksByUser builds the assignment aggregate from a single task list.
func CountTasksByUser(tasks []domain.Task, users []domain.User) domain.TaskCounts {
	counts := make(domain.TaskCounts, len(users))
	for _, u := range users {
		if !u.HasMail() {
			continue
		}
		counts[u.MailAddress] = domain.UserWorkload{DisplayName: u.DisplayName}
	}
	index := mailIndex(users)
	for _, t := range tasks {
		mail, ok := index[normalizeMail(t.AssignedTo)]
		if !ok {
			continue
		}
		w := counts[mail]
		w.TaskCount++
		counts[mail] = w
	}
	return counts
}

// mailIndex maps a normalized address to the address as the directory spells it.
func mailIndex(users []domain.User) map[string]string {
	index := make(map[string]string, len(users))
	for _, u := range users {
		if !u.HasMail() {
			continue
		}
		index[normalizeMail(u.MailAddress)] = u.MailAddress
	}
	return index
}

func normalizeMail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
