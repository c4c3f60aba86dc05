package scheduler

import (
	"sort"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// CanonicalSort orders tasks by the deterministic ranking rules:
// 1. Score: higher first
// 2. Due date: earliest first (nil last)
// 3. Work item ID: ascending
func CanonicalSort(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}

		dueA, dueB := a.DueDate, b.DueDate
		if (dueA == nil) != (dueB == nil) {
			return dueA != nil
		}
		if dueA != nil && dueB != nil && !dueA.Equal(*dueB) {
			return dueA.Before(*dueB)
		}

		return a.ID < b.ID
	})
}

// RankRisk returns the n most urgent tasks of a risk bucket in canonical
// order. n <= 0 keeps every task. The input slice is not modified.
func RankRisk(risk []domain.Task, n int) []domain.Task {
	ranked := make([]domain.Task, len(risk))
	copy(ranked, risk)
	CanonicalSort(ranked)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
