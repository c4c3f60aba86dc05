package scheduler

import (
	"cmp"
	"slices"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// Allocation proposes an owner for one unassigned task.
type Allocation struct {
	Task        domain.Task
	Email       string
	DisplayName string
	// LoadBefore is the owner's priority total before this task was added.
	LoadBefore int
}

// AllocateByLoad spreads unassigned tasks over the roster, most urgent task
// first, each to the user with the lowest running priority total. The first
// pass gives every user at most one task; the second pass fills the rest the
// same way. Ties go to fewer assigned tasks, then to the address.
func AllocateByLoad(unassigned []domain.Task, users []domain.User, tasks []domain.Task, now time.Time) []Allocation {
	type load struct {
		email, name string
		total, n    int
		taken       bool
	}

	totals := TotalPriorityByUser(tasks, users, now)
	counts := CountTasksByUser(tasks, users)
	loads := make([]*load, 0, len(totals))
	for email, total := range totals {
		loads = append(loads, &load{email: email, name: counts[email].DisplayName, total: total, n: counts[email].TaskCount})
	}
	if len(loads) == 0 {
		return nil
	}

	queue := ScoreTasks(unassigned, now)
	slices.SortStableFunc(queue, func(a, b domain.Task) int {
		if c := cmp.Compare(b.PriorityScore, a.PriorityScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	pick := func(skipTaken bool) *load {
		var best *load
		for _, l := range loads {
			if skipTaken && l.taken {
				continue
			}
			if best == nil ||
				l.total < best.total ||
				l.total == best.total && (l.n < best.n || l.n == best.n && l.email < best.email) {
				best = l
			}
		}
		return best
	}

	out := make([]Allocation, 0, len(queue))
	for _, t := range queue {
		l := pick(true)
		if l == nil {
			l = pick(false)
		}
		out = append(out, Allocation{Task: t, Email: l.email, DisplayName: l.name, LoadBefore: l.total})
		l.total += t.PriorityScore
		l.n++
		l.taken = true
	}
	return out
}
