package scheduler

import (
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// RiskWindowDays is the inclusive look-ahead for the due-date rule.
const RiskWindowDays = 7

// RiskBucket is the outcome of FilterRisk. A task lands in exactly one of
// Risk or Remaining.
type RiskBucket struct {
	Risk      []domain.Task
	Remaining []domain.Task

	// MeanScore is the mean score of the tasks left after the due-date rule.
	// Zero when that population was empty.
	MeanScore float64

	DueSoon   int
	AboveMean int
}

// FilterRisk scores every task and splits the set in two passes:
//  1. tasks due on a calendar day in [today, today+7] move to Risk;
//  2. of the rest, tasks scoring strictly above their mean move to Risk.
//
// Tasks without a due date stay in the second-pass population. The result is
// neither ranked nor truncated; see RankRisk.
func FilterRisk(tasks []domain.Task, now time.Time) RiskBucket {
	scored := ScoreTasks(tasks, now)

	today := startOfDay(now)
	windowEnd := today.AddDate(0, 0, RiskWindowDays)

	var bucket RiskBucket
	rest := make([]domain.Task, 0, len(scored))
	for _, t := range scored {
		if t.DueDate != nil {
			due := startOfDay(t.DueDate.In(now.Location()))
			if !due.Before(today) && !due.After(windowEnd) {
				bucket.Risk = append(bucket.Risk, t)
				bucket.DueSoon++
				continue
			}
		}
		rest = append(rest, t)
	}

	if len(rest) == 0 {
		bucket.Remaining = rest
		return bucket
	}

	var sum int
	for _, t := range rest {
		sum += t.PriorityScore
	}
	mean := float64(sum) / float64(len(rest))
	bucket.MeanScore = mean

	for _, t := range rest {
		if float64(t.PriorityScore) > mean {
			bucket.Risk = append(bucket.Risk, t)
			bucket.AboveMean++
			continue
		}
		bucket.Remaining = append(bucket.Remaining, t)
	}
	return bucket
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
