package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
)

// FormatScore renders a score breakdown, one term per line.
func FormatScore(b scheduler.ScoreBreakdown) string {
	var sb strings.Builder
	line := func(label string, points int, note string) {
		sb.WriteString(fmt.Sprintf("%-10s %3d  %s\n", label, points, Dim(note)))
	}
	line("priority", b.PriorityPoints, "(5 - priority) x 2")
	line("severity", b.SeverityPoints, "(5 - severity) x 3")
	line("due", b.DuePoints, fmt.Sprintf("30 - %d days, floored at 0", b.DaysUntilDue))
	sb.WriteString(Dim(strings.Repeat("─", 14)) + "\n")
	sb.WriteString(fmt.Sprintf("%-10s %s\n", Bold("score"), Score(b.Total)))
	return sb.String()
}
