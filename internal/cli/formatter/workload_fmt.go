package formatter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

const shareBarWidth = 12

// FormatWorkload renders one row per user: assigned tasks, summed priority
// and the user's share of the team's total priority.
func FormatWorkload(counts domain.TaskCounts, totals map[string]int) string {
	emails := make([]string, 0, len(counts))
	var teamTotal int
	for email := range counts {
		emails = append(emails, email)
		teamTotal += totals[email]
	}
	slices.SortFunc(emails, func(a, b string) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	rows := make([][]string, 0, len(emails))
	for _, email := range emails {
		w := counts[email]
		rows = append(rows, []string{
			Bold(w.DisplayName),
			Dim(email),
			strconv.Itoa(w.TaskCount),
			strconv.Itoa(totals[email]),
			RenderShare(totals[email], teamTotal, shareBarWidth),
		})
	}

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(Dim("No users with a mail address.") + "\n")
	} else {
		b.WriteString(RenderTable([]string{"USER", "EMAIL", "TASKS", "PRIORITY", "SHARE"}, rows, 2, 3))
	}
	return RenderBox("Workload", b.String())
}
