package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/service"
)

const titleWidth = 48

// FormatRiskReport renders the ranked risk items and the bucket summary.
func FormatRiskReport(rep *service.RiskReport, now time.Time) string {
	var b strings.Builder

	if len(rep.Items) == 0 {
		b.WriteString(StyleGreen.Render("Nothing at risk.") + "\n")
	} else {
		b.WriteString(FormatTaskTable(rep.Items, now))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s at risk: %s due within a week, %s above the mean score of %.1f\n",
		Bold(strconv.Itoa(rep.TotalAtRisk)),
		StyleRed.Render(strconv.Itoa(rep.DueSoon)),
		StyleYellow.Render(strconv.Itoa(rep.AboveMean)),
		rep.MeanScore,
	))
	if shown := len(rep.Items); shown < rep.TotalAtRisk {
		b.WriteString(Dim(fmt.Sprintf("Showing the top %d.", shown)) + "\n")
	}
	b.WriteString(Dim("Ranked by "+rep.RankedBy) + "\n")

	return RenderBox("Risk", b.String())
}

// FormatTaskTable renders tasks as ID, score, title, owner, severity and due.
func FormatTaskTable(tasks []domain.Task, now time.Time) string {
	headers := []string{"ID", "SCORE", "TITLE", "ASSIGNEE", "SEVERITY", "DUE"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		owner := t.AssigneeName
		if owner == "" {
			owner = t.AssignedTo
		}
		if owner == "" {
			owner = Dim("unassigned")
		}
		rows = append(rows, []string{
			StyleBlue.Render("#" + strconv.Itoa(t.ID)),
			Score(t.PriorityScore),
			Truncate(t.Title, titleWidth),
			owner,
			SeverityPill(t.Severity, t.SeverityLevel()),
			DueLabel(t.DueDate, now),
		})
	}
	return RenderTable(headers, rows, 1)
}
