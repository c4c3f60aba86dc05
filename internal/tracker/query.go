package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Query selects work items. Zero-value fields do not filter.
type Query struct {
	// Project overrides the client's project.
	Project    string
	AssignedTo string
	Unassigned bool
	State      string
	NotState   string
	Type       string
	DueAfter   *time.Time
}

// WIQL renders the query for project. Results are ordered by last change,
// newest first.
func (q Query) WIQL(project string) string {
	if q.Project != "" {
		project = q.Project
	}

	var where []string
	if project != "" {
		where = append(where, fmt.Sprintf("[System.TeamProject] = %s", quote(project)))
	}
	switch {
	case q.Unassigned:
		where = append(where, "[System.AssignedTo] = ''")
	case q.AssignedTo != "":
		where = append(where, fmt.Sprintf("[System.AssignedTo] = %s", quote(q.AssignedTo)))
	}
	if q.State != "" {
		where = append(where, fmt.Sprintf("[System.State] = %s", quote(q.State)))
	}
	if q.NotState != "" {
		where = append(where, fmt.Sprintf("[System.State] <> %s", quote(q.NotState)))
	}
	if q.Type != "" {
		where = append(where, fmt.Sprintf("[System.WorkItemType] = %s", quote(q.Type)))
	}
	if q.DueAfter != nil {
		where = append(where, fmt.Sprintf("[Microsoft.VSTS.Scheduling.DueDate] > %s",
			quote(q.DueAfter.Format("2006-01-02"))))
	}

	var b strings.Builder
	b.WriteString("SELECT [System.Id] FROM WorkItems")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY [System.ChangedDate] DESC")
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
