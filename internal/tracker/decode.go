package tracker

import (
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	fieldID         = "System.Id"
	fieldTitle      = "System.Title"
	fieldState      = "System.State"
	fieldType       = "System.WorkItemType"
	fieldAssignedTo = "System.AssignedTo"
	fieldProject    = "System.TeamProject"
	fieldPriority   = "Microsoft.VSTS.Common.Priority"
	fieldSeverity   = "Microsoft.VSTS.Common.Severity"
	fieldDueDate    = "Microsoft.VSTS.Scheduling.DueDate"
)

var taskFields = []string{
	fieldID, fieldTitle, fieldState, fieldType, fieldAssignedTo,
	fieldProject, fieldPriority, fieldSeverity, fieldDueDate,
}

// field reads a dotted reference name such as System.Title from an item's
// fields object.
func field(item gjson.Result, name string) gjson.Result {
	return item.Get("fields." + strings.ReplaceAll(name, ".", `\.`))
}

// decodeTask maps a raw work item into a Task, applying the priority and
// severity defaults. A missing or malformed due date leaves DueDate nil.
func decodeTask(item gjson.Result, logger *slog.Logger) domain.Task {
	task := domain.Task{
		ID:       int(item.Get("id").Int()),
		Title:    field(item, fieldTitle).String(),
		State:    field(item, fieldState).String(),
		Type:     field(item, fieldType).String(),
		Project:  field(item, fieldProject).String(),
		Priority: domain.DefaultPriority,
		Severity: domain.DefaultSeverity,
	}
	if task.ID == 0 {
		task.ID = int(field(item, fieldID).Int())
	}

	assignee := field(item, fieldAssignedTo)
	if assignee.IsObject() {
		task.AssignedTo = assignee.Get("uniqueName").String()
		task.AssigneeName = assignee.Get("displayName").String()
	} else {
		task.AssignedTo = assignee.String()
	}

	if p := field(item, fieldPriority); p.Type == gjson.Number {
		if n := int(p.Int()); n >= 1 && n <= 5 && float64(n) == p.Float() {
			task.Priority = n
		}
	}
	if s := field(item, fieldSeverity).String(); s != "" {
		if _, ok := domain.ParseSeverity(s); ok {
			task.Severity = s
		}
	}

	if raw := field(item, fieldDueDate); raw.Exists() && raw.String() != "" {
		due, err := parseDate(raw.String())
		if err != nil {
			logger.Warn("ignoring malformed due date", "work_item_id", task.ID, "value", raw.String())
		} else {
			task.DueDate = &due
		}
	}
	return task
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func decodeUser(item gjson.Result) domain.User {
	return domain.User{
		DisplayName:   item.Get("displayName").String(),
		Domain:        item.Get("domain").String(),
		MailAddress:   item.Get("mailAddress").String(),
		PrincipalName: item.Get("principalName").String(),
	}
}

func decodeProject(item gjson.Result) domain.Project {
	p := domain.Project{
		ID:          item.Get("id").String(),
		Name:        item.Get("name").String(),
		Description: item.Get("description").String(),
		State:       item.Get("state").String(),
		Visibility:  item.Get("visibility").String(),
	}
	if ts, err := time.Parse(time.RFC3339Nano, item.Get("lastUpdateTime").String()); err == nil {
		p.LastUpdateTime = &ts
	}
	return p
}
