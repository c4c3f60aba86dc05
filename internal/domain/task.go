package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPriority is applied when a work item has no usable priority.
	// 5 is the least urgent value on the tracker's 1-5 scale.
	DefaultPriority = 5

	// DefaultSeverity is applied when a work item has no parsable severity.
	DefaultSeverity = "3 - Medium"

	// DefaultSeverityLevel is the numeric part of DefaultSeverity.
	DefaultSeverityLevel = 3

	// DefaultDueHorizon is how far out a missing due date is assumed to be.
	DefaultDueHorizon = 30 * 24 * time.Hour
)

// Task is the projection of a tracker work item used throughout the service.
// PriorityScore is derived and is recomputed on every read; a value supplied
// by a caller or upstream payload is never trusted.
type Task struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	State         string     `json:"state"`
	Type          string     `json:"work_item_type,omitempty"`
	AssignedTo    string     `json:"assigned_to"`
	AssigneeName  string     `json:"assigned_to_name,omitempty"`
	Project       string     `json:"team_project"`
	Priority      int        `json:"priority"`
	Severity      string     `json:"severity"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PriorityScore int        `json:"priority_score"`
}

// Unassigned reports whether nobody owns the task.
func (t Task) Unassigned() bool {
	return strings.TrimSpace(t.AssignedTo) == ""
}

// PriorityLevel returns the task priority clamped to the valid 1-5 range.
// Anything outside the range falls back to DefaultPriority.
func (t Task) PriorityLevel() int {
	if t.Priority < 1 || t.Priority > 5 {
		return DefaultPriority
	}
	return t.Priority
}

// SeverityLevel returns the leading integer of a "<n> - <label>" severity,
// or DefaultSeverityLevel when it cannot be parsed.
func (t Task) SeverityLevel() int {
	level, ok := ParseSeverity(t.Severity)
	if !ok {
		return DefaultSeverityLevel
	}
	return level
}

// DueOrDefault returns the due date, or now + DefaultDueHorizon when absent.
func (t Task) DueOrDefault(now time.Time) time.Time {
	if t.DueDate == nil {
		return now.Add(DefaultDueHorizon)
	}
	return *t.DueDate
}

// ParseSeverity extracts n from "n - label". The label is optional.
func ParseSeverity(s string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(s), " - ")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return n, true
}
