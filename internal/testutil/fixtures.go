package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// Task options
type TaskOption func(*domain.Task)

func WithPriority(p int) TaskOption {
	return func(t *domain.Task) { t.Priority = p }
}

func WithSeverity(s string) TaskOption {
	return func(t *domain.Task) { t.Severity = s }
}

func WithDue(d time.Time) TaskOption {
	return func(t *domain.Task) { t.DueDate = &d }
}

func WithoutDue() TaskOption {
	return func(t *domain.Task) { t.DueDate = nil }
}

func WithAssignee(email, name string) TaskOption {
	return func(t *domain.Task) {
		t.AssignedTo = email
		t.AssigneeName = name
	}
}

func WithState(s string) TaskOption {
	return func(t *domain.Task) { t.State = s }
}

func WithType(s string) TaskOption {
	return func(t *domain.Task) { t.Type = s }
}

// NewTask builds an unassigned, active task with the decode defaults
// (priority 5, medium severity, no due date).
func NewTask(id int, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:       id,
		Title:    fmt.Sprintf("Task %d", id),
		State:    "Active",
		Type:     "Task",
		Project:  "Apollo",
		Priority: domain.DefaultPriority,
		Severity: domain.DefaultSeverity,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewUser builds a directory user. The address is derived from the display
// name unless an explicit one is given; pass "" for a user without mail.
func NewUser(displayName string, mail ...string) domain.User {
	u := domain.User{
		DisplayName: displayName,
		Domain:      "AzureAD",
	}
	if len(mail) > 0 {
		u.MailAddress = mail[0]
	} else {
		u.MailAddress = strings.ToLower(strings.ReplaceAll(displayName, " ", ".")) + "@example.com"
	}
	u.PrincipalName = u.MailAddress
	return u
}
