package service

import (
	"context"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/tracker"
)

// TaskSource is the work-item side of the tracker.
type TaskSource interface {
	QueryWorkItems(ctx context.Context, q tracker.Query) ([]domain.Task, error)
	UpdateAssignee(ctx context.Context, id int, email string) (domain.Task, error)
}

// Directory supplies the user roster.
type Directory interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ProjectCatalog lists tracker projects.
type ProjectCatalog interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CurrentProject(ctx context.Context) (domain.Project, error)
}

// Mailer is the mail and calendar collaborator.
type Mailer interface {
	DraftLink(subject, body string, to []string) (string, error)
	ListRecent(ctx context.Context) ([]domain.Email, error)
	CreateEvent(ctx context.Context, req mail.EventRequest) (domain.Event, error)
}
