package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/mail"
)

type WorkItemService interface {
	// All returns every work item of the project, scored.
	All(ctx context.Context) ([]domain.Task, error)
	Unassigned(ctx context.Context) ([]domain.Task, error)
	// Pending returns items not Done and due after dueAfter.
	Pending(ctx context.Context, dueAfter time.Time) ([]domain.Task, error)
	Assign(ctx context.Context, id int, email string) (domain.Task, error)
	// BulkAssign applies assignments one by one; a failure does not stop the rest.
	BulkAssign(ctx context.Context, assignments []Assignment) []AssignmentResult
	CountByState(ctx context.Context) (map[string]int, error)
	CountByAssignment(ctx context.Context) (map[string]int, error)
	CountByType(ctx context.Context) (map[string]int, error)
}

type WorkloadService interface {
	Users(ctx context.Context) ([]domain.User, error)
	TaskCounts(ctx context.Context) (domain.TaskCounts, error)
	TotalPriorityByUser(ctx context.Context) (map[string]int, error)
}

type RiskService interface {
	// RiskItems buckets all work items and ranks the bucket by score.
	RiskItems(ctx context.Context) (*RiskReport, error)
	// RiskReport ranks the bucket with the model, falling back to RiskItems'
	// ordering when the model is unavailable or answers badly.
	RiskReport(ctx context.Context) (*RiskReport, error)
}

type AssignmentService interface {
	// Recommend suggests assignees for the given work items, or for every
	// unassigned item when ids is empty.
	Recommend(ctx context.Context, ids []int) ([]intelligence.Recommendation, error)
}

type EmailService interface {
	GenerateEmail(ctx context.Context, to, from, brief string) (*intelligence.EmailDraft, error)
	CreateDraft(subject, body string, to []string) (string, error)
	RecentEmails(ctx context.Context) ([]domain.Email, error)
	BookMeeting(ctx context.Context, req mail.EventRequest) (domain.Event, error)
}

type ProjectService interface {
	List(ctx context.Context) ([]domain.Project, error)
	Current(ctx context.Context) (domain.Project, error)
}

// Assignment sets one work item's assignee.
type Assignment struct {
	WorkItemID int    `json:"work_item_id"`
	UserEmail  string `json:"user_email"`
}

// AssignmentResult reports the outcome of one Assignment.
type AssignmentResult struct {
	WorkItemID int          `json:"work_item_id"`
	UserEmail  string       `json:"user_email"`
	Success    bool         `json:"success"`
	Error      string       `json:"error,omitempty"`
	Task       *domain.Task `json:"work_item,omitempty"`
}

// Risk ranking sources.
const (
	RankedByScore = "score"
	RankedByModel = "model"
)

// RiskReport is the ranked risk bucket plus the numbers behind it.
type RiskReport struct {
	Items       []domain.Task `json:"items"`
	TotalAtRisk int           `json:"total_at_risk"`
	DueSoon     int           `json:"due_soon"`
	AboveMean   int           `json:"above_mean"`
	MeanScore   float64       `json:"mean_score"`
	Remaining   int           `json:"remaining"`
	RankedBy    string        `json:"ranked_by"`
	GeneratedAt time.Time     `json:"generated_at"`
}
