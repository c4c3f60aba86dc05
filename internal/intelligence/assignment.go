package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/llm"
)

// MaxRecommendations caps the number of suggested assignees.
const MaxRecommendations = 3

// Recommendation is one suggested assignee.
type Recommendation struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Reason      string `json:"reason"`
}

// AssignmentInput carries the aggregates the recommendation is based on.
// Tasks must already be scored.
type AssignmentInput struct {
	Unassigned []domain.Task
	Tasks      []domain.Task
	Counts     domain.TaskCounts
	Totals     map[string]int
}

// Assigner recommends who should pick up unassigned work.
type Assigner interface {
	Recommend(ctx context.Context, in AssignmentInput) ([]Recommendation, error)
}

type assigner struct {
	client llm.ChatClient
}

// NewAssigner creates an Assigner backed by a chat client.
func NewAssigner(client llm.ChatClient) Assigner {
	return &assigner{client: client}
}

type assignmentResponse struct {
	Assignments []Recommendation `json:"assignments"`
}

func (a *assigner) Recommend(ctx context.Context, in AssignmentInput) ([]Recommendation, error) {
	if len(in.Unassigned) == 0 {
		return nil, errors.New("no work items to assign")
	}
	prompt, err := assignmentPrompt(in)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskAssignment,
		Messages: llm.PromptMessages(assignmentSystemPrompt, prompt),
		Schema:   AssignmentSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("requesting assignment recommendation: %w", err)
	}

	parsed, err := llm.ExtractJSON(resp.Message.Content, validateAssignments)
	if err != nil {
		return nil, err
	}
	recs := parsed.Assignments
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs, nil
}

func validateAssignments(r assignmentResponse) error {
	if len(r.Assignments) == 0 {
		return errors.New("no assignments returned")
	}
	for i, rec := range r.Assignments {
		if strings.TrimSpace(rec.Email) == "" {
			return fmt.Errorf("assignment %d has no email", i)
		}
	}
	return nil
}

func assignmentPrompt(in AssignmentInput) (string, error) {
	sections := []struct {
		title string
		value any
	}{
		{"Unassigned work items", in.Unassigned},
		{"Current task counts per user", in.Counts},
		{"All work items with priority scores", in.Tasks},
		{"Total priority score per user", in.Totals},
	}

	var b strings.Builder
	for _, s := range sections {
		data, err := json.Marshal(s.value)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", strings.ToLower(s.title), err)
		}
		fmt.Fprintf(&b, "%s:\n%s\n\n", s.title, data)
	}
	b.WriteString("Recommend 3 individuals for the unassigned work item(s).")
	return b.String(), nil
}
