package intelligence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/llm"
)

// RiskRanker asks the model to pick the most at-risk items of a bucket.
type RiskRanker interface {
	Rank(ctx context.Context, bucket []domain.Task, topN int) ([]domain.Task, error)
}

type riskRanker struct {
	client llm.ChatClient
}

// NewRiskRanker creates a RiskRanker backed by a chat client.
func NewRiskRanker(client llm.ChatClient) RiskRanker {
	return &riskRanker{client: client}
}

type rankedItem struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	State         string `json:"state"`
	AssignedTo    string `json:"assigned_to"`
	TeamProject   string `json:"team_project"`
	Priority      int    `json:"priority"`
	Severity      string `json:"severity"`
	DueDate       string `json:"due_date"`
	PriorityScore int    `json:"priority_score"`
}

type rankedList struct {
	Items []rankedItem `json:"items"`
}

// Rank returns bucket tasks in the order chosen by the model, at most topN.
// Ids the model invents or repeats are dropped, and the returned records
// are the bucket's own, never the model's copy.
func (r *riskRanker) Rank(ctx context.Context, bucket []domain.Task, topN int) ([]domain.Task, error) {
	if len(bucket) == 0 {
		return []domain.Task{}, nil
	}
	data, err := json.Marshal(bucket)
	if err != nil {
		return nil, fmt.Errorf("encoding risk bucket: %w", err)
	}

	resp, err := r.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskRiskReport,
		Messages: llm.PromptMessages(fmt.Sprintf(riskSystemPrompt, topN), "Work items:\n"+string(data)),
		Schema:   RiskItemsSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("requesting risk ranking: %w", err)
	}

	parsed, err := llm.ExtractJSON[rankedList](resp.Message.Content, nil)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]domain.Task, len(bucket))
	for _, t := range bucket {
		byID[t.ID] = t
	}
	ranked := make([]domain.Task, 0, len(bucket))
	for _, item := range parsed.Items {
		task, ok := byID[item.ID]
		if !ok {
			continue
		}
		delete(byID, item.ID)
		ranked = append(ranked, task)
		if topN > 0 && len(ranked) == topN {
			break
		}
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: ranking matched no bucket items", llm.ErrInvalidOutput)
	}
	return ranked, nil
}
