package intelligence

import (
	"context"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// mockChatClient replies with scripted contents in order and records requests.
type mockChatClient struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.ChatRequest
}

func (m *mockChatClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	var content string
	if len(m.replies) > 0 {
		content, m.replies = m.replies[0], m.replies[1:]
	}
	return &llm.ChatResponse{Message: llm.AssistantMessage(content), Model: "gpt-4o-mini"}, nil
}
