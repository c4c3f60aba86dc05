package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// ScriptedChatClient replays canned assistant messages in order and records
// every request. Once the script runs out it answers with Fallback.
type ScriptedChatClient struct {
	mu       sync.Mutex
	script   []ScriptedReply
	requests []llm.ChatRequest

	Fallback string
}

// ScriptedReply is one canned answer: an assistant message or an error.
type ScriptedReply struct {
	Message llm.Message
	Err     error
}

func NewScriptedChatClient(replies ...ScriptedReply) *ScriptedChatClient {
	return &ScriptedChatClient{script: replies}
}

// Text scripts a plain assistant reply.
func Text(content string) ScriptedReply {
	return ScriptedReply{Message: llm.AssistantMessage(content)}
}

// Calls scripts an assistant reply requesting the given tool calls.
func Calls(calls ...llm.ToolCall) ScriptedReply {
	return ScriptedReply{Message: llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}}
}

// Fails scripts a chat service error.
func Fails(err error) ScriptedReply {
	return ScriptedReply{Err: err}
}

func (c *ScriptedChatClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req.Messages = slices.Clone(req.Messages)
	c.requests = append(c.requests, req)

	if len(c.script) == 0 {
		return &llm.ChatResponse{Message: llm.AssistantMessage(c.Fallback), Model: "scripted"}, nil
	}
	next := c.script[0]
	c.script = c.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &llm.ChatResponse{Message: next.Message, Model: "scripted"}, nil
}

// Requests returns the recorded requests in call order.
func (c *ScriptedChatClient) Requests() []llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.requests)
}
