package llm

import "context"

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to invoke a named tool. Arguments holds the
// raw JSON object produced by the model and is decoded by the tool itself.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of a chat transcript.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// HasToolCalls reports whether the message asks for tool invocations.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

func SystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// ToolResultMessage carries the outcome of the invocation identified by callID.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolDefinition describes a callable tool. Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Schema is a strict structured-output contract. The model reply must be a
// JSON document matching Definition, with no additional properties.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// ChatRequest holds the parameters for a chat completion call.
type ChatRequest struct {
	Task        TaskType
	Model       string // empty uses the configured model for Task
	Messages    []Message
	Tools       []ToolDefinition
	Schema      *Schema
	Temperature *float64 // nil uses task default
	MaxTokens   *int     // nil uses task default
}

// ChatResponse holds the assistant message returned by the chat service.
type ChatResponse struct {
	Message   Message
	Model     string
	LatencyMs int64
}

// ChatClient provides access to a chat-completion service.
type ChatClient interface {
	// Chat sends the conversation and returns the assistant reply, which is
	// either text or a set of tool calls.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// PromptMessages builds the common system+user message pair.
func PromptMessages(system, user string) []Message {
	var msgs []Message
	if system != "" {
		msgs = append(msgs, SystemMessage(system))
	}
	return append(msgs, UserMessage(user))
}

// DisabledClient is used when the LLM is switched off in configuration.
type DisabledClient struct{}

func (DisabledClient) Chat(context.Context, ChatRequest) (*ChatResponse, error) {
	return nil, ErrDisabled
}
