package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []LLMCallEvent
}

func (o *recordingObserver) OnCallComplete(e LLMCallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() LLMCallEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func testConfig(endpoint string) LLMConfig {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.APIKey = "test-key"
	cfg.Endpoint = endpoint + "/"
	return cfg
}

const textCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "All good."}}]
}`

const toolCompletion = `{
  "id": "chatcmpl-2",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "tool_calls",
    "message": {"role": "assistant", "content": null, "tool_calls": [
      {"id": "call_a", "type": "function", "function": {"name": "get_users", "arguments": "{}"}},
      {"id": "call_b", "type": "function", "function": {"name": "update_work_item_assignment", "arguments": "{\"work_item_id\":7,\"user_email\":\"a@x.com\"}"}}
    ]}}]
}`

func TestOpenAIClient_Chat_Text(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, textCompletion)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewOpenAIClient(testConfig(srv.URL), obs)
	resp, err := client.Chat(context.Background(), ChatRequest{
		Task:     TaskChat,
		Messages: PromptMessages("be brief", "status?"),
	})

	require.NoError(t, err)
	assert.Equal(t, "All good.", resp.Message.Content)
	assert.False(t, resp.Message.HasToolCalls())
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "status?", gjson.GetBytes(body, "messages.1.content").String())
	assert.False(t, gjson.GetBytes(body, "tools").Exists())

	ev := obs.last()
	assert.True(t, ev.Success)
	assert.Equal(t, TaskChat, ev.Task)
}

func TestOpenAIClient_Chat_ToolCallsRoundTrip(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, toolCompletion)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	history := []Message{
		UserMessage("who is free?"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_0", Name: "get_users", Arguments: "{}"}}},
		ToolResultMessage("call_0", `{"users":[]}`),
	}
	resp, err := client.Chat(context.Background(), ChatRequest{
		Task:     TaskChat,
		Messages: history,
		Tools: []ToolDefinition{{
			Name:        "get_users",
			Description: "List users",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Message.ToolCalls, 2)
	assert.Equal(t, ToolCall{ID: "call_a", Name: "get_users", Arguments: "{}"}, resp.Message.ToolCalls[0])
	assert.Equal(t, "update_work_item_assignment", resp.Message.ToolCalls[1].Name)

	assert.Equal(t, "get_users", gjson.GetBytes(body, "tools.0.function.name").String())
	assert.Equal(t, "function", gjson.GetBytes(body, "tools.0.type").String())
	assert.Equal(t, "call_0", gjson.GetBytes(body, "messages.1.tool_calls.0.id").String())
	assert.Equal(t, "tool", gjson.GetBytes(body, "messages.2.role").String())
	assert.Equal(t, "call_0", gjson.GetBytes(body, "messages.2.tool_call_id").String())
}

func TestOpenAIClient_Chat_StrictSchema(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, textCompletion)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AssignmentModel = "ft:assign-1"
	client := NewOpenAIClient(cfg, NoopObserver{})
	_, err := client.Chat(context.Background(), ChatRequest{
		Task:     TaskAssignment,
		Messages: PromptMessages("", "assign"),
		Schema: &Schema{
			Name:       "task_assignment_response",
			Definition: map[string]any{"type": "object"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "ft:assign-1", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "json_schema", gjson.GetBytes(body, "response_format.type").String())
	assert.Equal(t, "task_assignment_response", gjson.GetBytes(body, "response_format.json_schema.name").String())
	assert.True(t, gjson.GetBytes(body, "response_format.json_schema.strict").Bool())
}

func TestOpenAIClient_Chat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		io.WriteString(w, textCompletion)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Tasks = map[TaskType]TaskConfig{TaskChat: {TimeoutMs: 50}}

	obs := &recordingObserver{}
	client := NewOpenAIClient(cfg, obs)
	_, err := client.Chat(context.Background(), ChatRequest{Task: TaskChat, Messages: PromptMessages("", "hi")})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "TIMEOUT", obs.last().ErrorCode)
}

func TestOpenAIClient_Chat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewOpenAIClient(testConfig(srv.URL), obs)
	_, err := client.Chat(context.Background(), ChatRequest{Task: TaskChat, Messages: PromptMessages("", "hi")})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.False(t, obs.last().Success)
}

func TestOpenAIClient_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Chat(context.Background(), ChatRequest{Task: TaskChat, Messages: PromptMessages("", "hi")})

	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDisabledClient(t *testing.T) {
	_, err := DisabledClient{}.Chat(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrDisabled)
}
