package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"
)

// EventType tags an orchestrator Event.
type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventReply      EventType = "reply"
	EventError      EventType = "error"
)

// Event reports turn progress to a streaming client.
type Event struct {
	Type      EventType `json:"type"`
	CallID    string    `json:"call_id,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Arguments string    `json:"arguments,omitempty"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventSink receives events in order from a single goroutine.
type EventSink func(Event)

// Options configures an Orchestrator.
type Options struct {
	Client llm.ChatClient
	Tools  *Toolset
	// MaxParallel caps concurrent tool invocations; 0 runs every call at once.
	MaxParallel int
	Logger      *slog.Logger
}

// Orchestrator runs conversational turns against the chat service,
// executing any tool calls the model asks for.
type Orchestrator struct {
	client      llm.ChatClient
	tools       *Toolset
	maxParallel int
	logger      *slog.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tools := opts.Tools
	if tools == nil {
		tools, _ = NewToolset()
	}
	return &Orchestrator{
		client:      opts.Client,
		tools:       tools,
		maxParallel: opts.MaxParallel,
		logger:      logger,
	}
}

// Reply is the outcome of one turn.
type Reply struct {
	Message     llm.Message `json:"message"`
	ToolCalls   int         `json:"tool_calls"`
	FailedCalls int         `json:"failed_calls"`
}

type toolOutcome struct {
	call    llm.ToolCall
	content string
	err     error
}

// Handle runs one turn: the user text is appended, the model is asked with
// the tool registry attached, and if it requests tools they are all executed
// before the conversation is resubmitted for the final answer. Tool failures
// become error payloads for the model; only chat service failures are
// returned.
func (o *Orchestrator) Handle(ctx context.Context, conv *Conversation, text string, sink EventSink) (*Reply, error) {
	emit := func(e Event) {
		if sink != nil {
			sink(e)
		}
	}
	fail := func(err error) (*Reply, error) {
		emit(Event{Type: EventError, Error: err.Error()})
		return nil, err
	}

	conv.Append(llm.UserMessage(text))

	first, err := o.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskChat,
		Messages: conv.Snapshot(),
		Tools:    o.tools.Definitions(),
	})
	if err != nil {
		return fail(fmt.Errorf("requesting chat reply: %w", err))
	}

	msg := first.Message
	msg.Role = llm.RoleAssistant
	if !msg.HasToolCalls() {
		conv.Append(msg)
		emit(Event{Type: EventReply, Content: msg.Content})
		return &Reply{Message: msg}, nil
	}

	conv.Append(msg)
	for _, call := range msg.ToolCalls {
		emit(Event{Type: EventToolCall, CallID: call.ID, Tool: call.Name, Arguments: call.Arguments})
	}

	outcomes := o.executeAll(ctx, msg.ToolCalls)

	reply := &Reply{ToolCalls: len(outcomes)}
	results := make([]llm.Message, 0, len(outcomes))
	for _, out := range outcomes {
		content := out.content
		ev := Event{Type: EventToolResult, CallID: out.call.ID, Tool: out.call.Name}
		if out.err != nil {
			reply.FailedCalls++
			content = errorPayload(out.call, out.err)
			ev.Error = out.err.Error()
		} else {
			ev.Content = content
		}
		results = append(results, llm.ToolResultMessage(out.call.ID, content))
		emit(ev)
	}
	conv.Append(results...)

	final, err := o.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskChat,
		Messages: conv.Snapshot(),
	})
	if err != nil {
		return fail(fmt.Errorf("requesting reply after tool calls: %w", err))
	}
	answer := llm.AssistantMessage(final.Message.Content)
	conv.Append(answer)
	emit(Event{Type: EventReply, Content: answer.Content})
	reply.Message = answer
	return reply, nil
}

// executeAll runs every call and waits for all of them. Outcomes keep the
// request order whatever the completion order.
func (o *Orchestrator) executeAll(ctx context.Context, calls []llm.ToolCall) []toolOutcome {
	outcomes := make([]toolOutcome, len(calls))
	var g errgroup.Group
	if o.maxParallel > 0 {
		g.SetLimit(o.maxParallel)
	}
	for i, call := range calls {
		g.Go(func() error {
			outcomes[i] = o.execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) execute(ctx context.Context, call llm.ToolCall) (out toolOutcome) {
	out.call = call
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.content = ""
			out.err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
		}
		attrs := []any{"tool", call.Name, "call_id", call.ID, "duration_ms", time.Since(start).Milliseconds()}
		if out.err != nil {
			o.logger.WarnContext(ctx, "tool_call_failed", append(attrs, "error", out.err.Error())...)
			return
		}
		o.logger.DebugContext(ctx, "tool_call", attrs...)
	}()
	out.content, out.err = o.tools.Execute(ctx, call)
	return out
}

func errorPayload(call llm.ToolCall, err error) string {
	payload, setErr := sjson.Set("{}", "error", fmt.Sprintf("executing tool call %s: %v", call.ID, err))
	if setErr != nil {
		return `{"error":"tool call failed"}`
	}
	payload, _ = sjson.Set(payload, "tool", call.Name)
	return payload
}
