package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoTool(name string) Tool {
	return Tool{
		Name: name,
		Run: func(_ context.Context, args string) (any, error) {
			return map[string]string{"tool": name, "args": args}, nil
		},
	}
}

func mustToolset(t *testing.T, tools ...Tool) *Toolset {
	t.Helper()
	ts, err := NewToolset(tools...)
	require.NoError(t, err)
	return ts
}

func call(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Arguments: args}
}

func toolMessages(msgs []llm.Message) []llm.Message {
	var out []llm.Message
	for _, m := range msgs {
		if m.Role == llm.RoleTool {
			out = append(out, m)
		}
	}
	return out
}

func TestHandle_PlainTextReply(t *testing.T) {
	client := testutil.NewScriptedChatClient(testutil.Text("Hello there"))
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, echoTool("a"), echoTool("b")), Logger: quietLogger()})
	conv := NewConversation("system")

	reply, err := orch.Handle(context.Background(), conv, "hi", nil)

	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply.Message.Content)
	assert.Zero(t, reply.ToolCalls)

	msgs := conv.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Equal(t, llm.RoleAssistant, msgs[2].Role)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Tools, 2)
	assert.Equal(t, llm.TaskChat, reqs[0].Task)
}

func TestHandle_PartialFailureStillResubmits(t *testing.T) {
	failing := Tool{
		Name: "broken",
		Run: func(context.Context, string) (any, error) {
			return nil, errors.New("tracker unreachable")
		},
	}
	client := testutil.NewScriptedChatClient(
		testutil.Calls(call("call_1", "a", `{}`), call("call_2", "broken", `{}`), call("call_3", "b", `{"x":1}`)),
		testutil.Text("Two of three worked."),
	)
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, echoTool("a"), failing, echoTool("b")), Logger: quietLogger()})
	conv := NewConversation("")

	reply, err := orch.Handle(context.Background(), conv, "do three things", nil)

	require.NoError(t, err)
	assert.Equal(t, "Two of three worked.", reply.Message.Content)
	assert.Equal(t, 3, reply.ToolCalls)
	assert.Equal(t, 1, reply.FailedCalls)

	results := toolMessages(conv.Snapshot())
	require.Len(t, results, 3)
	assert.Equal(t, []string{"call_1", "call_2", "call_3"},
		[]string{results[0].ToolCallID, results[1].ToolCallID, results[2].ToolCallID})

	errMsg := gjson.Get(results[1].Content, "error").String()
	assert.Contains(t, errMsg, "call_2")
	assert.Contains(t, errMsg, "tracker unreachable")
	assert.Equal(t, "broken", gjson.Get(results[1].Content, "tool").String())
	assert.Equal(t, `{"x":1}`, gjson.Get(results[2].Content, "args").String())

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[1].Tools, "resubmission carries no tools")
	assert.Len(t, toolMessages(reqs[1].Messages), 3, "tool results precede the resubmission")

	last := conv.Snapshot()[conv.Len()-1]
	assert.Equal(t, llm.RoleAssistant, last.Role)
	assert.Equal(t, "Two of three worked.", last.Content)
}

func TestHandle_ToolFailuresBecomePayloads(t *testing.T) {
	panicky := Tool{
		Name: "panicky",
		Run: func(context.Context, string) (any, error) {
			panic("nil map")
		},
	}
	strict := Tool{
		Name: "strict",
		Run: func(_ context.Context, raw string) (any, error) {
			return decodeArgs[updateAssignmentArgs](raw)
		},
	}
	client := testutil.NewScriptedChatClient(
		testutil.Calls(call("c1", "missing", ``), call("c2", "panicky", ``), call("c3", "strict", `{"bogus":true}`)),
		testutil.Text("done"),
	)
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, panicky, strict), Logger: quietLogger()})
	conv := NewConversation("")

	reply, err := orch.Handle(context.Background(), conv, "go", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, reply.FailedCalls)
	results := toolMessages(conv.Snapshot())
	require.Len(t, results, 3)
	assert.Contains(t, gjson.Get(results[0].Content, "error").String(), "unknown tool")
	assert.Contains(t, gjson.Get(results[1].Content, "error").String(), "panicked")
	assert.Contains(t, gjson.Get(results[2].Content, "error").String(), "invalid tool arguments")
}

func TestHandle_RunsCallsConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	barrier := Tool{
		Name: "barrier",
		Run: func(ctx context.Context, _ string) (any, error) {
			started.Done()
			select {
			case <-release:
				return "ok", nil
			case <-time.After(5 * time.Second):
				return nil, errors.New("calls did not overlap")
			}
		},
	}
	client := testutil.NewScriptedChatClient(
		testutil.Calls(call("1", "barrier", ""), call("2", "barrier", ""), call("3", "barrier", "")),
		testutil.Text("all done"),
	)
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, barrier), Logger: quietLogger()})

	reply, err := orch.Handle(context.Background(), NewConversation(""), "go", nil)

	require.NoError(t, err)
	assert.Zero(t, reply.FailedCalls)
}

func TestHandle_MaxParallelCapsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	counted := Tool{
		Name: "counted",
		Run: func(context.Context, string) (any, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return "ok", nil
		},
	}
	calls := make([]llm.ToolCall, 5)
	for i := range calls {
		calls[i] = call(string(rune('a'+i)), "counted", "")
	}
	client := testutil.NewScriptedChatClient(testutil.Calls(calls...), testutil.Text("done"))
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, counted), MaxParallel: 2, Logger: quietLogger()})

	_, err := orch.Handle(context.Background(), NewConversation(""), "go", nil)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestHandle_EventOrder(t *testing.T) {
	client := testutil.NewScriptedChatClient(
		testutil.Calls(call("c1", "a", "{}"), call("c2", "b", "{}")),
		testutil.Text("final"),
	)
	orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, echoTool("a"), echoTool("b")), Logger: quietLogger()})

	var types []EventType
	_, err := orch.Handle(context.Background(), NewConversation(""), "go", func(e Event) {
		types = append(types, e.Type)
	})

	require.NoError(t, err)
	assert.Equal(t, []EventType{EventToolCall, EventToolCall, EventToolResult, EventToolResult, EventReply}, types)
}

func TestHandle_ChatServiceFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("first request", func(t *testing.T) {
		client := testutil.NewScriptedChatClient(testutil.Fails(llm.ErrUnavailable))
		orch := NewOrchestrator(Options{Client: client, Logger: quietLogger()})
		var events []Event

		_, err := orch.Handle(ctx, NewConversation(""), "hi", func(e Event) { events = append(events, e) })

		assert.ErrorIs(t, err, llm.ErrUnavailable)
		require.Len(t, events, 1)
		assert.Equal(t, EventError, events[0].Type)
	})

	t.Run("resubmission", func(t *testing.T) {
		client := testutil.NewScriptedChatClient(
			testutil.Calls(call("c1", "a", "{}")),
			testutil.Fails(llm.ErrTimeout),
		)
		orch := NewOrchestrator(Options{Client: client, Tools: mustToolset(t, echoTool("a")), Logger: quietLogger()})
		conv := NewConversation("")

		_, err := orch.Handle(ctx, conv, "hi", nil)

		assert.ErrorIs(t, err, llm.ErrTimeout)
		assert.Len(t, toolMessages(conv.Snapshot()), 1, "tool results stay in the log")
	})
}
