package chat

import (
	"sync"
	"testing"

	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_AppendAndSnapshot(t *testing.T) {
	conv := NewConversation("be brief")
	conv.Append(llm.UserMessage("hi"), llm.AssistantMessage("hello"))

	snap := conv.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, llm.RoleSystem, snap[0].Role)

	snap[1].Content = "changed"
	assert.Equal(t, "hi", conv.Snapshot()[1].Content, "snapshot is a copy")
}

func TestConversation_NoSystemPrompt(t *testing.T) {
	assert.Zero(t, NewConversation("").Len())
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation("be brief")
	conv.Append(llm.UserMessage("hi"))

	conv.Reset(true)
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, "be brief", conv.Snapshot()[0].Content)

	conv.Reset(false)
	assert.Zero(t, conv.Len())

	conv.Append(llm.UserMessage("again"))
	conv.Reset(true)
	assert.Zero(t, conv.Len(), "no system message to keep")
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation("")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv.Append(llm.UserMessage("x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, conv.Len())
}
