package chat

import (
	"slices"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// Conversation is an append-only message log. Entries already appended are
// never changed; readers get copies through Snapshot.
type Conversation struct {
	mu       sync.Mutex
	messages []llm.Message
}

// NewConversation starts a log seeded with the system prompt, if any.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.messages = append(c.messages, llm.SystemMessage(systemPrompt))
	}
	return c
}

func (c *Conversation) Append(msgs ...llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Snapshot returns a copy of the log in append order.
func (c *Conversation) Snapshot() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Reset drops the log. With keepSystem, a leading system message survives.
func (c *Conversation) Reset(keepSystem bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if keepSystem && len(c.messages) > 0 && c.messages[0].Role == llm.RoleSystem {
		c.messages = []llm.Message{c.messages[0]}
		return
	}
	c.messages = nil
}
