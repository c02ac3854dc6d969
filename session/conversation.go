package session

import (
	"fmt"
	"sync"

	"github.com/Chan-Developer/ReAct-agent/core"
)

// Conversation is an append-only, in-memory core.MessageStore. It is safe for
// concurrent reads; a single run is expected to be the only writer.
type Conversation struct {
	mu       sync.RWMutex
	messages []core.Message
	// issued tracks tool call ids emitted by assistant messages; the value
	// reports whether a result has been appended for the id.
	issued map[string]bool
	order  []string
}

// NewConversation creates an empty conversation, optionally seeded with messages.
func NewConversation(seed ...core.Message) (*Conversation, error) {
	c := &Conversation{issued: make(map[string]bool)}
	for _, m := range seed {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds msg to the history. Tool-role messages must answer a tool call
// id emitted earlier by an assistant message, exactly once.
func (c *Conversation) Append(msg core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Role {
	case core.RoleTool:
		answered, ok := c.issued[msg.ToolCallID]
		if !ok {
			return fmt.Errorf("%w: %q", core.ErrDanglingToolResult, msg.ToolCallID)
		}
		if answered {
			return fmt.Errorf("%w: %q", core.ErrDuplicateToolResult, msg.ToolCallID)
		}
		c.issued[msg.ToolCallID] = true
	case core.RoleAssistant:
		for _, tc := range msg.ToolCalls {
			if tc.ID == "" {
				return fmt.Errorf("assistant tool call %q has no id", tc.Name)
			}
			if _, dup := c.issued[tc.ID]; dup {
				return fmt.Errorf("tool call id %q already issued", tc.ID)
			}
			c.issued[tc.ID] = false
			c.order = append(c.order, tc.ID)
		}
	case core.RoleSystem, core.RoleUser:
	default:
		return fmt.Errorf("unknown message role %q", msg.Role)
	}

	c.messages = append(c.messages, msg.Clone())

	return nil
}

// Messages returns a snapshot copy of the history.
func (c *Conversation) Messages() []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of stored messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message with the given role.
func (c *Conversation) Last(role core.Role) (core.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i].Clone(), true
		}
	}
	return core.Message{}, false
}

// PendingToolCalls returns ids of tool calls without a result, in emission order.
func (c *Conversation) PendingToolCalls() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pending []string
	for _, id := range c.order {
		if !c.issued[id] {
			pending = append(pending, id)
		}
	}
	return pending
}

// HasSystemPrompt reports whether the conversation already starts with a system message.
func (c *Conversation) HasSystemPrompt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages) > 0 && c.messages[0].Role == core.RoleSystem
}
