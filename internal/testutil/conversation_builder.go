package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/session"
)

// ConversationBuilder constructs message histories with fluent chaining.
// Example:
//
//	msgs := NewConversationBuilder().System("sys").User("hi").
//		Call("c1", "calculator", map[string]any{"expression": "1+1"}).
//		Result("c1", "calculator", "2").Messages()
type ConversationBuilder struct {
	msgs []core.Message
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system message (chainable).
func (b *ConversationBuilder) System(content string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewSystemMessage(content))
	return b
}

// User appends a user message (chainable).
func (b *ConversationBuilder) User(content string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewUserMessage(content))
	return b
}

// Assistant appends an assistant text message (chainable).
func (b *ConversationBuilder) Assistant(content string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage(content))
	return b
}

// Call appends an assistant message requesting one tool call (chainable).
func (b *ConversationBuilder) Call(id, name string, args map[string]any) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage("", NewToolCall(id, name, args)))
	return b
}

// Result appends a tool observation for call id (chainable).
func (b *ConversationBuilder) Result(id, name, output string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewToolMessage(core.ToolResult{ToolCallID: id, Name: name, Output: output}))
	return b
}

// Messages returns a copy of the built history.
func (b *ConversationBuilder) Messages() []core.Message {
	return append([]core.Message(nil), b.msgs...)
}

// Build replays the history into a Conversation, which enforces the message
// ordering rules.
func (b *ConversationBuilder) Build() (*session.Conversation, error) {
	return session.NewConversation(b.msgs...)
}

// NewToolCall builds a core.ToolCall whose Raw blob is the JSON encoding of args.
func NewToolCall(id, name string, args map[string]any) core.ToolCall {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("testutil: encode arguments: %v", err))
	}
	return core.ToolCall{ID: id, Name: name, Arguments: args, Raw: string(raw)}
}
