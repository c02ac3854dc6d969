package core

import (
	"encoding/json"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries the rendered system prompt.
	RoleSystem Role = "system"
	// RoleUser carries the operator goal and corrective observations.
	RoleUser Role = "user"
	// RoleAssistant carries model output, optionally with tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool carries the observation produced for one tool call.
	RoleTool Role = "tool"
)

// ToolCall is a structured invocation produced by a parser and consumed by
// the dispatcher.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	// Raw is the argument blob exactly as the backend emitted it. It is kept
	// so that history can be replayed verbatim even when decoding failed.
	Raw string `json:"raw,omitempty"`
}

// ArgumentsJSON returns the call arguments as a JSON object string, preferring
// the original blob when present.
func (c ToolCall) ArgumentsJSON() string {
	if c.Raw != "" {
		return c.Raw
	}
	if len(c.Arguments) == 0 {
		return "{}"
	}
	b, err := json.Marshal(c.Arguments)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ToolResult is the outcome of dispatching one ToolCall. One is always
// produced per call, error or not.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Output     string `json:"output"`
	IsError    bool   `json:"is_error"`
}

// Message is one entry of the conversation history.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set when Role == RoleTool
	Name       string     `json:"name,omitempty"`         // tool name for RoleTool messages
}

// NewSystemMessage builds a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant message with optional tool calls.
func NewAssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// NewToolMessage converts a ToolResult into the tool-role observation message.
func NewToolMessage(res ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    res.Output,
		ToolCallID: res.ToolCallID,
		Name:       res.Name,
	}
}

// HasToolCalls reports whether an assistant message requested tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a deep copy of the message (tool call argument maps included).
func (m Message) Clone() Message {
	cp := m
	if len(m.ToolCalls) > 0 {
		cp.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			cp.ToolCalls[i] = tc
			if tc.Arguments != nil {
				cp.ToolCalls[i].Arguments = cloneMap(tc.Arguments)
			}
		}
	}
	return cp
}

// String renders a compact single-line description used in logs.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(string(m.Role))
	b.WriteString(": ")
	b.WriteString(m.Content)
	for _, tc := range m.ToolCalls {
		b.WriteString(" [call ")
		b.WriteString(tc.Name)
		b.WriteString("]")
	}
	return b.String()
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
