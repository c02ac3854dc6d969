package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/Chan-Developer/ReAct-agent/model"
)

// ResponseBuilder constructs model responses for scripted and mocked models.
// Example:
//
//	resp := NewResponse().Text("Thought: add").Call("c1", "calculator", `{"expression":"1+1"}`).Build()
type ResponseBuilder struct {
	resp model.Response
}

// NewResponse creates a builder for a final response.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{resp: model.Response{FinishReason: "stop"}}
}

// ID sets the response id (chainable).
func (b *ResponseBuilder) ID(id string) *ResponseBuilder { b.resp.ID = id; return b }

// Text appends content (chainable).
func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.resp.Content += s
	return b
}

// Call adds a tool call with a raw argument blob (chainable).
func (b *ResponseBuilder) Call(id, name, arguments string) *ResponseBuilder {
	b.resp.ToolCalls = append(b.resp.ToolCalls, model.ToolCall{ID: id, Name: name, Arguments: arguments})
	b.resp.FinishReason = "tool_calls"
	return b
}

// CallWith adds a tool call whose arguments are the JSON encoding of args (chainable).
func (b *ResponseBuilder) CallWith(id, name string, args map[string]any) *ResponseBuilder {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("testutil: encode arguments: %v", err))
	}
	return b.Call(id, name, string(raw))
}

// Partial marks the response as a streaming chunk (chainable).
func (b *ResponseBuilder) Partial() *ResponseBuilder { b.resp.Partial = true; return b }

// Usage attaches token usage (chainable).
func (b *ResponseBuilder) Usage(prompt, completion int) *ResponseBuilder {
	b.resp.Usage = &model.TokenUsage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
	return b
}

// Build returns the response.
func (b *ResponseBuilder) Build() model.Response {
	resp := b.resp
	resp.ToolCalls = append([]model.ToolCall(nil), b.resp.ToolCalls...)
	return resp
}
