package model

import (
	"context"
	"errors"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/core"
)

// ToolCall is a raw tool-call candidate surfaced by a provider. Arguments is
// the JSON blob exactly as emitted; decoding is left to the parser.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Request captures the normalized model input produced by the loop.
type Request struct {
	Messages    []core.Message  `json:"messages"`
	Tools       []core.ToolSpec `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"` // "auto" when tools are declared
	Stream      bool            `json:"stream,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"` // nil keeps the backend default
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Partial chunks
// carry text deltas only; the final chunk carries the full text and every
// tool call.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Content      string      `json:"content"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the loop and agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrEmptyResponse is returned by Collect when a backend closed its stream
// without producing anything.
var ErrEmptyResponse = errors.New("model returned no response")

// Collect drains both channels of a Generate call and returns the final
// response. When a backend only emitted partial chunks their text is joined.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final   *Response
		partial strings.Builder
		seen    bool
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			seen = true
			if r.Partial {
				partial.WriteString(r.Content)
				continue
			}
			resp := r
			final = &resp
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if final != nil {
		return *final, nil
	}
	if !seen {
		return Response{}, ErrEmptyResponse
	}
	return Response{Content: partial.String(), FinishReason: "stop"}, nil
}
