package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Chan-Developer/ReAct-agent/core"
)

// ErrScriptExhausted is returned by ScriptedModel when no scripted turn is left
// and no fallback is configured.
var ErrScriptExhausted = errors.New("scripted model: no responses left")

// Turn produces one scripted response for a request.
type Turn func(req Request) (Response, error)

// ScriptedModel is a deterministic Model that replays queued turns in order.
// It records every request it receives, which makes it the backend of choice
// for tests and the CLI "mock" provider.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	turns    []Turn
	fallback Turn
	requests []Request
}

// NewScriptedModel creates a ScriptedModel that answers with responses in order.
func NewScriptedModel(responses ...Response) *ScriptedModel {
	m := &ScriptedModel{
		info: Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
	}
	for _, r := range responses {
		m.Then(r)
	}
	return m
}

// Then queues a response.
func (m *ScriptedModel) Then(resp Response) *ScriptedModel {
	return m.ThenFunc(func(Request) (Response, error) { return resp, nil })
}

// ThenText queues a plain text response.
func (m *ScriptedModel) ThenText(text string) *ScriptedModel {
	return m.Then(TextResponse(text))
}

// ThenToolCalls queues a response requesting the given tool calls.
func (m *ScriptedModel) ThenToolCalls(calls ...ToolCall) *ScriptedModel {
	return m.Then(ToolCallResponse("", calls...))
}

// ThenError queues a backend failure.
func (m *ScriptedModel) ThenError(err error) *ScriptedModel {
	return m.ThenFunc(func(Request) (Response, error) { return Response{}, err })
}

// ThenFunc queues a computed turn.
func (m *ScriptedModel) ThenFunc(fn Turn) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, fn)
	return m
}

// WithFallback sets the turn used once the queue is empty.
func (m *ScriptedModel) WithFallback(fn Turn) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
	return m
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Remaining returns the number of queued turns not yet consumed.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

func (m *ScriptedModel) next(req Request) Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]core.Message, len(req.Messages))
	for i, msg := range req.Messages {
		msgs[i] = msg.Clone()
	}
	req.Messages = msgs
	m.requests = append(m.requests, req)

	if len(m.turns) == 0 {
		return m.fallback
	}
	turn := m.turns[0]
	m.turns = m.turns[1:]
	return turn
}

// Generate implements Model. With Stream set the text is emitted rune by rune
// as partial chunks before the final response.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	turn := m.next(req)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if turn == nil {
			errCh <- ErrScriptExhausted
			return
		}

		resp, err := turn(req)
		if err != nil {
			errCh <- err
			return
		}

		if req.Stream {
			for _, r := range resp.Content {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{ID: resp.ID, Partial: true, Content: string(r)}:
				}
			}
		}

		resp.Partial = false
		if resp.FinishReason == "" {
			resp.FinishReason = "stop"
			if len(resp.ToolCalls) > 0 {
				resp.FinishReason = "tool_calls"
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- resp:
		}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// TextResponse builds a final text-only response.
func TextResponse(text string) Response {
	return Response{Content: text, FinishReason: "stop"}
}

// ToolCallResponse builds a final response requesting tool calls.
func ToolCallResponse(text string, calls ...ToolCall) Response {
	return Response{Content: text, ToolCalls: calls, FinishReason: "tool_calls"}
}

// EchoTurn answers every request with a final answer quoting the last user
// message. The CLI mock provider uses it as fallback.
func EchoTurn(req Request) (Response, error) {
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	return TextResponse(fmt.Sprintf("Final Answer: mock response to: %s", last)), nil
}
