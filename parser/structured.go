package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

// Structured parses native tool-call candidates.
type Structured struct{}

var _ Strategy = Structured{}

// NewStructured returns the structured strategy.
func NewStructured() Structured { return Structured{} }

// Mode implements Strategy.
func (Structured) Mode() Mode { return ModeStructured }

// Parse implements Strategy. It never returns an error: argument faults are
// attached to the invocation they belong to.
func (Structured) Parse(resp model.Response, _ []core.ToolSpec) (Result, error) {
	thought, content := SplitThought(resp.Content)
	res := Result{Thought: thought}

	for _, tc := range resp.ToolCalls {
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}

		args, err := DecodeArguments(tc.Arguments)
		inv := Invocation{
			Call: core.ToolCall{ID: id, Name: tc.Name, Arguments: args, Raw: tc.Arguments},
		}
		if err != nil {
			inv.Err = decodeErr(ModeStructured, tc.Arguments, "tool %q: %v", tc.Name, err)
		}
		res.Invocations = append(res.Invocations, inv)
	}

	if len(res.Invocations) == 0 {
		res.Final = true
		if answer, ok := finalAnswer(content); ok {
			res.Answer = answer
		} else {
			res.Answer = content
		}
	}

	return res, nil
}

// DecodeArguments decodes an argument blob into an object. An empty blob or
// null means no arguments; a JSON string holding an object is unwrapped once.
func DecodeArguments(blob string) (map[string]any, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" || blob == "null" {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal([]byte(blob), &v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		var inner map[string]any
		if err := json.Unmarshal([]byte(t), &inner); err != nil {
			return nil, fmt.Errorf("arguments must be a JSON object, got a string")
		}
		if inner == nil {
			inner = map[string]any{}
		}
		return inner, nil
	case []any:
		return nil, fmt.Errorf("arguments must be a JSON object, got an array")
	default:
		return nil, fmt.Errorf("arguments must be a JSON object, got %T", v)
	}
}
