// Package parser turns a raw model response into tool invocations or a final
// answer.
//
// Two strategies exist and one is chosen when a loop is constructed:
//
//   - Structured reads the backend's native tool-call list. Several calls per
//     round are allowed; a response without calls is final.
//   - Tagged scans free text for one `Action: name(args)` line and for a
//     `Final Answer:` marker. It is used with backends that lack native
//     function calling.
//
// Parsing never aborts a run. Argument decode failures travel with the
// invocation they belong to; tagged-mode syntax errors are returned as
// *Error so the loop can feed a correction back to the model.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

// Mode identifies a parsing strategy.
type Mode int

const (
	// ModeStructured uses native tool calls.
	ModeStructured Mode = iota
	// ModeTagged parses `Action: name(args)` text.
	ModeTagged
)

func (m Mode) String() string {
	switch m {
	case ModeStructured:
		return "structured"
	case ModeTagged:
		return "tagged"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structured", "native", "function_calling":
		return ModeStructured, nil
	case "tagged", "text", "react":
		return ModeTagged, nil
	default:
		return 0, fmt.Errorf("unknown parser strategy %q (expected structured or tagged)", s)
	}
}

// Invocation is one tool call extracted from a response. Err is set when the
// call could be identified but its arguments could not be decoded; the
// dispatcher turns it into an error observation for Call.ID.
type Invocation struct {
	Call core.ToolCall
	Err  error
}

// Result is the outcome of parsing one response.
type Result struct {
	Invocations []Invocation
	// Final reports that the response terminates the run.
	Final bool
	// Answer is the final answer text when Final is set.
	Answer string
	// Thought is reasoning text removed from the visible content.
	Thought string
}

// Calls returns the tool calls of all invocations in order.
func (r Result) Calls() []core.ToolCall {
	calls := make([]core.ToolCall, len(r.Invocations))
	for i, inv := range r.Invocations {
		calls[i] = inv.Call
	}
	return calls
}

// Strategy extracts invocations from a response.
type Strategy interface {
	Mode() Mode
	Parse(resp model.Response, specs []core.ToolSpec) (Result, error)
}

// New returns the strategy for mode.
func New(mode Mode) Strategy {
	if mode == ModeTagged {
		return NewTagged()
	}
	return NewStructured()
}

// Error is a parse or argument decode failure. It unwraps to core.ErrParse
// or core.ErrArgumentDecode.
type Error struct {
	Strategy Mode
	Input    string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

// Unwrap returns the sentinel.
func (e *Error) Unwrap() error { return e.Err }

func parseErr(mode Mode, input, format string, args ...any) *Error {
	return &Error{Strategy: mode, Input: input, Reason: fmt.Sprintf(format, args...), Err: core.ErrParse}
}

func decodeErr(mode Mode, input, format string, args ...any) *Error {
	return &Error{Strategy: mode, Input: input, Reason: fmt.Sprintf(format, args...), Err: core.ErrArgumentDecode}
}

var (
	thinkPattern = regexp.MustCompile(`(?is)<think>(.*?)</think>`)
	finalPattern = regexp.MustCompile(`(?i)final[ _]answer\s*:`)
)

// SplitThought removes <think>...</think> blocks from text and returns their
// joined content separately.
func SplitThought(text string) (thought, rest string) {
	matches := thinkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", strings.TrimSpace(text)
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := strings.TrimSpace(m[1]); t != "" {
			parts = append(parts, t)
		}
	}
	rest = thinkPattern.ReplaceAllString(text, "")

	return strings.Join(parts, "\n"), strings.TrimSpace(rest)
}

// finalAnswer returns the text after the first final-answer marker.
func finalAnswer(text string) (string, bool) {
	loc := finalPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(text[loc[1]:]), true
}

func specByName(specs []core.ToolSpec, name string) (core.ToolSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return core.ToolSpec{}, false
}

func specNames(specs []core.ToolSpec) string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
