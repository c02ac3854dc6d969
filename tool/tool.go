// Package tool implements the tool calling subsystem: the Tool capability
// interface, function adapters, schema compilation and the Registry the
// dispatcher resolves names against.
package tool

import (
	"fmt"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/internal/util"
)

// Tool is a named capability the model can invoke.
//
// Tools are registered once at startup and must be safe for concurrent use
// when the same registry serves several runs.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description is shown to the model to decide when to use the tool.
	Description() string

	// Parameters returns the JSON schema object describing the arguments.
	Parameters() map[string]any

	// Call executes the tool with decoded, reference-resolved and validated
	// arguments. The returned value is serialized into the observation.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// Spec returns the declaration the model sees for t.
func Spec(t Tool) core.ToolSpec {
	return core.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeExecution         = "EXECUTION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	CodeParse             = "PARSE_ERROR"
	CodeArgumentDecode    = "ARGUMENT_DECODE_ERROR"
	CodePanic             = "PANIC"
)

// ToolError represents errors that occur while resolving, validating or
// executing a tool. It unwraps to the matching core sentinel, so callers can
// use errors.Is(err, core.ErrParameterValidation) and friends.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap maps the error code to its sentinel.
func (e *ToolError) Unwrap() error {
	switch e.Code {
	case CodeValidation:
		return core.ErrParameterValidation
	case CodeExecution, CodePanic:
		return core.ErrToolExecution
	case CodeNotFound:
		return core.ErrToolNotFound
	case CodeReferenceNotFound:
		return core.ErrReferenceNotFound
	case CodeParse:
		return core.ErrParse
	case CodeArgumentDecode:
		return core.ErrArgumentDecode
	default:
		return nil
	}
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
