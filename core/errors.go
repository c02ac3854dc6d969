package core

import "errors"

// Registry errors.
var (
	// ErrNameConflict is returned when a tool name is registered twice without overwrite.
	ErrNameConflict = errors.New("tool name conflict")
	// ErrToolNotFound is returned when a tool name cannot be resolved.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidSchema is returned when a tool declares an unusable parameter schema.
	ErrInvalidSchema = errors.New("invalid tool parameter schema")
)

// Parser errors. Both are non-fatal to a run: they are fed back to the model
// as observations.
var (
	ErrParse          = errors.New("parse error")
	ErrArgumentDecode = errors.New("argument decode error")
)

// Dispatch errors.
var (
	ErrParameterValidation = errors.New("parameter validation error")
	ErrToolExecution       = errors.New("tool execution fault")
)

// ErrBudgetExceeded marks a run that exhausted its round budget without a final answer.
var ErrBudgetExceeded = errors.New("round budget exceeded")

// ErrOutputShape is returned by specialists when model output does not have the expected structure.
var ErrOutputShape = errors.New("output shape error")

// ErrReferenceNotFound is returned when an artifact reference token is unknown.
var ErrReferenceNotFound = errors.New("artifact reference not found")

// Message store errors.
var (
	ErrDanglingToolResult  = errors.New("tool result without matching tool call")
	ErrDuplicateToolResult = errors.New("duplicate tool result")
	ErrPendingToolCalls    = errors.New("tool calls without results")
)

// ErrCrewNotFound is returned by the orchestrator for unknown crew names.
var ErrCrewNotFound = errors.New("crew not found")
