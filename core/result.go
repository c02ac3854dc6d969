package core

import "time"

// ResultMetadata carries execution bookkeeping attached to an AgentResult.
type ResultMetadata struct {
	ExecutionTime time.Duration `json:"execution_time"`
	RoundsUsed    int           `json:"rounds_used"`
	Attempts      int           `json:"attempts,omitempty"`
	// Incomplete marks a best-effort result whose self-check found missing
	// required fields; Missing lists them.
	Incomplete bool     `json:"incomplete,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// AgentResult is returned by every agent invocation.
type AgentResult struct {
	Success     bool           `json:"success"`
	Data        map[string]any `json:"data,omitempty"`
	Error       string         `json:"error,omitempty"`
	Reasoning   string         `json:"reasoning,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Metadata    ResultMetadata `json:"metadata"`
}

// NewFailedResult builds an unsuccessful AgentResult from err.
func NewFailedResult(err error, elapsed time.Duration) AgentResult {
	return AgentResult{
		Success:  false,
		Error:    err.Error(),
		Metadata: ResultMetadata{ExecutionTime: elapsed},
	}
}

// Task is a unit of orchestrator work. Name selects the crew that handles it.
type Task struct {
	Name     string         `json:"name"`
	Input    map[string]any `json:"input"`
	Context  map[string]any `json:"context,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ContextString returns a string value from the task context, or "".
func (t Task) ContextString(key string) string {
	if t.Context == nil {
		return ""
	}
	s, _ := t.Context[key].(string)
	return s
}

// TaskResult is the outcome of a crew run.
type TaskResult struct {
	Success     bool           `json:"success"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Logs        []string       `json:"logs,omitempty"`
}
