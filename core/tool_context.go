package core

import (
	"context"
	"fmt"

	"github.com/Chan-Developer/ReAct-agent/logging"
)

// References is the run-bound view over an ArtifactStore that tools use to
// publish bulky results as `@key` tokens and to read earlier ones back.
type References interface {
	Put(key string, payload any) (string, error)
	Get(key string) ([]byte, error)
	Resolve(token string) (any, error)
	Keys() []string
}

// ToolContextOptions configures a ToolContext.
type ToolContextOptions struct {
	RunID      string
	AgentName  string
	References References
	Logger     logging.Logger
}

// ToolContext provides a constrained surface for tool implementations: the
// caller's context, identifiers for correlation, the run's artifact
// references and a logger.
type ToolContext struct {
	ctx            context.Context
	functionCallID string
	runID          string
	agentName      string
	refs           References

	*contextLogger
}

// NewToolContext constructs a tool context bound to ctx and a unique functionCallID.
func NewToolContext(ctx context.Context, functionCallID string, optFns ...func(o *ToolContextOptions)) *ToolContext {
	opts := ToolContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &ToolContext{
		ctx:            ctx,
		functionCallID: functionCallID,
		runID:          opts.RunID,
		agentName:      opts.AgentName,
		refs:           opts.References,
		contextLogger:  newContextLogger(opts.Logger, "run_id", opts.RunID, "function_call_id", functionCallID),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runID }

// FunctionCallID returns the tool call ID being executed.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the agent that requested the call.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// References returns the run's artifact references, or nil when none are configured.
func (tc *ToolContext) References() References { return tc.refs }

// SaveArtifact stores payload under key and returns its `@key` token.
func (tc *ToolContext) SaveArtifact(key string, payload any) (string, error) {
	if tc.refs == nil {
		return "", fmt.Errorf("artifact references not configured")
	}

	token, err := tc.refs.Put(key, payload)
	if err != nil {
		return "", err
	}

	tc.LogDebug("tool.artifact.saved", "key", key)

	return token, nil
}

// LoadArtifact returns the raw payload stored under key.
func (tc *ToolContext) LoadArtifact(key string) ([]byte, error) {
	if tc.refs == nil {
		return nil, fmt.Errorf("%w: %s (no artifact references configured)", ErrReferenceNotFound, key)
	}
	return tc.refs.Get(key)
}
