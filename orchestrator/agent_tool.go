package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/pipeline"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// summaryLimit caps generated summaries.
const summaryLimit = 240

// InputMapper converts tool arguments into a specialist input.
type InputMapper func(args map[string]any) (map[string]any, error)

// Summarizer renders the short text returned next to the token.
type Summarizer func(res core.AgentResult) string

// AgentToolOptions configures an AgentTool.
type AgentToolOptions struct {
	Name        string
	Description string
	// OutputKey is the artifact key of the result. Defaults to the tool name.
	OutputKey   string
	Parameters  map[string]any
	InputMapper InputMapper
	Summarize   Summarizer
}

// AgentTool exposes a specialist as a tool. The result is stored in the
// run's references and only its token and a summary are returned.
type AgentTool struct {
	specialist *agent.Specialist
	opts       AgentToolOptions
}

var _ tool.Tool = (*AgentTool)(nil)

// NewAgentTool wraps specialist.
func NewAgentTool(specialist *agent.Specialist, optFns ...func(o *AgentToolOptions)) *AgentTool {
	opts := AgentToolOptions{
		Name:        specialist.Name(),
		Description: specialist.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "object", "description": "Input payload for the specialist"},
			},
		},
		Summarize: DefaultSummary,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.OutputKey == "" {
		opts.OutputKey = opts.Name
	}
	if opts.InputMapper == nil {
		opts.InputMapper = defaultInput
	}

	return &AgentTool{specialist: specialist, opts: opts}
}

// Name implements tool.Tool.
func (t *AgentTool) Name() string { return t.opts.Name }

// Description implements tool.Tool.
func (t *AgentTool) Description() string { return t.opts.Description }

// Parameters implements tool.Tool.
func (t *AgentTool) Parameters() map[string]any { return t.opts.Parameters }

// OutputKey returns the artifact key results are stored under.
func (t *AgentTool) OutputKey() string { return t.opts.OutputKey }

// Call runs the specialist and stores its output.
func (t *AgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	input, err := t.opts.InputMapper(args)
	if err != nil {
		return nil, &tool.ToolError{Tool: t.Name(), Message: err.Error(), Code: tool.CodeValidation, Details: err}
	}

	res, err := t.specialist.Execute(toolCtx.Context(), input)
	if err != nil {
		toolCtx.LogWarn("orchestrator.agent_tool.failed", "tool", t.Name(), "error", err.Error())
		return nil, tool.NewToolError(t.Name(), err.Error(), tool.CodeExecution)
	}

	token, err := toolCtx.SaveArtifact(t.opts.OutputKey, res.Data)
	if err != nil {
		return nil, tool.NewToolError(t.Name(), fmt.Sprintf("store result: %v", err), tool.CodeExecution)
	}

	out := map[string]any{
		"ref":     token,
		"summary": t.opts.Summarize(res),
	}
	if res.Metadata.Incomplete {
		out["missing"] = res.Metadata.Missing
	}

	return out, nil
}

// StepTool exposes a deterministic pipeline step as a tool. The arguments
// become the step input.
type StepTool struct {
	step        pipeline.Step
	name        string
	description string
	params      map[string]any
	summarize   func(output any) string
}

var _ tool.Tool = (*StepTool)(nil)

// NewStepTool wraps step under name.
func NewStepTool(step pipeline.Step, name, description string, params map[string]any) *StepTool {
	return &StepTool{
		step:        step,
		name:        name,
		description: description,
		params:      params,
		summarize:   summarizeValue,
	}
}

// WithSummary replaces the summary renderer.
func (t *StepTool) WithSummary(fn func(output any) string) *StepTool {
	t.summarize = fn
	return t
}

// Name implements tool.Tool.
func (t *StepTool) Name() string { return t.name }

// Description implements tool.Tool.
func (t *StepTool) Description() string { return t.description }

// Parameters implements tool.Tool.
func (t *StepTool) Parameters() map[string]any { return t.params }

// Call runs the step over the run's references.
func (t *StepTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	refs, ok := toolCtx.References().(*artifact.References)
	if !ok || refs == nil {
		return nil, tool.NewToolError(t.name, "artifact references not configured", tool.CodeExecution)
	}

	state := pipeline.NewState(t.name, args, refs, toolCtx.Logger())

	output, err := t.step.Run(toolCtx.Context(), state)
	if err != nil {
		return nil, err
	}

	token, err := toolCtx.SaveArtifact(t.step.OutputKey(), output)
	if err != nil {
		return nil, tool.NewToolError(t.name, fmt.Sprintf("store result: %v", err), tool.CodeExecution)
	}

	return map[string]any{"ref": token, "summary": t.summarize(output)}, nil
}

// DefaultSummary describes a specialist result by its reasoning or its top
// level fields.
func DefaultSummary(res core.AgentResult) string {
	if res.Reasoning != "" {
		return truncate(res.Reasoning, summaryLimit)
	}
	return summarizeValue(res.Data)
}

func summarizeValue(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return truncate(fmt.Sprintf("%v", v), summaryLimit)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return truncate(fmt.Sprintf("object with fields: %s", strings.Join(keys, ", ")), summaryLimit)
}

func defaultInput(args map[string]any) (map[string]any, error) {
	if in, ok := args["input"].(map[string]any); ok {
		return in, nil
	}
	return args, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
