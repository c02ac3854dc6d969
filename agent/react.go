package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/flow"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// ReActAgentOptions configures a ReActAgent.
type ReActAgentOptions struct {
	Description   string
	Instruction   Instruction
	Vars          map[string]any
	MaxRounds     int
	Strategy      parser.Strategy
	Temperature   *float64
	Stream        bool
	Logger        logging.Logger
	OnStateChange func(from, to flow.State)
}

// ReActAgent drives a reason-act loop over its own tool registry. Runs share
// no state and may execute concurrently.
type ReActAgent struct {
	BaseAgent
	llm      model.Model
	registry *tool.Registry
	opts     ReActAgentOptions
}

// NewReActAgent creates an agent. A nil registry means no tools.
func NewReActAgent(name string, llm model.Model, registry *tool.Registry, optFns ...func(o *ReActAgentOptions)) *ReActAgent {
	opts := ReActAgentOptions{
		Instruction: NewInstructionFromText(fmt.Sprintf("You are %s. %s", name, flow.DefaultInstruction)),
		MaxRounds:   flow.DefaultMaxRounds,
		Strategy:    parser.NewStructured(),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if registry == nil {
		registry = tool.NewRegistry()
	}

	a := &ReActAgent{
		BaseAgent: NewBaseAgent(name),
		llm:       llm,
		registry:  registry,
		opts:      opts,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}

	return a
}

// Registry returns the agent's tool registry.
func (a *ReActAgent) Registry() *tool.Registry { return a.registry }

// RunOptions configures a single run.
type RunOptions struct {
	// Artifacts binds the run to existing references, e.g. preloaded inputs.
	Artifacts *artifact.References
	// MaxRounds overrides the agent's budget when positive.
	MaxRounds int
}

// Execute runs the loop and returns the raw loop result.
func (a *ReActAgent) Execute(ctx context.Context, goal string, optFns ...func(o *RunOptions)) (*flow.Result, error) {
	ro := RunOptions{}
	for _, fn := range optFns {
		fn(&ro)
	}

	instruction, err := a.opts.Instruction.Resolve(a.opts.Vars)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instruction: %w", err)
	}

	maxRounds := a.opts.MaxRounds
	if ro.MaxRounds > 0 {
		maxRounds = ro.MaxRounds
	}

	loop := flow.NewReAct(a.llm, a.registry, func(o *flow.Options) {
		o.Name = a.Name()
		o.Instruction = instruction
		o.MaxRounds = maxRounds
		o.Strategy = a.opts.Strategy
		o.Artifacts = ro.Artifacts
		o.Temperature = a.opts.Temperature
		o.Stream = a.opts.Stream
		o.Logger = a.opts.Logger
		o.OnStateChange = a.opts.OnStateChange
	})

	return loop.Run(ctx, goal)
}

// Run executes the loop and folds the outcome into an AgentResult.
func (a *ReActAgent) Run(ctx context.Context, goal string, optFns ...func(o *RunOptions)) core.AgentResult {
	start := time.Now()

	res, err := a.Execute(ctx, goal, optFns...)
	if err != nil {
		failed := core.NewFailedResult(err, time.Since(start))
		if res != nil {
			failed.Metadata.RoundsUsed = res.Rounds
		}
		return failed
	}

	out := core.AgentResult{
		Success:   res.Completed(),
		Reasoning: res.Thought,
		Data: map[string]any{
			"answer":     res.Answer,
			"run_id":     res.RunID,
			"tool_calls": len(res.ToolResults),
		},
		Metadata: core.ResultMetadata{
			ExecutionTime: time.Since(start),
			RoundsUsed:    res.Rounds,
		},
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	return out
}
