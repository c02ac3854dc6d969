// Package reactagent provides a high-level facade over the ReAct loop, the
// tool registry and the crew orchestrator. Most applications interact with
// this package by:
//  1. Creating an Agent via New() with a model (optionally with a knowledge
//     store and a store runs persist their artifacts to)
//  2. Registering extra tools and crews
//  3. Running goals in driven mode (Run) or tasks through a crew's pipeline
//     (RunTask, RunTasks)
//
// The resume tools and the resume crew are registered by default.
package reactagent

import (
	"context"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/flow"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/memory"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/orchestrator"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/resume"
	"github.com/Chan-Developer/ReAct-agent/runner"
	"github.com/Chan-Developer/ReAct-agent/tool"
	"github.com/Chan-Developer/ReAct-agent/tool/builtin"
)

// Options configures the Agent.
type Options struct {
	// Name of the driving agent.
	Name string
	// Instruction of the driving agent; it may use template variables.
	Instruction string
	// MaxRounds is the round budget of a driven run.
	MaxRounds int
	// Strategy selects native tool calls or tagged text parsing.
	Strategy parser.Mode

	// Persist receives a copy of every run's artifacts. Runs keep their
	// artifacts private when it is nil.
	Persist core.ArtifactStore
	// Knowledge defaults to an empty in-memory store.
	Knowledge core.KnowledgeStore

	// WithoutResume skips registering the resume tools and crew.
	WithoutResume bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Agent aggregates the driving agent, its tools and the crew orchestrator.
type Agent struct {
	opts         Options
	registry     *tool.Registry
	orchestrator *orchestrator.Orchestrator
	runner       *runner.Runner
}

// New creates an Agent over llm.
func New(llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Name:      "assistant",
		MaxRounds: flow.DefaultMaxRounds,
		Strategy:  parser.ModeStructured,
		Knowledge: memory.NewKnowledgeStore(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = opts.Logger })
	if err := builtin.Register(registry, func(o *builtin.Options) { o.Knowledge = opts.Knowledge }); err != nil {
		return nil, err
	}

	orch := orchestrator.New(func(o *orchestrator.Options) { o.Logger = opts.Logger })

	if !opts.WithoutResume {
		if err := resume.RegisterTools(registry, llm, func(o *resume.ToolOptions) { o.Logger = opts.Logger }); err != nil {
			return nil, err
		}
		if err := orch.Register(resume.CrewName, resume.Factory(llm, func(o *resume.CrewOptions) {
			o.Logger = opts.Logger
			o.Knowledge = opts.Knowledge
			o.Persist = opts.Persist
		})); err != nil {
			return nil, err
		}
	}

	driver := agent.NewReActAgent(opts.Name, llm, registry, func(o *agent.ReActAgentOptions) {
		if opts.Instruction != "" {
			o.Instruction = agent.NewInstructionFromText(opts.Instruction)
		}
		o.MaxRounds = opts.MaxRounds
		o.Strategy = parser.New(opts.Strategy)
		o.Logger = opts.Logger
	})

	r := runner.New(driver, func(o *runner.Options) {
		o.Persist = opts.Persist
		o.Logger = opts.Logger
	})

	return &Agent{opts: opts, registry: registry, orchestrator: orch, runner: r}, nil
}

// RegisterTool adds a tool to the driving agent.
func (a *Agent) RegisterTool(t tool.Tool) error { return a.registry.Register(t) }

// RegisterCrew adds a crew factory to the orchestrator.
func (a *Agent) RegisterCrew(name string, factory orchestrator.CrewFactory) error {
	return a.orchestrator.Register(name, factory)
}

// Registry returns the driving agent's tools.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Orchestrator returns the crew orchestrator.
func (a *Agent) Orchestrator() *orchestrator.Orchestrator { return a.orchestrator }

// Run drives the tools toward goal. Seed values are stored as artifacts
// before the first round and can be passed to tools as `@key`.
func (a *Agent) Run(ctx context.Context, goal string, seed map[string]any) (*runner.Outcome, error) {
	return a.runner.Run(ctx, goal, func(o *runner.RunOptions) {
		o.Seed = seed
	})
}

// RunTask routes task to its crew.
func (a *Agent) RunTask(ctx context.Context, task core.Task) core.TaskResult {
	return a.orchestrator.Run(ctx, task)
}

// RunTasks runs independent tasks concurrently, each on a fresh crew.
func (a *Agent) RunTasks(ctx context.Context, tasks []core.Task) []core.TaskResult {
	return a.orchestrator.RunAll(ctx, tasks)
}
