package pipeline

import (
	"context"
	"fmt"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// InputKey is the artifact key holding the pipeline input.
const InputKey = "input"

// Step is one stage of a pipeline.
type Step interface {
	Name() string
	// OutputKey is the artifact key the step output is stored under.
	OutputKey() string
	Run(ctx context.Context, state *State) (any, error)
}

// State is the view of a run handed to each step.
type State struct {
	pipeline string
	input    map[string]any
	refs     *artifact.References
	logger   logging.Logger
}

// NewState creates a state outside a pipeline run, e.g. for a step exposed
// as a tool.
func NewState(pipeline string, input map[string]any, refs *artifact.References, logger logging.Logger) *State {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if input == nil {
		input = map[string]any{}
	}
	return &State{pipeline: pipeline, input: input, refs: refs, logger: logger}
}

// Pipeline returns the pipeline name.
func (s *State) Pipeline() string { return s.pipeline }

// Input returns the run input.
func (s *State) Input() map[string]any { return s.input }

// References returns the run's artifact references.
func (s *State) References() *artifact.References { return s.refs }

// Logger returns the pipeline logger.
func (s *State) Logger() logging.Logger { return s.logger }

// Decode decodes the artifact stored under key into v.
func (s *State) Decode(key string, v any) error { return s.refs.Decode(key, v) }

// Object returns the artifact stored under key as an object.
func (s *State) Object(key string) (map[string]any, error) {
	var out map[string]any
	if err := s.refs.Decode(key, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StepFunc is the body of a deterministic step.
type StepFunc func(ctx context.Context, state *State) (any, error)

type funcStep struct {
	name string
	key  string
	fn   StepFunc
}

// Func builds a step from a function.
func Func(name, key string, fn StepFunc) Step {
	return &funcStep{name: name, key: key, fn: fn}
}

func (f *funcStep) Name() string      { return f.name }
func (f *funcStep) OutputKey() string { return f.key }
func (f *funcStep) Run(ctx context.Context, state *State) (any, error) {
	return f.fn(ctx, state)
}

// InputFunc builds a specialist input from the run state.
type InputFunc func(state *State) (map[string]any, error)

type agentStep struct {
	name       string
	key        string
	specialist *agent.Specialist
	inputFn    InputFunc
}

// AgentStep builds a step that runs a specialist. An unsuccessful result is a
// step failure. A nil inputFn passes the pipeline input through.
func AgentStep(name, key string, specialist *agent.Specialist, inputFn InputFunc) Step {
	if inputFn == nil {
		inputFn = func(state *State) (map[string]any, error) { return state.Input(), nil }
	}
	return &agentStep{name: name, key: key, specialist: specialist, inputFn: inputFn}
}

func (a *agentStep) Name() string      { return a.name }
func (a *agentStep) OutputKey() string { return a.key }

func (a *agentStep) Run(ctx context.Context, state *State) (any, error) {
	input, err := a.inputFn(state)
	if err != nil {
		return nil, err
	}

	res, err := a.specialist.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%s: %s", a.specialist.Name(), res.Error)
	}
	if res.Metadata.Incomplete {
		state.Logger().Warn("pipeline.step.incomplete", "pipeline", state.Pipeline(), "step", a.name, "missing", res.Metadata.Missing)
	}

	return res.Data, nil
}
