package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// Options configures a Pipeline.
type Options struct {
	Logger logging.Logger
	// Persist receives a copy of every run's artifacts, failed runs included.
	// Without it the artifacts live only as long as the Result.
	Persist core.ArtifactStore
	// OnStep is called after every step that ran, failed ones included.
	OnStep func(StepOutcome)
}

// WithLogger sets the pipeline logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithPersist sets the store runs export their artifacts to.
func WithPersist(s core.ArtifactStore) func(o *Options) {
	return func(o *Options) { o.Persist = s }
}

// WithOnStep sets the per-step hook.
func WithOnStep(fn func(StepOutcome)) func(o *Options) {
	return func(o *Options) { o.OnStep = fn }
}

// StepOutcome records one step that ran.
type StepOutcome struct {
	Step      string        `json:"step"`
	OutputKey string        `json:"output_key"`
	Token     string        `json:"token,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	Pipeline   string         `json:"pipeline"`
	RunID      string         `json:"run_id"`
	Success    bool           `json:"success"`
	Output     map[string]any `json:"output,omitempty"`
	Trace      []StepOutcome  `json:"trace"`
	FailedStep string         `json:"failed_step,omitempty"`
	Err        error          `json:"-"`
	// References holds every artifact written by the run.
	References *artifact.References `json:"-"`
}

// Summary renders the trace as one line per step.
func (r *Result) Summary() string {
	var b strings.Builder
	for i, o := range r.Trace {
		status := "ok"
		if !o.Success {
			status = "FAILED: " + o.Error
		}
		fmt.Fprintf(&b, "%d. %s -> @%s (%s) %s\n", i+1, o.Step, o.OutputKey, o.Duration.Round(time.Millisecond), status)
	}
	return b.String()
}

// Pipeline is a named, fixed sequence of steps.
type Pipeline struct {
	name  string
	steps []Step
	opts  Options
}

// New creates a pipeline.
func New(name string, steps ...Step) *Pipeline {
	return &Pipeline{
		name:  name,
		steps: steps,
		opts:  Options{Logger: logging.NoOpLogger{}},
	}
}

// With applies options and returns the pipeline.
func (p *Pipeline) With(optFns ...func(o *Options)) *Pipeline {
	for _, fn := range optFns {
		fn(&p.opts)
	}
	if p.opts.Logger == nil {
		p.opts.Logger = logging.NoOpLogger{}
	}
	return p
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Steps returns the step names in order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the steps strictly in order and stops at the first failure.
// The trace holds exactly the steps that ran. Each run writes to a private
// store that is discarded with the Result unless Persist is set.
func (p *Pipeline) Run(ctx context.Context, input map[string]any) *Result {
	logger := p.opts.Logger
	runID := uuid.NewString()
	refs := artifact.NewReferences(artifact.NewInMemoryStore(), runID)

	res := &Result{
		Pipeline:   p.name,
		RunID:      runID,
		Output:     make(map[string]any),
		Trace:      make([]StepOutcome, 0, len(p.steps)),
		References: refs,
	}

	if input == nil {
		input = map[string]any{}
	}
	if _, err := refs.Put(InputKey, input); err != nil {
		res.Err = fmt.Errorf("pipeline %q: store input: %w", p.name, err)
		return res
	}

	defer p.persist(res)

	state := &State{pipeline: p.name, input: input, refs: refs, logger: logger}

	logger.Info("pipeline.run.start", "pipeline", p.name, "run_id", runID, "steps", len(p.steps))

	for _, step := range p.steps {
		outcome, output, err := p.runStep(ctx, step, state)
		res.Trace = append(res.Trace, outcome)

		logging.LogStep(logger, p.name, step.Name(), outcome.Duration, err == nil, err)
		if p.opts.OnStep != nil {
			p.opts.OnStep(outcome)
		}

		if err != nil {
			logger.Error("pipeline.step.failed", "pipeline", p.name, "step", step.Name(), "error", err.Error())
			res.FailedStep = step.Name()
			res.Err = fmt.Errorf("pipeline %q failed at step %s: %w", p.name, step.Name(), err)
			return res
		}

		res.Output[step.OutputKey()] = output
	}

	res.Success = true
	logger.Info("pipeline.run.end", "pipeline", p.name, "run_id", runID, "steps", len(res.Trace))

	return res
}

func (p *Pipeline) persist(res *Result) {
	if p.opts.Persist == nil {
		return
	}
	if err := res.References.Export(p.opts.Persist, res.RunID); err != nil {
		p.opts.Logger.Error("pipeline.persist.failed", "pipeline", p.name, "run_id", res.RunID, "error", err.Error())
	}
}

func (p *Pipeline) runStep(ctx context.Context, step Step, state *State) (outcome StepOutcome, output any, err error) {
	start := time.Now()
	outcome = StepOutcome{Step: step.Name(), OutputKey: step.OutputKey()}

	defer func() {
		if r := recover(); r != nil {
			p.opts.Logger.Error("pipeline.step.panic", "pipeline", p.name, "step", step.Name(), "recover", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
		outcome.Duration = time.Since(start)
		if err != nil {
			outcome.Success = false
			outcome.Error = err.Error()
			output = nil
			return
		}
		outcome.Success = true
	}()

	if err = ctx.Err(); err != nil {
		return outcome, nil, err
	}

	output, err = step.Run(ctx, state)
	if err != nil {
		return outcome, nil, err
	}

	outcome.Token, err = state.refs.Put(step.OutputKey(), output)
	if err != nil {
		return outcome, nil, fmt.Errorf("store output: %w", err)
	}

	return outcome, output, nil
}
