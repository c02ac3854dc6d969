package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/flow"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// MaxConcurrentRuns limits concurrent runs.
	MaxConcurrentRuns int
	// Persist receives a copy of every run's artifacts when set. Otherwise
	// they live only as long as the Outcome.
	Persist core.ArtifactStore
	Logger  logging.Logger
}

// RunOptions configures one run.
type RunOptions struct {
	// Seed is stored in the run's references before the first round.
	Seed map[string]any
	// MaxRounds overrides the agent budget when positive.
	MaxRounds int
}

// Outcome is the result of one run.
type Outcome struct {
	RunID      string
	Result     *flow.Result
	References *artifact.References
}

// Runner executes an agent with one artifact scope per run and tracks
// active runs for cancellation. Public methods are safe for concurrent use.
type Runner struct {
	agent *agent.ReActAgent
	opts  Options

	sem        chan struct{}
	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(a *agent.ReActAgent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentRuns: 10,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentRuns < 1 {
		opts.MaxConcurrentRuns = 1
	}

	return &Runner{
		agent:      a,
		opts:       opts,
		sem:        make(chan struct{}, opts.MaxConcurrentRuns),
		activeRuns: make(map[string]context.CancelFunc),
	}
}

// Run executes goal in a new run scope backed by a private store. The
// outcome is returned even when the run failed, so that its artifacts can be
// inspected.
func (r *Runner) Run(ctx context.Context, goal string, optFns ...func(o *RunOptions)) (*Outcome, error) {
	ro := RunOptions{}
	for _, fn := range optFns {
		fn(&ro)
	}

	runID := uuid.NewString()
	refs := artifact.NewReferences(artifact.NewInMemoryStore(), runID)
	out := &Outcome{RunID: runID, References: refs}
	defer r.persist(out)

	keys := make([]string, 0, len(ro.Seed))
	for k := range ro.Seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := refs.Put(k, ro.Seed[k]); err != nil {
			return out, fmt.Errorf("seed artifact %q: %w", k, err)
		}
	}

	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return out, ctx.Err()
	}
	defer func() { <-r.sem }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
	}()

	r.opts.Logger.Info("runner.run.start", "run_id", runID, "agent", r.agent.Name(), "seeded", len(keys))

	res, err := r.agent.Execute(ctx, goal, func(o *agent.RunOptions) {
		o.Artifacts = refs
		o.MaxRounds = ro.MaxRounds
	})
	out.Result = res
	if err != nil {
		r.opts.Logger.Error("runner.run.failed", "run_id", runID, "error", err.Error())
		return out, fmt.Errorf("run %s: %w", runID, err)
	}

	r.opts.Logger.Info("runner.run.end", "run_id", runID, "state", res.State.String(), "rounds", res.Rounds)

	return out, nil
}

func (r *Runner) persist(out *Outcome) {
	if r.opts.Persist == nil {
		return
	}
	if err := out.References.Export(r.opts.Persist, out.RunID); err != nil {
		r.opts.Logger.Error("runner.persist.failed", "run_id", out.RunID, "error", err.Error())
	}
}

// Cancel cancels an active run. It reports whether the run was found.
func (r *Runner) Cancel(runID string) bool {
	r.mu.RLock()
	cancel, ok := r.activeRuns[runID]
	r.mu.RUnlock()

	if ok {
		cancel()
	}
	return ok
}

// ActiveRuns returns the ids of runs in progress.
func (r *Runner) ActiveRuns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.activeRuns))
	for id := range r.activeRuns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
