package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// BaseAgent bundles identity and the run bookkeeping shared by agents. Embed
// it in concrete agents. Runs may overlap; each keeps its own cancel func.
// All exported methods are goroutine-safe.
type BaseAgent struct {
	name        string
	description string

	mu     sync.Mutex
	nextID uint64
	runs   map[uint64]context.CancelFunc
}

// NewBaseAgent constructs a BaseAgent with a generated description.
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Running reports whether any run is in progress.
func (b *BaseAgent) Running() bool { return b.ActiveRuns() > 0 }

// ActiveRuns returns the number of runs in progress.
func (b *BaseAgent) ActiveRuns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.runs)
}

// Stop cancels every in-flight run.
func (b *BaseAgent) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.runs) == 0 {
		return errors.New("agent is not running")
	}
	for _, cancel := range b.runs {
		cancel()
	}
	return nil
}

// start registers a run and returns a context cancelled by Stop or by the
// returned release func.
func (b *BaseAgent) start(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.runs == nil {
		b.runs = make(map[uint64]context.CancelFunc)
	}
	b.nextID++
	id := b.nextID
	b.runs[id] = cancel
	b.mu.Unlock()

	release := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		cancel()
		delete(b.runs, id)
	}

	return runCtx, release
}
