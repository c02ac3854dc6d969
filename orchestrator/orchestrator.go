package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// DefaultConcurrency bounds RunAll.
const DefaultConcurrency = 4

// Options configures an Orchestrator.
type Options struct {
	Logger      logging.Logger
	Concurrency int
}

// CrewInfo describes a registered crew.
type CrewInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Orchestrator is a registry of crews addressed by case-insensitive,
// fuzzy-matched names.
type Orchestrator struct {
	opts Options

	mu        sync.Mutex
	factories map[string]CrewFactory
	order     []string
	cache     map[string]Crew
}

// New creates an orchestrator.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		Concurrency: DefaultConcurrency,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Orchestrator{
		opts:      opts,
		factories: make(map[string]CrewFactory),
		cache:     make(map[string]Crew),
	}
}

// Register adds a crew factory under the lowercased name.
func (o *Orchestrator) Register(name string, factory CrewFactory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("crew name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("crew %q: factory must not be nil", key)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.factories[key]; exists {
		return fmt.Errorf("crew %q already registered", key)
	}
	o.factories[key] = factory
	o.order = append(o.order, key)

	o.opts.Logger.Debug("orchestrator.crew.registered", "crew", key)

	return nil
}

// Names returns the registered crew names in registration order.
func (o *Orchestrator) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Crews describes every registered crew, instantiating them as needed.
func (o *Orchestrator) Crews() ([]CrewInfo, error) {
	infos := make([]CrewInfo, 0, len(o.order))
	for _, name := range o.Names() {
		c, err := o.Resolve(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, CrewInfo{Name: name, Description: c.Description()})
	}
	return infos, nil
}

// Match maps a requested name to a registered one: an exact lowercase match
// first, then a unique substring match in either direction.
func (o *Orchestrator) Match(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.factories[key]; ok {
		return key, nil
	}

	var candidates []string
	if key != "" {
		for _, registered := range o.order {
			if strings.Contains(registered, key) || strings.Contains(key, registered) {
				candidates = append(candidates, registered)
			}
		}
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	available := make([]string, len(o.order))
	copy(available, o.order)
	sort.Strings(available)

	if len(candidates) > 1 {
		return "", fmt.Errorf("%w: %q is ambiguous (matches %s; available: %s)",
			core.ErrCrewNotFound, name, strings.Join(candidates, ", "), strings.Join(available, ", "))
	}
	return "", fmt.Errorf("%w: %q (available: %s)", core.ErrCrewNotFound, name, strings.Join(available, ", "))
}

// Resolve returns the cached crew instance for name, creating it on first use.
func (o *Orchestrator) Resolve(name string) (Crew, error) {
	key, err := o.Match(name)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if c, ok := o.cache[key]; ok {
		return c, nil
	}

	c, err := o.factories[key]()
	if err != nil {
		return nil, fmt.Errorf("crew %q: %w", key, err)
	}
	o.cache[key] = c

	return c, nil
}

// Run routes task to its crew. Unknown crews yield a failed result.
func (o *Orchestrator) Run(ctx context.Context, task core.Task) core.TaskResult {
	c, err := o.Resolve(task.Name)
	if err != nil {
		o.opts.Logger.Warn("orchestrator.task.unroutable", "task", task.Name, "error", err.Error())
		return core.TaskResult{Success: false, Error: err.Error()}
	}

	return o.run(ctx, c, task)
}

// RunAll runs independent tasks concurrently. Every task gets a fresh crew
// instance so that no stores are shared. Results keep the task order.
func (o *Orchestrator) RunAll(ctx context.Context, tasks []core.Task) []core.TaskResult {
	results := make([]core.TaskResult, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			results[i] = o.runFresh(gctx, task)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (o *Orchestrator) runFresh(ctx context.Context, task core.Task) core.TaskResult {
	key, err := o.Match(task.Name)
	if err != nil {
		return core.TaskResult{Success: false, Error: err.Error()}
	}

	o.mu.Lock()
	factory := o.factories[key]
	o.mu.Unlock()

	c, err := factory()
	if err != nil {
		return core.TaskResult{Success: false, Error: fmt.Sprintf("crew %q: %v", key, err)}
	}

	return o.run(ctx, c, task)
}

func (o *Orchestrator) run(ctx context.Context, c Crew, task core.Task) core.TaskResult {
	logger := o.opts.Logger
	logger.Info("orchestrator.task.start", "task", task.Name, "crew", c.Name())

	res := c.Run(ctx, task)

	if res.Success {
		logger.Info("orchestrator.task.end", "task", task.Name, "crew", c.Name())
	} else {
		logger.Warn("orchestrator.task.failed", "task", task.Name, "crew", c.Name(), "error", res.Error)
	}

	return res
}
