package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// Crew handles tasks of one kind.
type Crew interface {
	Name() string
	Description() string
	Run(ctx context.Context, task core.Task) core.TaskResult
}

// CrewFactory builds a fresh crew instance.
type CrewFactory func() (Crew, error)

// BaseCrewOptions configures a BaseCrew.
type BaseCrewOptions struct {
	Logger    logging.Logger
	Knowledge core.KnowledgeStore
	// Clock is used to timestamp log lines.
	Clock func() time.Time
}

// BaseCrew provides identity, per-run logs and optional knowledge
// retrieval. Embed it in concrete crews. It keeps no per-run state, so a
// cached crew may serve concurrent runs.
type BaseCrew struct {
	name        string
	description string
	opts        BaseCrewOptions
}

// NewBaseCrew creates a BaseCrew.
func NewBaseCrew(name, description string, optFns ...func(o *BaseCrewOptions)) *BaseCrew {
	opts := BaseCrewOptions{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &BaseCrew{name: name, description: description, opts: opts}
}

// Name returns the crew name.
func (c *BaseCrew) Name() string { return c.name }

// Description returns the crew description.
func (c *BaseCrew) Description() string { return c.description }

// Logger returns the crew logger.
func (c *BaseCrew) Logger() logging.Logger { return c.opts.Logger }

// NewRunLog starts the log of one run.
func (c *BaseCrew) NewRunLog() *RunLog {
	return &RunLog{crew: c.name, clock: c.opts.Clock, logger: c.opts.Logger}
}

// Retrieve returns up to limit knowledge snippets for query. It returns nil
// when no knowledge store is configured or the search fails.
func (c *BaseCrew) Retrieve(query string, limit int) []string {
	if c.opts.Knowledge == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	results, err := c.opts.Knowledge.Search(query, limit)
	if err != nil {
		c.opts.Logger.Warn("crew.knowledge.search_failed", "crew", c.name, "error", err.Error())
		return nil
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Content
	}
	return out
}

// Fail builds a failed TaskResult carrying the run log.
func (c *BaseCrew) Fail(runLog *RunLog, err error) core.TaskResult {
	runLog.Printf("failed: %v", err)
	return core.TaskResult{Success: false, Error: err.Error(), Logs: runLog.Lines()}
}

// RunLog collects the timestamped lines of one crew run.
type RunLog struct {
	crew   string
	clock  func() time.Time
	logger logging.Logger

	mu    sync.Mutex
	lines []string
}

// Printf appends a timestamped line.
func (l *RunLog) Printf(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", l.clock().Format("15:04:05"), fmt.Sprintf(format, args...))

	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()

	l.logger.Debug("crew.log", "crew", l.crew, "line", line)
}

// Lines returns a copy of the log.
func (l *RunLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
