package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/session"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// DefaultMaxRounds is the default round budget of a run.
const DefaultMaxRounds = 5

// State is the lifecycle state of a run.
type State int

const (
	StateIdle State = iota
	StateThinking
	StateActing
	StateDone
	StateBudgetExceeded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateThinking:
		return "thinking"
	case StateActing:
		return "acting"
	case StateDone:
		return "done"
	case StateBudgetExceeded:
		return "budget_exceeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == StateDone || s == StateBudgetExceeded }

// Options configures a ReAct loop.
type Options struct {
	Name        string
	Instruction string
	// Vars are exposed to the instruction template.
	Vars      map[string]any
	MaxRounds int
	Strategy  parser.Strategy
	// Artifacts is shared by every run of the loop. When nil each run gets a
	// fresh in-memory scope named after its run ID.
	Artifacts     *artifact.References
	Temperature   *float64
	Stream        bool
	Logger        logging.Logger
	OnStateChange func(from, to State)
}

// Result is the outcome of one run.
type Result struct {
	RunID       string
	State       State
	Answer      string
	Thought     string
	Rounds      int
	Messages    []core.Message
	ToolResults []core.ToolResult
	// Err is core.ErrBudgetExceeded (wrapped) when the run ended without a
	// final answer. Answer then holds the last assistant text.
	Err error
}

// Completed reports whether the run produced a final answer.
func (r *Result) Completed() bool { return r.State == StateDone }

// ReAct is a bounded reason-act loop over a model and a tool registry. A
// ReAct value holds no per-run state and may run concurrently.
type ReAct struct {
	model    model.Model
	registry *tool.Registry
	opts     Options
}

// NewReAct creates a loop. A nil registry means no tools.
func NewReAct(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *ReAct {
	opts := Options{
		MaxRounds: DefaultMaxRounds,
		Strategy:  parser.NewStructured(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRounds < 1 {
		opts.MaxRounds = DefaultMaxRounds
	}

	if registry == nil {
		registry = tool.NewRegistry()
	}

	return &ReAct{model: m, registry: registry, opts: opts}
}

// Name returns the configured loop name.
func (r *ReAct) Name() string { return r.opts.Name }

// Registry returns the loop's tool registry.
func (r *ReAct) Registry() *tool.Registry { return r.registry }

// MaxRounds returns the round budget.
func (r *ReAct) MaxRounds() int { return r.opts.MaxRounds }

// Run executes the loop for goal. The returned error is reserved for
// backend and cancellation faults; an exhausted budget is reported through
// Result.Err with a best-effort answer.
func (r *ReAct) Run(ctx context.Context, goal string) (*Result, error) {
	runID := uuid.NewString()
	refs := r.opts.Artifacts
	if refs == nil {
		refs = artifact.NewReferences(nil, runID)
	}

	logger := r.opts.Logger
	mode := r.opts.Strategy.Mode()
	specs := r.registry.Specs()

	system, err := BuildSystemPrompt(PromptData{
		Instruction: r.opts.Instruction,
		Mode:        mode,
		Tools:       specs,
		Artifacts:   refs.Keys(),
		Vars:        r.opts.Vars,
	})
	if err != nil {
		return nil, err
	}

	conv, err := session.NewConversation(core.NewSystemMessage(system), core.NewUserMessage(goal))
	if err != nil {
		return nil, err
	}

	dispatcher := NewDispatcher(r.registry, func(o *DispatcherOptions) {
		o.Logger = logger
		o.References = refs
		o.RunID = runID
		o.AgentName = r.opts.Name
	})

	run := &runState{
		loop:   r,
		conv:   conv,
		result: &Result{RunID: runID, State: StateIdle},
		seen:   make(map[string]struct{}),
	}

	logger.Info("react.run.start", "agent", r.opts.Name, "run_id", runID, "strategy", mode.String(), "max_rounds", r.opts.MaxRounds, "tools", len(specs))

	budget := core.NewRoundBudget(r.opts.MaxRounds)
	start := time.Now()

	for !run.result.State.Terminal() {
		if err := ctx.Err(); err != nil {
			return run.finish(budget), err
		}

		if err := budget.Next(); err != nil {
			run.exceed(err)
			break
		}

		if err := run.round(ctx, budget.Used(), specs, dispatcher); err != nil {
			return run.finish(budget), err
		}
	}

	res := run.finish(budget)

	logger.Info("react.run.end", "agent", r.opts.Name, "run_id", runID, "state", res.State.String(), "rounds", res.Rounds, "duration", time.Since(start))

	return res, nil
}

type runState struct {
	loop   *ReAct
	conv   *session.Conversation
	result *Result
	seen   map[string]struct{}
}

func (s *runState) transition(to State) {
	from := s.result.State
	if from == to {
		return
	}
	s.result.State = to
	if fn := s.loop.opts.OnStateChange; fn != nil {
		fn(from, to)
	}
}

// round performs one model call and handles its outcome.
func (s *runState) round(ctx context.Context, n int, specs []core.ToolSpec, d *Dispatcher) error {
	opts := s.loop.opts
	logger := opts.Logger
	mode := opts.Strategy.Mode()
	start := time.Now()

	s.transition(StateThinking)

	if pending := s.conv.PendingToolCalls(); len(pending) > 0 {
		return fmt.Errorf("round %d: %w: %s", n, core.ErrPendingToolCalls, strings.Join(pending, ", "))
	}

	req := model.Request{
		Messages:    RenderHistory(s.conv.Messages(), mode),
		Stream:      opts.Stream,
		Temperature: opts.Temperature,
	}
	if mode == parser.ModeStructured && len(specs) > 0 {
		req.Tools = specs
		req.ToolChoice = "auto"
	}

	resp, err := model.Collect(ctx, s.loop.model, req)

	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	logging.LogLLMCall(logger, s.loop.model.Info().Name, tokens, time.Since(start), err == nil, err)

	if err != nil {
		return fmt.Errorf("model call failed in round %d: %w", n, err)
	}

	parsed, perr := opts.Strategy.Parse(resp, specs)
	if parsed.Thought != "" {
		s.result.Thought = parsed.Thought
	}

	calls := s.uniqueIDs(parsed.Invocations)
	if err := s.conv.Append(core.NewAssistantMessage(resp.Content, calls...)); err != nil {
		return err
	}

	switch {
	case perr != nil:
		logger.Warn("react.round.parse_error", "run_id", s.result.RunID, "round", n, "error", perr.Error())
		if err := s.conv.Append(core.NewUserMessage(correctiveParse(perr))); err != nil {
			return err
		}

	case len(parsed.Invocations) > 0:
		s.transition(StateActing)
		for i, inv := range parsed.Invocations {
			inv.Call.ID = calls[i].ID
			res := d.Dispatch(ctx, inv)
			s.result.ToolResults = append(s.result.ToolResults, res)
			if err := s.conv.Append(core.NewToolMessage(res)); err != nil {
				return err
			}
		}

	case parsed.Final:
		s.result.Answer = parsed.Answer
		s.transition(StateDone)

	default:
		if err := s.conv.Append(core.NewUserMessage(correctiveNoAction)); err != nil {
			return err
		}
	}

	logging.LogRound(logger, n, len(parsed.Invocations), s.result.State == StateDone, time.Since(start))

	return nil
}

// uniqueIDs returns the invocation calls, replacing ids a backend reused
// from earlier rounds.
func (s *runState) uniqueIDs(invs []parser.Invocation) []core.ToolCall {
	calls := make([]core.ToolCall, len(invs))
	for i, inv := range invs {
		call := inv.Call
		if _, dup := s.seen[call.ID]; dup || call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		s.seen[call.ID] = struct{}{}
		calls[i] = call
	}
	return calls
}

func (s *runState) exceed(err error) {
	s.result.Answer = s.lastAssistantText()
	s.result.Err = err
	s.loop.opts.Logger.Warn("react.run.budget_exceeded", "run_id", s.result.RunID, "max_rounds", s.loop.opts.MaxRounds)
	s.transition(StateBudgetExceeded)
}

func (s *runState) finish(budget *core.RoundBudget) *Result {
	s.result.Rounds = budget.Used()
	s.result.Messages = s.conv.Messages()
	return s.result
}

func (s *runState) lastAssistantText() string {
	msgs := s.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != core.RoleAssistant {
			continue
		}
		_, text := parser.SplitThought(msgs[i].Content)
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}
