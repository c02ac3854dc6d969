package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/model"
)

// DefaultMaxRetries is how many times malformed output is retried.
const DefaultMaxRetries = 1

// Prompt is the role prompt an Expert builds from its input.
type Prompt struct {
	System string
	User   string
	// Temperature overrides the specialist default when set.
	Temperature *float64
}

// Reflection is the outcome of an Expert's self-check.
type Reflection struct {
	// Repaired lists fields that were filled in deterministically.
	Repaired []string
	// Missing lists required fields that could not be repaired.
	Missing     []string
	Notes       []string
	Suggestions []string
}

// Expert is the domain capability of a specialist agent.
type Expert interface {
	Name() string
	Description() string
	// Think builds the role prompt from the input payload.
	Think(input map[string]any) (Prompt, error)
	// Decode turns raw model output into the structured result. Malformed
	// output must be reported with an error wrapping core.ErrOutputShape.
	Decode(raw string, input map[string]any) (map[string]any, error)
	// Reflect checks the decoded output and may repair it in place.
	Reflect(input, output map[string]any) Reflection
}

// BaseExpert provides identity and a no-op Reflect. Embed it in experts
// that do not self-check.
type BaseExpert struct {
	ExpertName        string
	ExpertDescription string
}

// Name implements Expert.
func (b BaseExpert) Name() string { return b.ExpertName }

// Description implements Expert.
func (b BaseExpert) Description() string { return b.ExpertDescription }

// Reflect implements Expert.
func (BaseExpert) Reflect(_, _ map[string]any) Reflection { return Reflection{} }

// SpecialistOptions configures a Specialist.
type SpecialistOptions struct {
	MaxRetries  int
	Temperature *float64
	Logger      logging.Logger
}

// Specialist runs Think-Execute-Reflect for an Expert with one model call per
// attempt. It holds no per-run state, so one instance may serve concurrent
// runs as long as its Expert is stateless.
type Specialist struct {
	BaseAgent
	expert Expert
	llm    model.Model
	opts   SpecialistOptions
}

// NewSpecialist creates a specialist for expert.
func NewSpecialist(expert Expert, llm model.Model, optFns ...func(o *SpecialistOptions)) *Specialist {
	opts := SpecialistOptions{
		MaxRetries: DefaultMaxRetries,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	s := &Specialist{
		BaseAgent: NewBaseAgent(expert.Name()),
		expert:    expert,
		llm:       llm,
		opts:      opts,
	}
	s.SetDescription(expert.Description())

	return s
}

// Expert returns the wrapped expert.
func (s *Specialist) Expert() Expert { return s.expert }

// Run executes the cycle and reports failures inside the result.
func (s *Specialist) Run(ctx context.Context, input map[string]any) core.AgentResult {
	res, _ := s.Execute(ctx, input)
	return res
}

// Execute executes the cycle. On failure the returned error carries the
// cause (core.ErrOutputShape after exhausted retries) and the result has
// Success=false.
func (s *Specialist) Execute(ctx context.Context, input map[string]any) (core.AgentResult, error) {
	start := time.Now()
	logger := s.opts.Logger

	runCtx, release := s.start(ctx)
	defer release()

	logger.Info("specialist.run.start", "agent", s.Name(), "max_retries", s.opts.MaxRetries)

	prompt, err := s.expert.Think(input)
	if err != nil {
		err = fmt.Errorf("%s think: %w", s.Name(), err)
		logger.Error("specialist.think.failed", "agent", s.Name(), "error", err.Error())
		return core.NewFailedResult(err, time.Since(start)), err
	}

	output, attempts, err := s.execute(runCtx, prompt, input)
	if err != nil {
		logger.Error("specialist.run.failed", "agent", s.Name(), "attempts", attempts, "error", err.Error())
		res := core.NewFailedResult(err, time.Since(start))
		res.Metadata.Attempts = attempts
		res.Metadata.RoundsUsed = attempts
		return res, err
	}

	refl := s.expert.Reflect(input, output)
	if len(refl.Repaired) > 0 {
		logger.Info("specialist.reflect.repaired", "agent", s.Name(), "fields", refl.Repaired)
	}
	if len(refl.Missing) > 0 {
		logger.Warn("specialist.reflect.incomplete", "agent", s.Name(), "missing", refl.Missing)
	}

	res := core.AgentResult{
		Success:     true,
		Data:        output,
		Suggestions: refl.Suggestions,
		Metadata: core.ResultMetadata{
			ExecutionTime: time.Since(start),
			RoundsUsed:    attempts,
			Attempts:      attempts,
			Incomplete:    len(refl.Missing) > 0,
			Missing:       refl.Missing,
		},
	}
	if len(refl.Notes) > 0 {
		res.Reasoning = strings.Join(refl.Notes, "; ")
	}

	logger.Info("specialist.run.end", "agent", s.Name(), "attempts", attempts, "duration", res.Metadata.ExecutionTime)

	return res, nil
}

// execute performs the model calls. Only output shape errors are retried.
func (s *Specialist) execute(ctx context.Context, prompt Prompt, input map[string]any) (map[string]any, int, error) {
	temperature := s.opts.Temperature
	if prompt.Temperature != nil {
		temperature = prompt.Temperature
	}

	msgs := []core.Message{core.NewUserMessage(prompt.User)}
	if prompt.System != "" {
		msgs = append([]core.Message{core.NewSystemMessage(prompt.System)}, msgs...)
	}

	var lastErr error
	attempts := 0
	for attempts <= s.opts.MaxRetries {
		attempts++
		start := time.Now()

		resp, err := model.Collect(ctx, s.llm, model.Request{Messages: msgs, Temperature: temperature})
		logging.LogLLMCall(s.opts.Logger, s.llm.Info().Name, tokensOf(resp), time.Since(start), err == nil, err)
		if err != nil {
			return nil, attempts, fmt.Errorf("%s model call: %w", s.Name(), err)
		}

		output, err := s.expert.Decode(resp.Content, input)
		if err == nil {
			return output, attempts, nil
		}
		if !errors.Is(err, core.ErrOutputShape) {
			return nil, attempts, fmt.Errorf("%s decode: %w", s.Name(), err)
		}

		lastErr = err
		s.opts.Logger.Warn("specialist.output.malformed", "agent", s.Name(), "attempt", attempts, "error", err.Error())

		msgs = append(msgs,
			core.NewAssistantMessage(resp.Content),
			core.NewUserMessage(fmt.Sprintf("Your previous reply could not be used (%v). Reply with a single JSON object only.", err)),
		)
	}

	return nil, attempts, fmt.Errorf("%s gave malformed output after %d attempt(s): %w", s.Name(), attempts, lastErr)
}

func tokensOf(resp model.Response) int {
	if resp.Usage == nil {
		return 0
	}
	return resp.Usage.TotalTokens
}
