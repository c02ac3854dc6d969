package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

func constStep(name string, out any, ran *[]string) Step {
	return Func(name, name, func(_ context.Context, _ *State) (any, error) {
		*ran = append(*ran, name)
		return out, nil
	})
}

func TestPipeline_RunsInOrderAndStoresOutputs(t *testing.T) {
	var ran []string

	p := New("chain",
		Func("double", "doubled", func(_ context.Context, s *State) (any, error) {
			ran = append(ran, "double")
			return map[string]any{"n": s.Input()["n"].(int) * 2}, nil
		}),
		Func("inc", "incremented", func(_ context.Context, s *State) (any, error) {
			ran = append(ran, "inc")
			prev, err := s.Object("doubled")
			if err != nil {
				return nil, err
			}
			return map[string]any{"n": prev["n"].(float64) + 1}, nil
		}),
	)

	res := p.Run(context.Background(), map[string]any{"n": 4})

	require.True(t, res.Success, res.Err)
	assert.Equal(t, []string{"double", "inc"}, ran)
	assert.Equal(t, []string{"double", "inc"}, p.Steps())
	assert.Equal(t, map[string]any{"n": 9.0}, res.Output["incremented"])
	require.Len(t, res.Trace, 2)
	assert.Equal(t, "@doubled", res.Trace[0].Token)
	assert.Equal(t, "@incremented", res.Trace[1].Token)
	assert.Empty(t, res.FailedStep)

	assert.Equal(t, []string{"doubled", "incremented", "input"}, res.References.Keys())
	var input map[string]any
	require.NoError(t, res.References.Decode(InputKey, &input))
	assert.Equal(t, 4.0, input["n"])
}

func TestPipeline_AbortsAtFirstFailure(t *testing.T) {
	const n = 5

	for failAt := 0; failAt < n; failAt++ {
		t.Run(fmt.Sprintf("fail_at=%d", failAt), func(t *testing.T) {
			var ran []string
			steps := make([]Step, n)
			for i := range steps {
				name := fmt.Sprintf("step%d", i)
				if i == failAt {
					steps[i] = Func(name, name, func(context.Context, *State) (any, error) {
						ran = append(ran, name)
						return nil, errors.New("broken")
					})
					continue
				}
				steps[i] = constStep(name, i, &ran)
			}

			var hooked []StepOutcome
			res := New("abort", steps...).
				With(WithOnStep(func(o StepOutcome) { hooked = append(hooked, o) })).
				Run(context.Background(), nil)

			assert.False(t, res.Success)
			assert.Len(t, ran, failAt+1)
			require.Len(t, res.Trace, failAt+1)
			assert.Equal(t, hooked, res.Trace)
			assert.Equal(t, fmt.Sprintf("step%d", failAt), res.FailedStep)

			last := res.Trace[failAt]
			assert.False(t, last.Success)
			assert.Equal(t, "broken", last.Error)
			for _, o := range res.Trace[:failAt] {
				assert.True(t, o.Success)
			}

			assert.EqualError(t, res.Err, fmt.Sprintf(`pipeline "abort" failed at step step%d: broken`, failAt))
			_, err := res.References.Get(fmt.Sprintf("step%d", failAt))
			assert.ErrorIs(t, err, core.ErrReferenceNotFound)
		})
	}
}

func TestPipeline_MissingReferenceFails(t *testing.T) {
	var ran []string
	res := New("refs",
		Func("reader", "read", func(_ context.Context, s *State) (any, error) {
			return s.Object("never_written")
		}),
		constStep("after", 1, &ran),
	).Run(context.Background(), nil)

	assert.False(t, res.Success)
	assert.Equal(t, "reader", res.FailedStep)
	assert.ErrorIs(t, res.Err, core.ErrReferenceNotFound)
	assert.Empty(t, ran)
}

func TestPipeline_PanicIsAFailure(t *testing.T) {
	res := New("panics", Func("bad", "bad", func(context.Context, *State) (any, error) {
		panic("nil map")
	})).Run(context.Background(), nil)

	assert.False(t, res.Success)
	require.Len(t, res.Trace, 1)
	assert.Contains(t, res.Trace[0].Error, "panic: nil map")
	assert.Contains(t, res.Summary(), "FAILED")
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	res := New("cancelled", constStep("a", 1, &ran)).Run(ctx, nil)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, ran)
}

func TestPipeline_Persist(t *testing.T) {
	store := artifact.NewInMemoryStore()
	var ran []string

	p := New("persisted", constStep("a", "value", &ran)).With(WithPersist(store))
	res := p.Run(context.Background(), nil)
	require.True(t, res.Success)

	data, err := store.Get(res.RunID, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `"value"`, string(data))

	broken := Func("b", "b", func(context.Context, *State) (any, error) { return nil, errors.New("broken") })
	failed := New("persisted", constStep("a", "value", &ran), broken).With(WithPersist(store)).Run(context.Background(), nil)
	require.False(t, failed.Success)

	keys, err := store.List(failed.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "input"}, keys)
}

func TestPipeline_RunsDoNotShareArtifacts(t *testing.T) {
	var ran []string
	p := New("private", constStep("a", "value", &ran))

	first := p.Run(context.Background(), map[string]any{"n": 1})
	second := p.Run(context.Background(), map[string]any{"n": 2})
	require.True(t, first.Success)
	require.True(t, second.Success)

	assert.NotEqual(t, first.RunID, second.RunID)

	var in map[string]any
	require.NoError(t, first.References.Decode(InputKey, &in))
	assert.Equal(t, 1.0, in["n"])
	require.NoError(t, second.References.Decode(InputKey, &in))
	assert.Equal(t, 2.0, in["n"])

	_, err := second.References.Store().Get(first.RunID, InputKey)
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

type upperExpert struct {
	agent.BaseExpert
}

func (upperExpert) Think(input map[string]any) (agent.Prompt, error) {
	return agent.Prompt{User: fmt.Sprintf("upper %v", input["text"])}, nil
}

func (upperExpert) Decode(raw string, _ map[string]any) (map[string]any, error) {
	return agent.ExtractJSON(raw)
}

func TestAgentStep(t *testing.T) {
	ok := agent.NewSpecialist(upperExpert{agent.BaseExpert{ExpertName: "upper"}},
		model.NewScriptedModel().ThenText(`{"text":"HELLO"}`))

	res := New("agents", AgentStep("shout", "shouted", ok, func(s *State) (map[string]any, error) {
		return map[string]any{"text": s.Input()["text"]}, nil
	})).Run(context.Background(), map[string]any{"text": "hello"})

	require.True(t, res.Success, res.Err)
	assert.Equal(t, map[string]any{"text": "HELLO"}, res.Output["shouted"])

	bad := agent.NewSpecialist(upperExpert{agent.BaseExpert{ExpertName: "upper"}},
		model.NewScriptedModel().ThenText("nope").ThenText("still nope"))

	res = New("agents", AgentStep("shout", "shouted", bad, nil)).Run(context.Background(), nil)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, core.ErrOutputShape)
	assert.Equal(t, "shout", res.FailedStep)
}
