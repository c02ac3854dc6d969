package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/flow"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/parser"
	"github.com/Chan-Developer/ReAct-agent/pipeline"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

type polishExpert struct {
	agent.BaseExpert
}

func (polishExpert) Think(input map[string]any) (agent.Prompt, error) {
	resume, ok := input["resume"].(map[string]any)
	if !ok {
		return agent.Prompt{}, fmt.Errorf("resume object is required")
	}
	return agent.Prompt{User: fmt.Sprintf("polish %v", resume["name"])}, nil
}

func (polishExpert) Decode(raw string, _ map[string]any) (map[string]any, error) {
	return agent.ExtractJSON(raw)
}

func (polishExpert) Reflect(_, output map[string]any) agent.Reflection {
	return agent.Reflection{Notes: []string{fmt.Sprintf("polished %d fields", len(output))}}
}

func polishTool(m model.Model) *AgentTool {
	s := agent.NewSpecialist(polishExpert{agent.BaseExpert{ExpertName: "polisher", ExpertDescription: "Polishes a resume"}}, m)
	return NewAgentTool(s, func(o *AgentToolOptions) {
		o.Name = "content_optimizer"
		o.OutputKey = "optimized"
		o.Parameters = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"resume_json": map[string]any{"type": "object", "description": "Resume data"},
			},
			"required": []string{"resume_json"},
		}
		o.InputMapper = func(args map[string]any) (map[string]any, error) {
			return map[string]any{"resume": args["resume_json"]}, nil
		}
	})
}

func dispatch(t *testing.T, reg *tool.Registry, refs *artifact.References, name string, args map[string]any) core.ToolResult {
	t.Helper()
	d := flow.NewDispatcher(reg, func(o *flow.DispatcherOptions) { o.References = refs })
	return d.Dispatch(context.Background(), parser.Invocation{Call: core.ToolCall{ID: "c-" + name, Name: name, Arguments: args}})
}

func TestAgentTool_StoresResultAndReturnsToken(t *testing.T) {
	m := model.NewScriptedModel().ThenText(`{"name":"Ada","summary":"Engineer"}`)

	reg := tool.NewRegistry()
	reg.MustRegister(polishTool(m))

	refs := artifact.NewReferences(nil, "run")
	_, err := refs.Put("resume", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	res := dispatch(t, reg, refs, "content_optimizer", map[string]any{"resume_json": "@resume"})
	require.False(t, res.IsError, res.Output)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
	assert.Equal(t, "@optimized", out["ref"])
	assert.Equal(t, "polished 2 fields", out["summary"])
	assert.NotContains(t, res.Output, "Engineer")

	var stored map[string]any
	require.NoError(t, refs.Decode("optimized", &stored))
	assert.Equal(t, "Engineer", stored["summary"])
}

func TestAgentTool_FailureIsAnObservation(t *testing.T) {
	m := model.NewScriptedModel().ThenText("not json").ThenText("still not json")

	reg := tool.NewRegistry()
	reg.MustRegister(polishTool(m))

	res := dispatch(t, reg, artifact.NewReferences(nil, "run"), "content_optimizer", map[string]any{
		"resume_json": map[string]any{"name": "Ada"},
	})

	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, tool.CodeExecution)
	assert.Contains(t, res.Output, "output shape")
}

func TestAgentTool_ConcurrentRunsShareTool(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	m := model.NewScriptedModel().
		ThenFunc(func(model.Request) (model.Response, error) {
			close(entered)
			<-release
			return model.TextResponse(`{"name":"Ada","summary":"first"}`), nil
		}).
		ThenText(`{"name":"Grace","summary":"second"}`)

	reg := tool.NewRegistry()
	reg.MustRegister(polishTool(m))

	refsA := artifact.NewReferences(nil, "run-a")
	refsB := artifact.NewReferences(nil, "run-b")

	done := make(chan core.ToolResult)
	go func() {
		done <- dispatch(t, reg, refsA, "content_optimizer", map[string]any{"resume_json": map[string]any{"name": "Ada"}})
	}()

	<-entered
	second := dispatch(t, reg, refsB, "content_optimizer", map[string]any{"resume_json": map[string]any{"name": "Grace"}})
	require.False(t, second.IsError, second.Output)

	close(release)
	first := <-done
	require.False(t, first.IsError, first.Output)

	var a, b map[string]any
	require.NoError(t, refsA.Decode("optimized", &a))
	require.NoError(t, refsB.Decode("optimized", &b))
	assert.Equal(t, "first", a["summary"])
	assert.Equal(t, "second", b["summary"])
}

func TestStepTool(t *testing.T) {
	step := pipeline.Func("count", "counted", func(_ context.Context, s *pipeline.State) (any, error) {
		doc, err := s.Object("doc")
		if err != nil {
			return nil, err
		}
		return map[string]any{"words": len(strings.Fields(doc["text"].(string))), "label": s.Input()["label"]}, nil
	})

	reg := tool.NewRegistry()
	reg.MustRegister(NewStepTool(step, "word_counter", "Counts words of @doc", map[string]any{
		"type":       "object",
		"properties": map[string]any{"label": map[string]any{"type": "string"}},
	}))

	refs := artifact.NewReferences(nil, "run")
	_, err := refs.Put("doc", map[string]any{"text": "one two three"})
	require.NoError(t, err)

	res := dispatch(t, reg, refs, "word_counter", map[string]any{"label": "draft"})
	require.False(t, res.IsError, res.Output)
	assert.Contains(t, res.Output, `"ref":"@counted"`)
	assert.Contains(t, res.Output, "label, words")

	var counted map[string]any
	require.NoError(t, refs.Decode("counted", &counted))
	assert.Equal(t, 3.0, counted["words"])

	empty := artifact.NewReferences(nil, "other")
	res = dispatch(t, reg, empty, "word_counter", map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, tool.CodeReferenceNotFound)
}

func TestDrivenMode_ChainsTokens(t *testing.T) {
	specialistModel := model.NewScriptedModel().ThenText(`{"name":"Ada","summary":"Polished"}`)

	layout := pipeline.Func("layout", "layout", func(_ context.Context, s *pipeline.State) (any, error) {
		resume, ok := s.Input()["resume_json"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("resume_json must be an object")
		}
		return map[string]any{"sections": []string{"header", "summary"}, "for": resume["name"]}, nil
	})

	reg := tool.NewRegistry()
	reg.MustRegister(polishTool(specialistModel))
	reg.MustRegister(NewStepTool(layout, "layout_designer", "Designs a layout", map[string]any{
		"type":       "object",
		"properties": map[string]any{"resume_json": map[string]any{"type": "object"}},
		"required":   []string{"resume_json"},
	}))

	refs := artifact.NewReferences(nil, "driven")
	_, err := refs.Put("input", map[string]any{"name": "Ada"})
	require.NoError(t, err)

	driver := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "1", Name: "content_optimizer", Arguments: `{"resume_json":"@input"}`}).
		ThenToolCalls(model.ToolCall{ID: "2", Name: "layout_designer", Arguments: `{"resume_json":"@optimized"}`}).
		ThenText("Final Answer: layout stored in @layout")

	res, err := flow.NewReAct(driver, reg, func(o *flow.Options) { o.Artifacts = refs }).Run(context.Background(), "optimize")
	require.NoError(t, err)

	assert.Equal(t, flow.StateDone, res.State)
	require.Len(t, res.ToolResults, 2)
	for _, tr := range res.ToolResults {
		assert.False(t, tr.IsError, tr.Output)
	}
	assert.Equal(t, []string{"input", "layout", "optimized"}, refs.Keys())

	var stored map[string]any
	require.NoError(t, refs.Decode("layout", &stored))
	assert.Equal(t, "Ada", stored["for"])
}
