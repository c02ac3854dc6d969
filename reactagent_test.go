package reactagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

func TestNew_RegistersDefaults(t *testing.T) {
	a, err := New(model.NewScriptedModel())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"calculator", "knowledge_search",
		"content_optimizer", "style_selector", "layout_designer", "pagination_optimizer", "resume_review",
	}, a.Registry().Names())
	assert.Equal(t, []string{"resume"}, a.Orchestrator().Names())

	bare, err := New(model.NewScriptedModel(), func(o *Options) { o.WithoutResume = true })
	require.NoError(t, err)
	assert.Equal(t, []string{"calculator", "knowledge_search"}, bare.Registry().Names())
	assert.Empty(t, bare.Orchestrator().Names())
}

func TestRun_CustomToolWithSeed(t *testing.T) {
	m := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "c1", Name: "greet", Arguments: `{"person":"@user"}`}).
		ThenText("Final Answer: greeted")

	a, err := New(m, func(o *Options) { o.WithoutResume = true })
	require.NoError(t, err)

	greet := tool.NewFunctionTool("greet", "Greets a person", map[string]any{
		"type":       "object",
		"properties": map[string]any{"person": map[string]any{"type": "object"}},
		"required":   []any{"person"},
	}, func(_ *core.ToolContext, args map[string]any) (any, error) {
		p := args["person"].(map[string]any)
		return "hello " + p["name"].(string), nil
	})
	require.NoError(t, a.RegisterTool(greet))

	out, err := a.Run(context.Background(), "greet @user", map[string]any{"user": map[string]any{"name": "Ada"}})
	require.NoError(t, err)

	assert.Equal(t, "greeted", out.Result.Answer)
	require.Len(t, out.Result.ToolResults, 1)
	assert.Equal(t, "hello Ada", out.Result.ToolResults[0].Output)
	assert.Equal(t, []string{"user"}, out.References.Keys())
}

func TestRun_PersistsWhenConfigured(t *testing.T) {
	store := artifact.NewInMemoryStore()
	m := model.NewScriptedModel().WithFallback(model.EchoTurn)

	a, err := New(m, func(o *Options) {
		o.WithoutResume = true
		o.Persist = store
	})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "hi", map[string]any{"note": "kept"})
	require.NoError(t, err)

	data, err := store.Get(out.RunID, "note")
	require.NoError(t, err)
	assert.JSONEq(t, `"kept"`, string(data))
}

func TestRunTasks_UnknownCrew(t *testing.T) {
	a, err := New(model.NewScriptedModel())
	require.NoError(t, err)

	results := a.RunTasks(context.Background(), []core.Task{{Name: "cover_letter"}, {Name: "translation"}})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "available: resume")
	}

	res := a.RunTask(context.Background(), core.Task{Name: "resume", Input: map[string]any{}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "empty input")
}
