package resume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

func TestContentExpert_MergesAndSuggests(t *testing.T) {
	m := model.NewScriptedModel().ThenText(contentReply)
	s := agent.NewSpecialist(NewContentExpert(), m)

	input := map[string]any{
		"resume":          sampleResume(),
		"job_description": "Go backend engineer",
		"references":      []string{"quantify every highlight"},
	}
	res, err := s.Execute(context.Background(), input)
	require.NoError(t, err)
	require.True(t, res.Success)

	resume := res.Data["resume"].(map[string]any)
	assert.Equal(t, "Backend engineer who cut p99 latency by 40%", resume["summary"])
	assert.Equal(t, "Ada Lovelace", resume["name"])
	assert.Len(t, list(resume, KeyExperience), 2)

	assert.Equal(t, []string{"few metrics", "vague summary", "no keywords", "add Kubernetes", "quantify latency"}, res.Suggestions)
	assert.Equal(t, "solid backend profile", res.Reasoning)
	assert.Equal(t, "Backend engineer", sampleResume()["summary"])

	prompt := m.Requests()[0].Messages[1].Content
	assert.Contains(t, prompt, "Go backend engineer")
	assert.Contains(t, prompt, "- quantify every highlight")
	assert.Contains(t, prompt, `"name": "Ada Lovelace"`)
}

func TestContentExpert_RetriesMissingOptimizedResume(t *testing.T) {
	m := model.NewScriptedModel().
		ThenText(`{"analysis": "looks fine"}`).
		ThenText(contentReply)
	s := agent.NewSpecialist(NewContentExpert(), m)

	res, err := s.Execute(context.Background(), map[string]any{"resume": sampleResume()})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metadata.Attempts)
	assert.Contains(t, m.Requests()[1].Messages[3].Content, "optimized_resume")
}

func TestContentExpert_FailsAfterRetry(t *testing.T) {
	m := model.NewScriptedModel().ThenText("no json here").ThenText(`{"optimized_resume": "text"}`)
	s := agent.NewSpecialist(NewContentExpert(), m)

	res, err := s.Execute(context.Background(), map[string]any{"resume": sampleResume()})
	require.ErrorIs(t, err, core.ErrOutputShape)
	assert.False(t, res.Success)
	assert.Equal(t, 2, m.Calls())
}

func TestContentExpert_Reflect(t *testing.T) {
	e := NewContentExpert()

	t.Run("restores name", func(t *testing.T) {
		out := map[string]any{"resume": map[string]any{"summary": "x"}}
		refl := e.Reflect(map[string]any{"resume": map[string]any{"name": "Ada"}}, out)
		assert.Equal(t, []string{"name"}, refl.Repaired)
		assert.Empty(t, refl.Missing)
		assert.Equal(t, "Ada", out["resume"].(map[string]any)["name"])
	})

	t.Run("reports missing name", func(t *testing.T) {
		refl := e.Reflect(map[string]any{"resume": map[string]any{}}, map[string]any{"resume": map[string]any{}})
		assert.Equal(t, []string{"name"}, refl.Missing)
	})
}

func TestContentExpert_IncompleteResult(t *testing.T) {
	m := model.NewScriptedModel().ThenText(`{"optimized_resume": {"summary": "x"}}`)
	s := agent.NewSpecialist(NewContentExpert(), m)

	res, err := s.Execute(context.Background(), map[string]any{"resume": `{"summary": "raw"}`})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Metadata.Incomplete)
	assert.Equal(t, []string{"name"}, res.Metadata.Missing)
}

func TestResumeOf(t *testing.T) {
	inner := map[string]any{"name": "Ada"}
	assert.Equal(t, inner, ResumeOf(map[string]any{"resume": inner, "analysis": "x"}))
	assert.Equal(t, inner, ResumeOf(map[string]any{"resume_data": inner}))
	assert.Equal(t, inner, ResumeOf(inner))
}
