package resume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/flow"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

func resumeRegistry(t *testing.T, llm model.Model) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()
	require.NoError(t, RegisterTools(reg, llm))
	return reg
}

func TestTools_Names(t *testing.T) {
	reg := resumeRegistry(t, model.NewScriptedModel())
	assert.Equal(t, []string{ToolContentOptimizer, ToolStyleSelector, ToolLayoutDesigner, ToolPaginationOptimizer, ToolResumeReview}, reg.Names())
}

func TestTools_DrivenChain(t *testing.T) {
	specialists := model.NewScriptedModel().ThenText(contentReply).ThenText(layoutReply)

	driver := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "c1", Name: ToolContentOptimizer, Arguments: `{"resume_json":"@input","job_description":"Golang backend engineer"}`}).
		ThenToolCalls(model.ToolCall{ID: "c2", Name: ToolStyleSelector, Arguments: `{"action":"match","job_description":"Golang backend engineer"}`}).
		ThenToolCalls(model.ToolCall{ID: "c3", Name: ToolLayoutDesigner, Arguments: `{"resume_json":"@optimized","template":"@template"}`}).
		ThenToolCalls(model.ToolCall{ID: "c4", Name: ToolPaginationOptimizer, Arguments: `{"resume_json":"@layout","target":"one_page"}`}).
		ThenText("Final Answer: the resume is ready in @paginated")

	refs := artifact.NewReferences(nil, "run-1")
	_, err := refs.Put("input", sampleResume())
	require.NoError(t, err)

	loop := flow.NewReAct(driver, resumeRegistry(t, specialists), func(o *flow.Options) {
		o.Artifacts = refs
	})

	res, err := loop.Run(context.Background(), "Optimize the resume in @input for a Golang backend role")
	require.NoError(t, err)
	require.True(t, res.Completed(), res.Answer)
	assert.Equal(t, 5, res.Rounds)
	assert.Contains(t, res.Answer, "@paginated")

	require.Len(t, res.ToolResults, 4)
	for _, tr := range res.ToolResults {
		assert.False(t, tr.IsError, tr.Output)
	}
	assert.Contains(t, res.ToolResults[0].Output, `"ref":"@optimized"`)
	assert.Contains(t, res.ToolResults[1].Output, "matched tech_modern")
	assert.Contains(t, res.ToolResults[2].Output, "layout modern/professional")
	assert.Contains(t, res.ToolResults[3].Output, "optimized for one page")

	assert.Equal(t, []string{"input", "layout", "optimized", "paginated", "template"}, refs.Keys())

	var out Optimization
	require.NoError(t, refs.Decode(KeyPaginated, &out))
	assert.Equal(t, "Backend engineer who cut p99 latency by 40%", out.Data[KeySummary])
	assert.Equal(t, PagesOne, out.Target)
	assert.LessOrEqual(t, out.Pages, 1.0)

	assert.Equal(t, 2, specialists.Calls())
	assert.Equal(t, 0, driver.Remaining())
}

func TestTools_StyleSelectorList(t *testing.T) {
	driver := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "c1", Name: ToolStyleSelector, Arguments: `{"action":"list"}`}).
		ThenText("Final Answer: four templates")

	res, err := flow.NewReAct(driver, resumeRegistry(t, model.NewScriptedModel())).Run(context.Background(), "which templates exist?")
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 1)
	out := res.ToolResults[0].Output
	assert.Contains(t, out, "Available templates:")
	for _, name := range DefaultTemplates().Names() {
		assert.Contains(t, out, "- "+name)
	}
}

func TestTools_StyleSelectorErrors(t *testing.T) {
	driver := model.NewScriptedModel().
		ThenToolCalls(
			model.ToolCall{ID: "c1", Name: ToolStyleSelector, Arguments: `{"action":"select","template_name":"gothic"}`},
			model.ToolCall{ID: "c2", Name: ToolStyleSelector, Arguments: `{"action":"select"}`},
			model.ToolCall{ID: "c3", Name: ToolStyleSelector, Arguments: `{"action":"select","template_name":"minimal_clean","custom_overrides":"[1]"}`},
		).
		ThenText("Final Answer: giving up")

	res, err := flow.NewReAct(driver, resumeRegistry(t, model.NewScriptedModel())).Run(context.Background(), "pick a template")
	require.NoError(t, err)
	assert.True(t, res.Completed())

	require.Len(t, res.ToolResults, 3)
	for _, tr := range res.ToolResults {
		assert.True(t, tr.IsError)
	}
	assert.Contains(t, res.ToolResults[0].Output, "[NOT_FOUND]")
	assert.Contains(t, res.ToolResults[0].Output, "available: tech_modern")
	assert.Contains(t, res.ToolResults[1].Output, "template_name is required")
	assert.Contains(t, res.ToolResults[2].Output, "must be a JSON object")
}

func TestTools_MissingArtifact(t *testing.T) {
	specialists := model.NewScriptedModel()
	driver := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "c1", Name: ToolLayoutDesigner, Arguments: `{"resume_json":"@optimized"}`}).
		ThenText("Final Answer: nothing to lay out")

	res, err := flow.NewReAct(driver, resumeRegistry(t, specialists)).Run(context.Background(), "design a layout")
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 1)
	assert.True(t, res.ToolResults[0].IsError)
	assert.Contains(t, res.ToolResults[0].Output, "optimized")
	assert.Equal(t, 0, specialists.Calls())
}

func TestTools_PaginationWithoutLayout(t *testing.T) {
	driver := model.NewScriptedModel().
		ThenToolCalls(model.ToolCall{ID: "c1", Name: ToolPaginationOptimizer, Arguments: `{"resume_json":"@input","target":"two_pages"}`}).
		ThenText("Final Answer: done")

	refs := artifact.NewReferences(nil, "run-2")
	_, err := refs.Put("input", bulkyResume())
	require.NoError(t, err)

	res, err := flow.NewReAct(driver, resumeRegistry(t, model.NewScriptedModel()), func(o *flow.Options) {
		o.Artifacts = refs
	}).Run(context.Background(), "fit @input on two pages")
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 1)
	assert.False(t, res.ToolResults[0].IsError, res.ToolResults[0].Output)

	var out Optimization
	require.NoError(t, refs.Decode(KeyPaginated, &out))
	assert.Equal(t, PagesTwo, out.Target)
	assert.Len(t, out.Adjustments, DefaultMaxIterations)
	assert.Less(t, out.Pages, 2.07)
}

func TestTools_ResumeReview(t *testing.T) {
	driver := model.NewScriptedModel().
		ThenToolCalls(
			model.ToolCall{ID: "c1", Name: ToolResumeReview, Arguments: `{"resume_json":"@input"}`},
			model.ToolCall{ID: "c2", Name: ToolResumeReview, Arguments: `{"resume_json":"not json"}`},
		).
		ThenText("Final Answer: reviewed")

	refs := artifact.NewReferences(nil, "run-3")
	_, err := refs.Put("input", sampleResume())
	require.NoError(t, err)

	res, err := flow.NewReAct(driver, resumeRegistry(t, model.NewScriptedModel()), func(o *flow.Options) {
		o.Artifacts = refs
	}).Run(context.Background(), "review @input")
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 2)
	review := res.ToolResults[0]
	assert.False(t, review.IsError, review.Output)
	assert.Contains(t, review.Output, `"completeness":89.5`)
	assert.Contains(t, review.Output, "education 1 could name the major")
	assert.Contains(t, review.Output, `"Languages":["Go"]`)

	assert.True(t, res.ToolResults[1].IsError)
	assert.Contains(t, res.ToolResults[1].Output, "[VALIDATION_ERROR]")
	assert.Equal(t, []string{"input"}, refs.Keys())
}
