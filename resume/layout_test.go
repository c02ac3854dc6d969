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

func TestDefaultLayout_SectionOrder(t *testing.T) {
	tests := []struct {
		name   string
		resume map[string]any
		want   []string
	}{
		{"no experience", map[string]any{"name": "A"}, GraduateOrder},
		{"single internship", map[string]any{"experience": []any{map[string]any{"position": "Backend Intern"}}}, GraduateOrder},
		{"single internship zh", map[string]any{"experience": []any{map[string]any{"position": "后端实习生"}}}, GraduateOrder},
		{"single job", map[string]any{"experience": []any{map[string]any{"position": "Engineer"}}}, ExperiencedOrder},
		{"experienced", sampleResume(), ExperiencedOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLayout(tt.resume).SectionOrder)
		})
	}
}

func TestTrimContent(t *testing.T) {
	resume := sampleResume()

	out := TrimContent(resume, ContentLimits{MaxExperiences: 1, MaxProjects: 1, MaxHighlights: 3})

	exp := list(out, KeyExperience)
	require.Len(t, exp, 1)
	assert.Len(t, list(exp[0].(map[string]any), KeyHighlights), 3)

	orig := list(resume, KeyExperience)
	assert.Len(t, orig, 2)
	assert.Len(t, list(orig[0].(map[string]any), KeyHighlights), 5)

	unlimited := TrimContent(resume, ContentLimits{})
	assert.Len(t, list(unlimited, KeyExperience), 2)
	assert.Nil(t, TrimContent(nil, ContentLimits{MaxProjects: 1}))
}

func TestLayout_Complete(t *testing.T) {
	l := &Layout{Style: "classic", Font: &FontConfig{BodySize: 11}}
	filled := l.Complete(DefaultLayout(nil))

	assert.Equal(t, []string{"section_order", "color_scheme", "spacing_config", "visual_elements", "content_limits"}, filled)
	assert.Equal(t, "classic", l.Style)
	assert.Equal(t, 11.0, l.Font.BodySize)
	assert.Equal(t, 3, l.Limits.MaxExperiences)
}

func TestLayoutExpert_RepairsAndTrims(t *testing.T) {
	m := model.NewScriptedModel().ThenText(layoutReply)
	s := agent.NewSpecialist(NewLayoutExpert(), m)

	res, err := s.Execute(context.Background(), map[string]any{"resume": sampleResume()})
	require.NoError(t, err)
	require.True(t, res.Success)

	layout, ok := res.Data["layout_config"].(*Layout)
	require.True(t, ok)
	assert.Equal(t, "modern", layout.Style)
	require.NotNil(t, layout.Limits)
	assert.Equal(t, 3, layout.Limits.MaxHighlights)
	assert.Equal(t, "Microsoft YaHei", layout.Font.Family)

	trimmed := res.Data["resume"].(map[string]any)
	first := list(trimmed, KeyExperience)[0].(map[string]any)
	assert.Len(t, list(first, KeyHighlights), 3)

	assert.Contains(t, res.Suggestions, "lead with experience")
	assert.Contains(t, res.Reasoning, "defaults applied for font_config")
	assert.False(t, res.Metadata.Incomplete)
}

func TestLayoutExpert_TemplateBeforeDefaults(t *testing.T) {
	m := model.NewScriptedModel().ThenText(`{"design_notes": "airy"}`)
	s := agent.NewSpecialist(NewLayoutExpert(), m)

	tpl, _ := DefaultTemplates().Get("classic_professional")
	res, err := s.Execute(context.Background(), map[string]any{
		"resume":   sampleResume(),
		"template": tpl.LayoutConfig(),
	})
	require.NoError(t, err)

	layout := res.Data["layout_config"].(*Layout)
	assert.Equal(t, tpl.SectionOrder, layout.SectionOrder)
	assert.Equal(t, "monochrome", layout.ColorScheme)
	assert.Equal(t, 5, layout.Limits.MaxExperiences)

	req := m.Requests()[0]
	assert.Contains(t, req.Messages[1].Content, "Start from this template configuration")
}

func TestLayoutExpert_NestedConfigAndMalformedOutput(t *testing.T) {
	e := NewLayoutExpert()

	out, err := e.Decode(`{"layout_config": {"style": "minimal"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "minimal", out["layout_config"].(*Layout).Style)

	_, err = e.Decode("I would pick a modern style.", nil)
	assert.ErrorIs(t, err, core.ErrOutputShape)

	_, err = e.Decode(`{"section_order": "header"}`, nil)
	assert.ErrorIs(t, err, core.ErrOutputShape)

	_, err = e.Think(map[string]any{})
	assert.Error(t, err)
}
