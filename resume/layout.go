package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	internalutil "github.com/Chan-Developer/ReAct-agent/internal/util"
)

// FontConfig holds font family and sizes in points.
type FontConfig struct {
	Family         string  `json:"family,omitempty" yaml:"family,omitempty"`
	TitleSize      float64 `json:"title_size" yaml:"title_size"`
	HeadingSize    float64 `json:"heading_size" yaml:"heading_size"`
	SubheadingSize float64 `json:"subheading_size" yaml:"subheading_size"`
	BodySize       float64 `json:"body_size" yaml:"body_size"`
	SmallSize      float64 `json:"small_size" yaml:"small_size"`
}

// SpacingConfig holds the page margin in inches and gaps in points.
type SpacingConfig struct {
	Margin     float64 `json:"margin" yaml:"margin"`
	SectionGap float64 `json:"section_gap" yaml:"section_gap"`
	ItemGap    float64 `json:"item_gap" yaml:"item_gap"`
	LineHeight float64 `json:"line_height" yaml:"line_height"`
}

// VisualElements toggles decorations.
type VisualElements struct {
	UseIcons          bool `json:"use_icons" yaml:"use_icons"`
	UseSkillBars      bool `json:"use_skill_bars" yaml:"use_skill_bars"`
	UseTimeline       bool `json:"use_timeline" yaml:"use_timeline"`
	HighlightKeywords bool `json:"highlight_keywords" yaml:"highlight_keywords"`
}

// ContentLimits caps list sections. Zero means unlimited.
type ContentLimits struct {
	CompactMode    bool `json:"compact_mode" yaml:"compact_mode"`
	MaxExperiences int  `json:"max_experiences" yaml:"max_experiences"`
	MaxProjects    int  `json:"max_projects" yaml:"max_projects"`
	MaxHighlights  int  `json:"max_highlights_per_item" yaml:"max_highlights_per_item"`
}

// Layout is a layout configuration. Nil sections are absent and get filled
// by Complete.
type Layout struct {
	SectionOrder []string        `json:"section_order,omitempty"`
	Style        string          `json:"style,omitempty"`
	ColorScheme  string          `json:"color_scheme,omitempty"`
	Font         *FontConfig     `json:"font_config,omitempty"`
	Spacing      *SpacingConfig  `json:"spacing_config,omitempty"`
	Visual       *VisualElements `json:"visual_elements,omitempty"`
	Limits       *ContentLimits  `json:"content_limits,omitempty"`
	DesignNotes  string          `json:"design_notes,omitempty"`
}

// Clone returns a deep copy.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	cp := *l
	cp.SectionOrder = append([]string(nil), l.SectionOrder...)
	if l.Font != nil {
		f := *l.Font
		cp.Font = &f
	}
	if l.Spacing != nil {
		s := *l.Spacing
		cp.Spacing = &s
	}
	if l.Visual != nil {
		v := *l.Visual
		cp.Visual = &v
	}
	if l.Limits != nil {
		c := *l.Limits
		cp.Limits = &c
	}
	return &cp
}

// Complete fills absent sections from base and returns their JSON names.
func (l *Layout) Complete(base *Layout) []string {
	var filled []string
	if len(l.SectionOrder) == 0 && len(base.SectionOrder) > 0 {
		l.SectionOrder = append([]string(nil), base.SectionOrder...)
		filled = append(filled, "section_order")
	}
	if l.Style == "" && base.Style != "" {
		l.Style = base.Style
		filled = append(filled, "style")
	}
	if l.ColorScheme == "" && base.ColorScheme != "" {
		l.ColorScheme = base.ColorScheme
		filled = append(filled, "color_scheme")
	}
	if l.Font == nil && base.Font != nil {
		f := *base.Font
		l.Font = &f
		filled = append(filled, "font_config")
	}
	if l.Spacing == nil && base.Spacing != nil {
		s := *base.Spacing
		l.Spacing = &s
		filled = append(filled, "spacing_config")
	}
	if l.Visual == nil && base.Visual != nil {
		v := *base.Visual
		l.Visual = &v
		filled = append(filled, "visual_elements")
	}
	if l.Limits == nil && base.Limits != nil {
		c := *base.Limits
		l.Limits = &c
		filled = append(filled, "content_limits")
	}
	return filled
}

// Default section orders.
var (
	ExperiencedOrder = []string{"header", "summary", "experience", "projects", "education", "skills"}
	GraduateOrder    = []string{"header", "summary", "education", "projects", "experience", "skills"}
)

// IsFreshGraduate reports whether the resume has no experience, or a single
// internship.
func IsFreshGraduate(resume map[string]any) bool {
	exp := list(resume, KeyExperience)
	if len(exp) == 0 {
		return true
	}
	if len(exp) > 1 {
		return false
	}
	b, _ := json.Marshal(exp[0])
	s := strings.ToLower(string(b))
	return strings.Contains(s, "intern") || strings.Contains(s, "实习")
}

// DefaultLayout returns the compact one-page layout for resume. Fresh
// graduates get education before experience.
func DefaultLayout(resume map[string]any) *Layout {
	order := ExperiencedOrder
	if IsFreshGraduate(resume) {
		order = GraduateOrder
	}

	return &Layout{
		SectionOrder: append([]string(nil), order...),
		Style:        "modern",
		ColorScheme:  "professional",
		Font: &FontConfig{
			Family:         "Microsoft YaHei",
			TitleSize:      16,
			HeadingSize:    10,
			SubheadingSize: 9,
			BodySize:       9,
			SmallSize:      8,
		},
		Spacing: &SpacingConfig{Margin: 0.4, SectionGap: 4, ItemGap: 1, LineHeight: 1.0},
		Visual: &VisualElements{
			UseIcons:          true,
			UseSkillBars:      true,
			HighlightKeywords: true,
		},
		Limits: &ContentLimits{
			CompactMode:    true,
			MaxExperiences: 3,
			MaxProjects:    2,
			MaxHighlights:  3,
		},
		DesignNotes: "compact one-page professional layout",
	}
}

// TrimContent returns a copy of resume with experience, projects and their
// highlights cut to limits.
func TrimContent(resume map[string]any, limits ContentLimits) map[string]any {
	out := cloneObject(resume)
	if out == nil {
		return nil
	}

	trim := func(key string, max int) {
		items := list(out, key)
		if items == nil {
			return
		}
		if max > 0 && len(items) > max {
			items = items[:max]
		}
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if hl := list(m, KeyHighlights); limits.MaxHighlights > 0 && len(hl) > limits.MaxHighlights {
				m[KeyHighlights] = hl[:limits.MaxHighlights]
			}
		}
		out[key] = items
	}

	trim(KeyExperience, limits.MaxExperiences)
	trim(KeyProjects, limits.MaxProjects)

	return out
}

const layoutSystemPrompt = `You are a resume layout designer. Favor whitespace over density, build a clear
visual hierarchy, and keep the key achievements visible at a glance.
Fresh graduates lead with education; experienced candidates lead with experience.
Always answer with a single JSON object.`

const layoutUserPrompt = `Design the layout for this resume:

` + "```json" + `
{{json .resume}}
` + "```" + `
{{if .template}}
Start from this template configuration:

` + "```json" + `
{{json .template}}
` + "```" + `
{{end}}
Return a JSON object with the fields section_order, style, color_scheme,
font_config {family, title_size, heading_size, subheading_size, body_size, small_size},
spacing_config {margin, section_gap, item_gap, line_height},
visual_elements {use_icons, use_skill_bars, use_timeline, highlight_keywords},
content_limits {compact_mode, max_experiences, max_projects, max_highlights_per_item},
and design_notes.`

// LayoutExpert designs the page layout of a resume.
//
// Input: {"resume": {...}, "template": Layout?}. Output:
// {"layout_config": *Layout, "resume": trimmed resume}.
type LayoutExpert struct {
	agent.BaseExpert
}

var _ agent.Expert = (*LayoutExpert)(nil)

// NewLayoutExpert creates the layout expert.
func NewLayoutExpert() *LayoutExpert {
	return &LayoutExpert{BaseExpert: agent.BaseExpert{
		ExpertName:        "layout_designer",
		ExpertDescription: "Designs section order, typography, spacing and content limits for a resume",
	}}
}

// Think implements agent.Expert.
func (e *LayoutExpert) Think(input map[string]any) (agent.Prompt, error) {
	resume, err := asObject(input["resume"])
	if err != nil {
		return agent.Prompt{}, fmt.Errorf("resume: %w", err)
	}

	vars := map[string]any{"resume": resume}
	if tpl := templateLayout(input); tpl != nil {
		vars["template"] = tpl
	}

	user, err := internalutil.RenderTemplate(layoutUserPrompt, vars)
	if err != nil {
		return agent.Prompt{}, err
	}

	return agent.Prompt{System: layoutSystemPrompt, User: user}, nil
}

// Decode implements agent.Expert.
func (e *LayoutExpert) Decode(raw string, _ map[string]any) (map[string]any, error) {
	obj, err := agent.ExtractJSONText(raw)
	if err != nil {
		return nil, err
	}
	if nested := gjson.Get(obj, "layout_config"); nested.IsObject() {
		obj = nested.Raw
	}

	var layout Layout
	if err := json.Unmarshal([]byte(obj), &layout); err != nil {
		return nil, fmt.Errorf("%w: layout config: %v", core.ErrOutputShape, err)
	}

	return map[string]any{"layout_config": &layout}, nil
}

// Reflect fills absent layout sections from the template, then from
// DefaultLayout, and trims the resume to the final content limits.
func (e *LayoutExpert) Reflect(input, output map[string]any) agent.Reflection {
	var refl agent.Reflection

	resume, _ := asObject(input["resume"])
	layout, ok := output["layout_config"].(*Layout)
	if !ok || layout == nil {
		layout = &Layout{}
		output["layout_config"] = layout
	}

	base := DefaultLayout(resume)
	if tpl := templateLayout(input); tpl != nil {
		tpl.Complete(base)
		base = tpl
	}
	refl.Repaired = layout.Complete(base)

	output["resume"] = TrimContent(resume, *layout.Limits)

	if layout.DesignNotes != "" {
		refl.Notes = append(refl.Notes, layout.DesignNotes)
		refl.Suggestions = append(refl.Suggestions, layout.DesignNotes)
	}
	if len(refl.Repaired) > 0 {
		refl.Notes = append(refl.Notes, "defaults applied for "+strings.Join(refl.Repaired, ", "))
	}

	return refl
}

// templateLayout decodes the optional "template" input into a Layout.
func templateLayout(input map[string]any) *Layout {
	switch t := input["template"].(type) {
	case nil:
		return nil
	case *Layout:
		return t.Clone()
	case Template:
		return t.LayoutConfig()
	case *Template:
		return t.LayoutConfig()
	default:
		var l Layout
		if err := convert(t, &l); err != nil {
			return nil
		}
		return &l
	}
}
