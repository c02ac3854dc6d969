package resume

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/orchestrator"
	"github.com/Chan-Developer/ReAct-agent/pipeline"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// Tool names.
const (
	ToolContentOptimizer    = "content_optimizer"
	ToolStyleSelector       = "style_selector"
	ToolLayoutDesigner      = "layout_designer"
	ToolPaginationOptimizer = "pagination_optimizer"
	ToolResumeReview        = "resume_review"
)

const resumeParamDescription = "Resume as a JSON object, JSON text, or an artifact reference such as @optimized"

// ToolOptions configures the driven-mode tools.
type ToolOptions struct {
	Logger     logging.Logger
	Templates  *Templates
	MaxRetries int
}

// NewTools returns the resume tools for a driving ReAct agent. Each tool
// stores its result under its artifact key and returns only the token.
func NewTools(llm model.Model, optFns ...func(o *ToolOptions)) []tool.Tool {
	opts := ToolOptions{
		Logger:     logging.NoOpLogger{},
		MaxRetries: agent.DefaultMaxRetries,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Templates == nil {
		opts.Templates = DefaultTemplates()
	}

	specialist := func(e agent.Expert) *agent.Specialist {
		return agent.NewSpecialist(e, llm, func(o *agent.SpecialistOptions) {
			o.MaxRetries = opts.MaxRetries
			o.Logger = opts.Logger
		})
	}

	return []tool.Tool{
		newContentTool(specialist(NewContentExpert())),
		newStyleSelector(opts.Templates),
		newLayoutTool(specialist(NewLayoutExpert()), opts.Templates),
		newPaginationTool(),
		newReviewTool(NewEnhancer()),
	}
}

// RegisterTools adds the resume tools to reg.
func RegisterTools(reg *tool.Registry, llm model.Model, optFns ...func(o *ToolOptions)) error {
	for _, t := range NewTools(llm, optFns...) {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func newContentTool(s *agent.Specialist) *orchestrator.AgentTool {
	return orchestrator.NewAgentTool(s, func(o *orchestrator.AgentToolOptions) {
		o.Name = ToolContentOptimizer
		o.Description = "Rewrite resume content for impact and job fit. Returns @optimized."
		o.OutputKey = KeyOptimized
		o.Parameters = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"resume_json":     map[string]any{"description": resumeParamDescription},
				"job_description": map[string]any{"type": "string", "description": "Target job description"},
			},
			"required": []any{"resume_json"},
		}
		o.InputMapper = func(args map[string]any) (map[string]any, error) {
			resume, err := asObject(args["resume_json"])
			if err != nil {
				return nil, fmt.Errorf("resume_json: %w", err)
			}
			in := map[string]any{"resume": ResumeOf(resume)}
			if jd, _ := args["job_description"].(string); jd != "" {
				in["job_description"] = jd
			}
			return in, nil
		}
		o.Summarize = func(res core.AgentResult) string {
			resume, _ := res.Data["resume"].(map[string]any)
			s := fmt.Sprintf("optimized resume with fields: %s", strings.Join(sortedKeys(resume), ", "))
			if n := len(res.Suggestions); n > 0 {
				s += fmt.Sprintf("; %d suggestion(s): %s", n, strings.Join(res.Suggestions, " | "))
			}
			return s
		}
	})
}

func newStyleSelector(templates *Templates) *tool.FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "list templates, select one by name, or match one to a job description",
				"enum":        []any{"list", "select", "match"},
			},
			"template_name":   map[string]any{"type": "string", "description": "Template to select"},
			"job_description": map[string]any{"type": "string", "description": "Job description to match"},
			"page_preference": map[string]any{
				"type": "string",
				"enum": []any{PagesOne, PagesTwo, PagesAuto},
			},
			"custom_overrides": map[string]any{"type": "string", "description": "JSON object merged into the template, e.g. {\"font_config\":{\"body_size\":10}}"},
		},
	}

	return tool.NewFunctionTool(ToolStyleSelector, "List, select or match a resume template. Returns @template.", params,
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			action, _ := args["action"].(string)
			name, _ := args["template_name"].(string)
			jd, _ := args["job_description"].(string)

			if action == "" {
				switch {
				case name != "":
					action = "select"
				case jd != "":
					action = "match"
				default:
					action = "list"
				}
			}

			var (
				tpl     Template
				summary string
			)
			switch action {
			case "list":
				return listTemplates(templates), nil
			case "select":
				if name == "" {
					return nil, tool.NewToolError(ToolStyleSelector, "template_name is required for select", tool.CodeValidation)
				}
				t, err := templates.Lookup(name)
				if err != nil {
					return nil, tool.NewToolError(ToolStyleSelector, err.Error(), tool.CodeNotFound)
				}
				tpl, summary = t, "selected "+t.Name
			case "match":
				matches := templates.MatchJob(jd, 3)
				t, best := templates.BestMatch(jd)
				tpl = t
				summary = fmt.Sprintf("matched %s (score %.0f%%)", t.Name, best.Score*100)
				if len(matches) > 1 {
					others := make([]string, 0, 2)
					for _, m := range matches[1:] {
						others = append(others, fmt.Sprintf("%s %.0f%%", m.Name, m.Score*100))
					}
					summary += "; also: " + strings.Join(others, ", ")
				}
			default:
				return nil, tool.NewToolError(ToolStyleSelector, fmt.Sprintf("unknown action %q", action), tool.CodeValidation)
			}

			if pref, _ := args["page_preference"].(string); pref != "" && pref != PagesAuto {
				tpl.PagePreference = pref
			}
			if overrides, _ := args["custom_overrides"].(string); overrides != "" {
				t, err := ApplyOverrides(tpl, overrides)
				if err != nil {
					return nil, tool.NewToolError(ToolStyleSelector, err.Error(), tool.CodeValidation)
				}
				tpl = t
			}

			token, err := toolCtx.SaveArtifact(KeyTemplate, tpl)
			if err != nil {
				return nil, err
			}

			return map[string]any{
				"ref":     token,
				"summary": fmt.Sprintf("%s: style %s, pages %s", summary, tpl.Style, tpl.PagePreference),
			}, nil
		})
}

func listTemplates(templates *Templates) string {
	var b strings.Builder
	b.WriteString("Available templates:\n")
	for _, t := range templates.List() {
		tags := "general"
		if len(t.Tags) > 0 {
			n := min(3, len(t.Tags))
			tags = strings.Join(t.Tags[:n], ", ")
		}
		fmt.Fprintf(&b, "- %s (%s): %s [tags: %s; pages: %s]\n", t.Name, t.DisplayName, t.Description, tags, t.PagePreference)
	}
	return strings.TrimRight(b.String(), "\n")
}

func newLayoutTool(s *agent.Specialist, templates *Templates) *orchestrator.AgentTool {
	return orchestrator.NewAgentTool(s, func(o *orchestrator.AgentToolOptions) {
		o.Name = ToolLayoutDesigner
		o.Description = "Design the resume layout, optionally from a template. Returns @layout."
		o.OutputKey = KeyLayout
		o.Parameters = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"resume_json": map[string]any{"description": resumeParamDescription},
				"template":    map[string]any{"description": "Template name or @template"},
				"style": map[string]any{
					"type":        "string",
					"description": "Style preset used when no template is given",
					"enum":        []any{"modern", "classic", "minimal", "creative"},
				},
			},
			"required": []any{"resume_json"},
		}
		o.InputMapper = func(args map[string]any) (map[string]any, error) {
			resume, err := asObject(args["resume_json"])
			if err != nil {
				return nil, fmt.Errorf("resume_json: %w", err)
			}
			in := map[string]any{"resume": ResumeOf(resume)}

			switch t := args["template"].(type) {
			case nil:
				if style, _ := args["style"].(string); style != "" {
					in["template"] = StylePreset(style)
				}
			case string:
				if t != "" {
					tpl, err := templates.Lookup(t)
					if err != nil {
						return nil, err
					}
					in["template"] = tpl.LayoutConfig()
				}
			case map[string]any:
				in["template"] = t
			default:
				return nil, fmt.Errorf("template: expected a name or an object, got %T", t)
			}
			return in, nil
		}
		o.Summarize = func(res core.AgentResult) string {
			layout, _ := res.Data["layout_config"].(*Layout)
			if layout == nil {
				return orchestrator.DefaultSummary(res)
			}
			return fmt.Sprintf("layout %s/%s, sections: %s", layout.Style, layout.ColorScheme, strings.Join(layout.SectionOrder, " > "))
		}
	})
}

func newPaginationTool() *orchestrator.StepTool {
	step := pipeline.Func(ToolPaginationOptimizer, KeyPaginated, func(_ context.Context, state *pipeline.State) (any, error) {
		args := state.Input()

		payload, err := asObject(args["resume_json"])
		if err != nil {
			return nil, tool.NewToolError(ToolPaginationOptimizer, "resume_json: "+err.Error(), tool.CodeValidation)
		}

		var layout *Layout
		switch l := args["layout"].(type) {
		case map[string]any:
			layout = &Layout{}
			if err := convert(layoutConfigOf(l), layout); err != nil {
				return nil, tool.NewToolError(ToolPaginationOptimizer, "layout: "+err.Error(), tool.CodeValidation)
			}
		default:
			if lc, ok := payload["layout_config"].(map[string]any); ok {
				layout = &Layout{}
				if err := convert(lc, layout); err != nil {
					return nil, tool.NewToolError(ToolPaginationOptimizer, "layout_config: "+err.Error(), tool.CodeValidation)
				}
			}
		}

		target, _ := args["target"].(string)
		if target == "" {
			target = PagesAuto
		}

		return Optimizer{}.Optimize(ResumeOf(payload), layout, target, DefaultMaxIterations)
	})

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resume_json": map[string]any{"description": resumeParamDescription + " or @layout"},
			"layout":      map[string]any{"description": "Layout config object or @layout"},
			"target": map[string]any{
				"type": "string",
				"enum": []any{PagesOne, PagesTwo, PagesAuto},
			},
		},
		"required": []any{"resume_json"},
	}

	return orchestrator.NewStepTool(step, ToolPaginationOptimizer, "Fit the resume to one or two A4 pages. Returns @paginated.", params).
		WithSummary(func(output any) string {
			opt, ok := output.(*Optimization)
			if !ok {
				return fmt.Sprintf("%v", output)
			}
			return opt.Notes
		})
}

func newReviewTool(e *Enhancer) *tool.FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resume_json": map[string]any{"description": resumeParamDescription},
		},
		"required": []any{"resume_json"},
	}

	return tool.NewFunctionTool(ToolResumeReview, "Check a resume offline: completeness score, gaps to fix and grouped skills.", params,
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			payload, err := asObject(args["resume_json"])
			if err != nil {
				return nil, tool.NewToolError(ToolResumeReview, "resume_json: "+err.Error(), tool.CodeValidation)
			}

			resume := e.Normalize(ResumeOf(payload))
			return map[string]any{
				"completeness": e.Completeness(resume),
				"suggestions":  e.Suggest(resume),
				"skill_groups": e.CategorizeSkills(stringList(resume[KeySkills])),
			}, nil
		})
}

// layoutConfigOf unwraps a @layout payload to its layout config.
func layoutConfigOf(payload map[string]any) map[string]any {
	if lc, ok := payload["layout_config"].(map[string]any); ok {
		return lc
	}
	return payload
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
