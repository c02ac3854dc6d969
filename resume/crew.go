package resume

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/model"
	"github.com/Chan-Developer/ReAct-agent/orchestrator"
	"github.com/Chan-Developer/ReAct-agent/pipeline"
)

// CrewName is the registry name of the resume crew.
const CrewName = "resume"

// Pipeline step names and their artifact keys.
const (
	StepContent    = "content_optimization"
	StepTemplate   = "template_selection"
	StepLayout     = "layout_design"
	StepPagination = "pagination_optimization"

	KeyOptimized = "optimized"
	KeyTemplate  = "template"
	KeyLayout    = "layout"
	KeyPaginated = "paginated"
)

// retrievalLimit is the number of knowledge snippets handed to the content
// specialist.
const retrievalLimit = 3

// CrewOptions configures the resume crew.
type CrewOptions struct {
	Logger    logging.Logger
	Knowledge core.KnowledgeStore
	// Persist receives a copy of every run's artifacts when set.
	Persist    core.ArtifactStore
	Templates  *Templates
	MaxRetries int
	// MaxIterations bounds page fitting.
	MaxIterations int
}

// Crew optimizes a resume through content, template, layout and pagination
// stages.
type Crew struct {
	*orchestrator.BaseCrew
	content   *agent.Specialist
	layout    *agent.Specialist
	templates *Templates
	optimizer Optimizer
	enhancer  *Enhancer
	opts      CrewOptions
}

var _ orchestrator.Crew = (*Crew)(nil)

// NewCrew creates a resume crew whose specialists call llm.
func NewCrew(llm model.Model, optFns ...func(o *CrewOptions)) *Crew {
	opts := CrewOptions{
		Logger:        logging.NoOpLogger{},
		MaxRetries:    agent.DefaultMaxRetries,
		MaxIterations: DefaultMaxIterations,
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

	return &Crew{
		BaseCrew: orchestrator.NewBaseCrew(CrewName, "Resume optimization: content rewrite, template match, layout design, page fitting",
			func(o *orchestrator.BaseCrewOptions) {
				o.Logger = opts.Logger
				o.Knowledge = opts.Knowledge
			}),
		content:   specialist(NewContentExpert()),
		layout:    specialist(NewLayoutExpert()),
		templates: opts.Templates,
		enhancer:  NewEnhancer(),
		opts:      opts,
	}
}

// Factory returns a CrewFactory building a fresh crew per call.
func Factory(llm model.Model, optFns ...func(o *CrewOptions)) orchestrator.CrewFactory {
	return func() (orchestrator.Crew, error) {
		return NewCrew(llm, optFns...), nil
	}
}

// Pipeline returns the crew's fixed pipeline.
func (c *Crew) Pipeline() *pipeline.Pipeline {
	steps := []pipeline.Step{
		pipeline.AgentStep(StepContent, KeyOptimized, c.content, contentInput),
		pipeline.Func(StepTemplate, KeyTemplate, c.selectTemplate),
		pipeline.AgentStep(StepLayout, KeyLayout, c.layout, c.layoutInput),
		pipeline.Func(StepPagination, KeyPaginated, c.paginate),
	}

	return pipeline.New(CrewName, steps...).With(func(o *pipeline.Options) {
		o.Logger = c.Logger()
		o.Persist = c.opts.Persist
	})
}

// Run implements orchestrator.Crew. The task input is the resume, either
// bare or under "resume", and is normalized before the first step. The
// context may carry job_description, page_preference and template_name.
func (c *Crew) Run(ctx context.Context, task core.Task) core.TaskResult {
	runLog := c.NewRunLog()

	resume := c.enhancer.Normalize(ResumeOf(task.Input))
	if len(resume) == 0 {
		return c.Fail(runLog, fmt.Errorf("resume: empty input"))
	}

	input := map[string]any{"resume": resume}
	for _, key := range []string{"job_description", "page_preference", "template_name"} {
		if v := task.ContextString(key); v != "" {
			input[key] = v
		}
	}

	if tips := c.Retrieve(RetrievalQuery(resume), retrievalLimit); len(tips) > 0 {
		runLog.Printf("using %d reference snippet(s)", len(tips))
		input["references"] = tips
	}

	p := c.Pipeline()
	total := len(p.Steps())
	index := 0
	p = p.With(func(o *pipeline.Options) {
		o.OnStep = func(out pipeline.StepOutcome) {
			index++
			if out.Success {
				runLog.Printf("step %d/%d %s done (%s)", index, total, out.Step, out.Duration.Round(time.Millisecond))
			} else {
				runLog.Printf("step %d/%d %s failed: %s", index, total, out.Step, out.Error)
			}
		}
	})

	res := p.Run(ctx, input)
	if !res.Success {
		out := c.Fail(runLog, res.Err)
		out.Output = map[string]any{
			"failed_step": res.FailedStep,
			"trace":       res.Trace,
			"run_id":      res.RunID,
		}
		return out
	}

	return c.result(runLog, res)
}

func (c *Crew) result(runLog *orchestrator.RunLog, res *pipeline.Result) core.TaskResult {
	var suggestions []string
	if opt, ok := res.Output[KeyOptimized].(map[string]any); ok {
		suggestions = append(suggestions, stringList(opt["suggestions"])...)
	}

	var layoutOut struct {
		LayoutConfig *Layout `json:"layout_config"`
	}
	if err := res.References.Decode(KeyLayout, &layoutOut); err == nil && layoutOut.LayoutConfig != nil && layoutOut.LayoutConfig.DesignNotes != "" {
		suggestions = append(suggestions, layoutOut.LayoutConfig.DesignNotes)
	}

	var paginated Optimization
	if err := res.References.Decode(KeyPaginated, &paginated); err != nil {
		return c.Fail(runLog, fmt.Errorf("read %s: %w", KeyPaginated, err))
	}
	if paginated.Notes != "" {
		suggestions = append(suggestions, paginated.Notes)
	}

	suggestions = append(suggestions, c.enhancer.Suggest(paginated.Data)...)

	var tpl Template
	_ = res.References.Decode(KeyTemplate, &tpl)

	runLog.Printf("resume optimized with template %s, %.2f page(s)", tpl.Name, paginated.Pages)

	return core.TaskResult{
		Success: true,
		Output: map[string]any{
			"resume":          paginated.Data,
			"layout_config":   paginated.Layout,
			"template":        tpl.Name,
			"estimated_pages": paginated.Pages,
			"completeness":    c.enhancer.Completeness(paginated.Data),
			"skill_groups":    c.enhancer.CategorizeSkills(stringList(paginated.Data[KeySkills])),
			"run_id":          res.RunID,
			"references":      res.References.Keys(),
		},
		Suggestions: suggestions,
		Logs:        runLog.Lines(),
	}
}

func contentInput(state *pipeline.State) (map[string]any, error) {
	in := state.Input()
	out := map[string]any{"resume": in["resume"]}
	if jd, ok := in["job_description"]; ok {
		out["job_description"] = jd
	}
	if refs, ok := in["references"]; ok {
		out["references"] = refs
	}
	return out, nil
}

func (c *Crew) selectTemplate(_ context.Context, state *pipeline.State) (any, error) {
	in := state.Input()

	var tpl Template
	if name, _ := in["template_name"].(string); name != "" {
		t, err := c.templates.Lookup(name)
		if err != nil {
			return nil, err
		}
		tpl = t
	} else {
		jd, _ := in["job_description"].(string)
		t, m := c.templates.BestMatch(jd)
		tpl = t
		state.Logger().Info("resume.template.selected", "template", t.Name, "score", m.Score)
	}

	if pref, _ := in["page_preference"].(string); pref != "" && pref != PagesAuto {
		tpl.PagePreference = pref
	}

	return tpl, nil
}

func (c *Crew) layoutInput(state *pipeline.State) (map[string]any, error) {
	optimized, err := state.Object(KeyOptimized)
	if err != nil {
		return nil, err
	}

	var tpl Template
	if err := state.Decode(KeyTemplate, &tpl); err != nil {
		return nil, err
	}

	return map[string]any{
		"resume":   ResumeOf(optimized),
		"template": tpl.LayoutConfig(),
	}, nil
}

func (c *Crew) paginate(_ context.Context, state *pipeline.State) (any, error) {
	var designed struct {
		LayoutConfig *Layout       `json:"layout_config"`
		Resume       map[string]any `json:"resume"`
	}
	if err := state.Decode(KeyLayout, &designed); err != nil {
		return nil, err
	}

	var tpl Template
	if err := state.Decode(KeyTemplate, &tpl); err != nil {
		return nil, err
	}

	target := tpl.PagePreference
	if pref, _ := state.Input()["page_preference"].(string); pref != "" {
		target = pref
	}

	return c.optimizer.Optimize(designed.Resume, designed.LayoutConfig, target, c.opts.MaxIterations)
}

// RetrievalQuery builds the knowledge query for a resume: the first project
// description, else the first experience description, else the first ten
// skills.
func RetrievalQuery(resume map[string]any) string {
	for _, key := range []string{KeyProjects, KeyExperience} {
		if items := list(resume, key); len(items) > 0 {
			if m, ok := items[0].(map[string]any); ok {
				if d := text(m, "description"); d != "" {
					return truncateRunes(d, 300)
				}
			}
		}
	}

	if skills := stringList(resume[KeySkills]); len(skills) > 0 {
		if len(skills) > 10 {
			skills = skills[:10]
		}
		return strings.Join(skills, " ")
	}

	return "resume optimization"
}
