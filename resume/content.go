package resume

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Chan-Developer/ReAct-agent/agent"
	"github.com/Chan-Developer/ReAct-agent/core"
	internalutil "github.com/Chan-Developer/ReAct-agent/internal/util"
)

// maxSuggestions caps the suggestions reported by the content expert.
const maxSuggestions = 5

const contentSystemPrompt = `You are a senior resume editor. Rewrite resume content so that every
highlight starts with a strong verb, quantifies its impact, and follows the
STAR pattern. Weave in the keywords of the target job where they are true.
Never invent employers, dates or degrees. Always answer with a single JSON object.`

const contentUserPrompt = `Optimize this resume:

` + "```json" + `
{{json .resume}}
` + "```" + `
{{if .job}}
Target job description:
{{.job}}
{{end}}{{if .references}}
Reference tips:
{{range .references}}- {{.}}
{{end}}{{end}}
Return a JSON object:
{"analysis": "<short assessment>",
 "weaknesses": ["..."],
 "opportunities": ["..."],
 "optimized_resume": {<only the fields you changed, same structure as the input>}}`

// ContentExpert rewrites resume content for impact and job fit.
//
// Input: {"resume": {...}, "job_description": "...", "references": [...]}.
// Output: {"resume": merged resume, "analysis": "...", "suggestions": [...]}.
type ContentExpert struct {
	agent.BaseExpert
}

var _ agent.Expert = (*ContentExpert)(nil)

// NewContentExpert creates the content expert.
func NewContentExpert() *ContentExpert {
	return &ContentExpert{BaseExpert: agent.BaseExpert{
		ExpertName:        "content_optimizer",
		ExpertDescription: "Rewrites resume content: quantified achievements, STAR highlights, job keywords",
	}}
}

// Think implements agent.Expert.
func (e *ContentExpert) Think(input map[string]any) (agent.Prompt, error) {
	resume, err := asObject(input["resume"])
	if err != nil {
		return agent.Prompt{}, fmt.Errorf("resume: %w", err)
	}

	vars := map[string]any{"resume": resume}
	if jd, _ := input["job_description"].(string); jd != "" {
		vars["job"] = jd
	}
	if refs := stringList(input["references"]); len(refs) > 0 {
		vars["references"] = refs
	}

	user, err := internalutil.RenderTemplate(contentUserPrompt, vars)
	if err != nil {
		return agent.Prompt{}, err
	}

	return agent.Prompt{System: contentSystemPrompt, User: user}, nil
}

// Decode merges optimized_resume over the input resume. Output without an
// optimized_resume object is malformed.
func (e *ContentExpert) Decode(raw string, input map[string]any) (map[string]any, error) {
	obj, err := agent.ExtractJSONText(raw)
	if err != nil {
		return nil, err
	}
	if err := agent.RequireFields(obj, "optimized_resume"); err != nil {
		return nil, err
	}

	optimized := gjson.Get(obj, "optimized_resume")
	if !optimized.IsObject() {
		return nil, fmt.Errorf("%w: optimized_resume is %s, want an object", core.ErrOutputShape, optimized.Type)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(optimized.Raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: optimized_resume: %v", core.ErrOutputShape, err)
	}

	original, _ := asObject(input["resume"])
	merged := cloneObject(original)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		merged[k] = v
	}

	var suggestions []string
	for _, path := range []string{"weaknesses", "opportunities"} {
		gjson.Get(obj, path).ForEach(func(_, v gjson.Result) bool {
			if s := v.String(); s != "" {
				suggestions = append(suggestions, s)
			}
			return true
		})
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return map[string]any{
		"resume":      merged,
		"analysis":    gjson.Get(obj, "analysis").String(),
		"suggestions": suggestions,
	}, nil
}

// Reflect restores a name dropped by the rewrite, or reports it missing.
func (e *ContentExpert) Reflect(input, output map[string]any) agent.Reflection {
	var refl agent.Reflection

	resume, _ := output["resume"].(map[string]any)
	if resume == nil {
		resume = map[string]any{}
		output["resume"] = resume
	}

	if text(resume, KeyName) == "" {
		original, _ := asObject(input["resume"])
		if name := text(original, KeyName); name != "" {
			resume[KeyName] = name
			refl.Repaired = append(refl.Repaired, KeyName)
		} else {
			refl.Missing = append(refl.Missing, KeyName)
		}
	}

	refl.Suggestions = stringList(output["suggestions"])
	if a, _ := output["analysis"].(string); a != "" {
		refl.Notes = append(refl.Notes, a)
	}

	return refl
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
