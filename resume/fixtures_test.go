package resume

import "strings"

func sampleResume() map[string]any {
	return map[string]any{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"summary": "Backend engineer",
		"experience": []any{
			map[string]any{
				"company":     "Acme",
				"position":    "Senior Engineer",
				"description": "Built the billing platform",
				"highlights":  []any{"h1", "h2", "h3", "h4", "h5"},
			},
			map[string]any{
				"company":     "Initech",
				"position":    "Engineer",
				"description": "Maintained payment services",
				"highlights":  []any{"h1", "h2"},
			},
		},
		"projects": []any{
			map[string]any{
				"name":        "tracer",
				"description": "Distributed tracing for Go services",
				"highlights":  []any{"p1", "p2"},
			},
		},
		"education": []any{map[string]any{"school": "University of London", "degree": "BSc"}},
		"skills":    []any{"Go", "Kubernetes", "PostgreSQL"},
	}
}

func bulkyResume() map[string]any {
	desc := strings.Repeat("x", 90)
	item := func(n int) map[string]any {
		hl := make([]any, n)
		for i := range hl {
			hl[i] = "achievement"
		}
		return map[string]any{"description": desc, "highlights": hl}
	}

	exp := make([]any, 6)
	for i := range exp {
		exp[i] = item(6)
	}
	proj := make([]any, 4)
	for i := range proj {
		proj[i] = item(5)
	}
	skills := make([]any, 20)
	for i := range skills {
		skills[i] = "skill"
	}

	return map[string]any{
		"name":       "Grace Hopper",
		"summary":    strings.Repeat("s", 120),
		"experience": exp,
		"projects":   proj,
		"skills":     skills,
	}
}

const contentReply = `Here is the result:
{"analysis": "solid backend profile",
 "weaknesses": ["few metrics", "vague summary", "no keywords"],
 "opportunities": ["add Kubernetes", "quantify latency", "mention on-call"],
 "optimized_resume": {"summary": "Backend engineer who cut p99 latency by 40%"}}`

const layoutReply = `{"section_order": ["header", "summary", "experience", "projects", "education", "skills"],
 "style": "modern", "color_scheme": "professional", "design_notes": "lead with experience"}`
