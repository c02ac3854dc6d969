package resume

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OtherSkills is the group of skills no category claims.
const OtherSkills = "Other"

// SkillCategory names a skill group and the keywords that place a skill in it.
type SkillCategory struct {
	Name     string
	Keywords []string
}

// DefaultSkillCategories returns the built-in skill groups in match order.
func DefaultSkillCategories() []SkillCategory {
	return []SkillCategory{
		{Name: "Languages", Keywords: []string{"Python", "Java", "C++", "C", "JavaScript", "TypeScript", "Go", "Golang", "Rust", "Kotlin", "Swift", "Scala", "Ruby", "PHP"}},
		{Name: "Frontend", Keywords: []string{"React", "Vue", "Angular", "HTML", "CSS", "SCSS", "Less", "Node.js", "Webpack", "Vite", "Next.js", "Nuxt.js"}},
		{Name: "Backend frameworks", Keywords: []string{"Django", "Flask", "FastAPI", "Spring", "SpringBoot", "Express", "Gin", "Echo", "Fiber", "NestJS"}},
		{Name: "Databases", Keywords: []string{"MySQL", "PostgreSQL", "MongoDB", "Redis", "Elasticsearch", "SQLite", "Oracle", "SQL Server", "Cassandra", "Neo4j"}},
		{Name: "AI/ML", Keywords: []string{"PyTorch", "TensorFlow", "Keras", "Scikit-learn", "Pandas", "NumPy", "Machine Learning", "Deep Learning", "NLP", "CV", "Computer Vision", "Reinforcement Learning", "Transformer", "BERT", "GPT"}},
		{Name: "Cloud native", Keywords: []string{"Docker", "Kubernetes", "K8s", "AWS", "Azure", "GCP", "Cloud", "Microservices", "Serverless", "Terraform", "Helm"}},
		{Name: "Big data", Keywords: []string{"Hadoop", "Spark", "Flink", "Kafka", "Hive", "HBase", "Data Warehouse", "ETL", "Data Analysis"}},
		{Name: "Tools", Keywords: []string{"Git", "Linux", "Jenkins", "CI/CD", "Nginx", "GitLab", "GitHub Actions", "Jira", "Confluence"}},
	}
}

// QualityRules are the thresholds Suggest checks against. Lengths count
// characters.
type QualityRules struct {
	SummaryMinLength     int
	SummaryMaxLength     int
	MinSkills            int
	DescriptionMinLength int
}

// EnhancerOptions configures an Enhancer.
type EnhancerOptions struct {
	Categories []SkillCategory
	Rules      QualityRules
}

// Enhancer runs the offline resume checks: skill grouping, completeness
// scoring, improvement hints and field normalization. None of them call a
// model.
type Enhancer struct {
	opts EnhancerOptions
}

// NewEnhancer creates an Enhancer with the default categories and rules.
func NewEnhancer(optFns ...func(o *EnhancerOptions)) *Enhancer {
	opts := EnhancerOptions{
		Categories: DefaultSkillCategories(),
		Rules: QualityRules{
			SummaryMinLength:     30,
			SummaryMaxLength:     200,
			MinSkills:            3,
			DescriptionMinLength: 20,
		},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Enhancer{opts: opts}
}

// CategorizeSkills groups skills by the first category with a matching
// keyword. A skill matches a keyword when they are equal ignoring case, when
// one of the skill's words is the keyword, or when a keyword of three or more
// characters occurs inside the skill. Unmatched skills go to OtherSkills.
// Duplicates are dropped and input order is kept within a group.
func (e *Enhancer) CategorizeSkills(skills []string) map[string][]string {
	groups := make(map[string][]string)
	seen := make(map[string]struct{}, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(skill)]; dup {
			continue
		}
		seen[strings.ToLower(skill)] = struct{}{}

		group := OtherSkills
		for _, c := range e.opts.Categories {
			if matchesAny(skill, c.Keywords) {
				group = c.Name
				break
			}
		}
		groups[group] = append(groups[group], skill)
	}

	return groups
}

func matchesAny(skill string, keywords []string) bool {
	lower := strings.ToLower(skill)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '/' || r == '(' || r == ')'
	})

	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if lower == kw {
			return true
		}
		for _, w := range words {
			if w == kw {
				return true
			}
		}
		if utf8.RuneCountInString(kw) >= 3 && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Completeness scores how complete a resume is, from 0 to 100 with one
// decimal. Weights: name 10, contact 10, summary 15, education 20,
// experience 20, projects 15, skills 10. A short summary earns half, projects
// without experience earn half the experience weight, and fewer than five
// skills earn 70% (three or four) or 40% (one or two).
func (e *Enhancer) Completeness(resume map[string]any) float64 {
	score := 0.0

	if strings.TrimSpace(text(resume, KeyName)) != "" {
		score += 10
	}
	if hasContact(resume) {
		score += 10
	}

	summary := strings.TrimSpace(text(resume, KeySummary))
	switch {
	case utf8.RuneCountInString(summary) >= e.opts.Rules.SummaryMinLength:
		score += 15
	case summary != "":
		score += 7.5
	}

	if len(list(resume, KeyEducation)) > 0 {
		score += 20
	}

	experience, projects := len(list(resume, KeyExperience)), len(list(resume, KeyProjects))
	switch {
	case experience > 0:
		score += 20
	case projects > 0:
		score += 10
	}
	if projects > 0 {
		score += 15
	}

	switch skills := len(list(resume, KeySkills)); {
	case skills >= 5:
		score += 10
	case skills >= 3:
		score += 7
	case skills > 0:
		score += 4
	}

	return math.Round(score*10) / 10
}

// Suggest lists the gaps in a resume, most serious first within each
// section.
func (e *Enhancer) Suggest(resume map[string]any) []string {
	var out []string
	rules := e.opts.Rules

	if strings.TrimSpace(text(resume, KeyName)) == "" {
		out = append(out, "add your name")
	}
	if !hasContact(resume) {
		out = append(out, "add contact details (email or phone)")
	}

	summary := strings.TrimSpace(text(resume, KeySummary))
	switch n := utf8.RuneCountInString(summary); {
	case n == 0:
		out = append(out, "add a summary that states your strongest qualifications")
	case n < rules.SummaryMinLength:
		out = append(out, fmt.Sprintf("summary is short (%d characters); aim for two or three sentences", n))
	case n > rules.SummaryMaxLength:
		out = append(out, fmt.Sprintf("summary is long (%d characters); keep it under %d", n, rules.SummaryMaxLength))
	}

	education := list(resume, KeyEducation)
	if len(education) == 0 {
		out = append(out, "add your education")
	}
	for i, item := range education {
		edu, _ := item.(map[string]any)
		if text(edu, "school") == "" {
			out = append(out, fmt.Sprintf("education %d is missing the school", i+1))
		}
		if text(edu, "major") == "" {
			out = append(out, fmt.Sprintf("education %d could name the major", i+1))
		}
	}

	experience, projects := list(resume, KeyExperience), list(resume, KeyProjects)
	if len(experience) == 0 && len(projects) == 0 {
		out = append(out, "add work experience or projects")
	}
	for i, item := range experience {
		exp, _ := item.(map[string]any)
		switch desc := strings.TrimSpace(text(exp, "description")); {
		case desc == "":
			out = append(out, fmt.Sprintf("experience %d has no description", i+1))
		case utf8.RuneCountInString(desc) < rules.DescriptionMinLength:
			out = append(out, fmt.Sprintf("experience %d description is short; describe scope and results", i+1))
		}
	}
	for i, item := range projects {
		proj, _ := item.(map[string]any)
		name := text(proj, "name")
		if name == "" {
			name = fmt.Sprintf("project %d", i+1)
		}
		if text(proj, "description") == "" {
			out = append(out, fmt.Sprintf("%q has no description", name))
		}
		if len(list(proj, KeyHighlights)) == 0 {
			out = append(out, fmt.Sprintf("%q could list highlights or results", name))
		}
		if len(list(proj, "tech_stack")) == 0 && text(proj, "tech_stack") == "" {
			out = append(out, fmt.Sprintf("%q could name its tech stack", name))
		}
	}

	switch n := len(list(resume, KeySkills)); {
	case n == 0:
		out = append(out, "add a skills section")
	case n < rules.MinSkills:
		out = append(out, fmt.Sprintf("only %d skill(s) listed; add more relevant skills", n))
	}

	return out
}

var (
	stringFields = []string{"name", "phone", "email", "location", "summary", "github", "linkedin", "website"}
	listFields   = []string{"skills", "certificates", "awards", "languages", "interests", "education", "experience", "projects"}
)

// Normalize returns a copy of resume with known text fields trimmed,
// mistyped text fields cleared, skill names trimmed and mistyped list fields
// replaced by empty lists. Unknown fields are kept as they are.
func (e *Enhancer) Normalize(resume map[string]any) map[string]any {
	out := cloneObject(resume)
	if out == nil {
		return map[string]any{}
	}

	for _, key := range stringFields {
		v, ok := out[key]
		if !ok {
			continue
		}
		s, _ := v.(string)
		out[key] = strings.TrimSpace(s)
	}

	for _, key := range listFields {
		if v, ok := out[key]; ok && v != nil && list(out, key) == nil {
			out[key] = []any{}
		}
	}

	if skills := list(out, KeySkills); skills != nil {
		trimmed := make([]any, 0, len(skills))
		for _, s := range skills {
			if str, ok := s.(string); ok {
				if str = strings.TrimSpace(str); str == "" {
					continue
				}
				s = str
			}
			trimmed = append(trimmed, s)
		}
		out[KeySkills] = trimmed
	}

	return out
}

func hasContact(resume map[string]any) bool {
	return strings.TrimSpace(text(resume, "email")) != "" || strings.TrimSpace(text(resume, "phone")) != ""
}
