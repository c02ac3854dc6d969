package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// FallbackTemplate is chosen when no template matches a job description.
const FallbackTemplate = "tech_modern"

// minMatchScore is the score a match must exceed to beat the fallback.
const minMatchScore = 0.1

// tagWeight scales the tag share of a match score.
const tagWeight = 0.3

// Page preferences.
const (
	PagesOne  = "one_page"
	PagesTwo  = "two_pages"
	PagesAuto = "auto"
)

// ErrTemplateNotFound is returned for unknown template names.
var ErrTemplateNotFound = errors.New("template not found")

//go:embed presets.yaml
var presetsYAML []byte

// Template is a named layout preset with job matching metadata.
type Template struct {
	Name           string             `json:"name" yaml:"name"`
	DisplayName    string             `json:"display_name" yaml:"display_name"`
	Description    string             `json:"description,omitempty" yaml:"description"`
	Tags           []string           `json:"tags,omitempty" yaml:"tags"`
	JobKeywords    []string           `json:"job_keywords,omitempty" yaml:"job_keywords"`
	PagePreference string             `json:"page_preference" yaml:"page_preference"`
	SectionOrder   []string           `json:"section_order" yaml:"section_order"`
	SectionWeights map[string]float64 `json:"section_weights,omitempty" yaml:"section_weights"`
	Style          string             `json:"style" yaml:"style"`
	ColorScheme    string             `json:"color_scheme" yaml:"color_scheme"`
	Font           FontConfig         `json:"font_config" yaml:"font_config"`
	Spacing        SpacingConfig      `json:"spacing_config" yaml:"spacing_config"`
	Visual         VisualElements     `json:"visual_elements" yaml:"visual_elements"`
	Limits         ContentLimits      `json:"content_limits" yaml:"content_limits"`
}

// LayoutConfig converts the template into a complete Layout.
func (t Template) LayoutConfig() *Layout {
	font, spacing, visual, limits := t.Font, t.Spacing, t.Visual, t.Limits
	return &Layout{
		SectionOrder: append([]string(nil), t.SectionOrder...),
		Style:        t.Style,
		ColorScheme:  t.ColorScheme,
		Font:         &font,
		Spacing:      &spacing,
		Visual:       &visual,
		Limits:       &limits,
	}
}

// Match is a template name with its job match score in [0, 1].
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Templates is a registry of templates in registration order.
type Templates struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]Template
}

// NewTemplates creates an empty registry.
func NewTemplates() *Templates {
	return &Templates{byKey: make(map[string]Template)}
}

// LoadTemplates parses a YAML list of templates.
func LoadTemplates(data []byte) (*Templates, error) {
	var list []Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	reg := NewTemplates()
	for i, t := range list {
		if t.Name == "" {
			return nil, fmt.Errorf("parse templates: entry %d has no name", i)
		}
		reg.Register(t)
	}
	return reg, nil
}

// DefaultTemplates returns a registry loaded with the built-in presets.
func DefaultTemplates() *Templates {
	reg, err := LoadTemplates(presetsYAML)
	if err != nil {
		panic(err)
	}
	return reg
}

// Register adds or replaces t.
func (r *Templates) Register(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[t.Name]; !ok {
		r.order = append(r.order, t.Name)
	}
	r.byKey[t.Name] = t
}

// Get returns the named template.
func (r *Templates) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byKey[name]
	return t, ok
}

// Lookup returns the named template or an error listing the known names.
func (r *Templates) Lookup(name string) (Template, error) {
	if t, ok := r.Get(name); ok {
		return t, nil
	}
	return Template{}, fmt.Errorf("%w: %q (available: %s)", ErrTemplateNotFound, name, strings.Join(r.Names(), ", "))
}

// Names returns template names in registration order.
func (r *Templates) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// List returns all templates in registration order.
func (r *Templates) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byKey[n])
	}
	return out
}

// Len returns the number of templates.
func (r *Templates) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// MatchJob scores every template against a job description and returns the
// topK best, highest first. The score is the share of job keywords found
// plus 0.3 times the share of tags found, capped at 1.
func (r *Templates) MatchJob(jd string, topK int) []Match {
	if strings.TrimSpace(jd) == "" {
		return nil
	}
	jd = strings.ToLower(jd)

	templates := r.List()
	matches := make([]Match, 0, len(templates))
	for _, t := range templates {
		score := 0.0
		if len(t.JobKeywords) > 0 {
			score = float64(countIn(jd, t.JobKeywords)) / float64(len(t.JobKeywords))
		}
		if len(t.Tags) > 0 {
			score += tagWeight * float64(countIn(jd, t.Tags)) / float64(len(t.Tags))
		}
		if score > 1 {
			score = 1
		}
		matches = append(matches, Match{Name: t.Name, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// BestMatch returns the best template for jd. Scores at or below 0.1 fall
// back to tech_modern, then to the first registered template.
func (r *Templates) BestMatch(jd string) (Template, Match) {
	if m := r.MatchJob(jd, 1); len(m) > 0 && m[0].Score > minMatchScore {
		t, _ := r.Get(m[0].Name)
		return t, m[0]
	}
	if t, ok := r.Get(FallbackTemplate); ok {
		return t, Match{Name: t.Name}
	}
	if list := r.List(); len(list) > 0 {
		return list[0], Match{Name: list[0].Name}
	}
	return Template{Name: FallbackTemplate, PagePreference: PagesAuto}, Match{Name: FallbackTemplate}
}

func countIn(text string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			n++
		}
	}
	return n
}

// ApplyOverrides deep-merges a JSON object of overrides into t. Objects are
// merged key by key; any other value replaces the field.
func ApplyOverrides(t Template, overrides string) (Template, error) {
	if strings.TrimSpace(overrides) == "" {
		return t, nil
	}
	if !gjson.Valid(overrides) || !gjson.Parse(overrides).IsObject() {
		return t, fmt.Errorf("custom overrides must be a JSON object")
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return t, err
	}

	doc, err = mergeInto(doc, "", gjson.Parse(overrides))
	if err != nil {
		return t, err
	}

	var out Template
	if err := json.Unmarshal(doc, &out); err != nil {
		return t, fmt.Errorf("apply overrides: %w", err)
	}
	return out, nil
}

func mergeInto(doc []byte, prefix string, obj gjson.Result) ([]byte, error) {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		path := escapePath(key.String())
		if prefix != "" {
			path = prefix + "." + path
		}
		if value.IsObject() && gjson.GetBytes(doc, path).IsObject() {
			doc, err = mergeInto(doc, path, value)
		} else {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value.Raw))
		}
		return err == nil
	})
	return doc, err
}

func escapePath(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}
