package resume

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resume section keys.
const (
	KeyName       = "name"
	KeySummary    = "summary"
	KeyExperience = "experience"
	KeyProjects   = "projects"
	KeyEducation  = "education"
	KeySkills     = "skills"
	KeyHighlights = "highlights"
)

// ResumeOf unwraps a stage payload to the resume object it carries. It
// accepts a bare resume, an @optimized or @layout payload ("resume"), and
// the legacy "resume_data" wrapper.
func ResumeOf(payload map[string]any) map[string]any {
	for _, key := range []string{"resume", "resume_data"} {
		if inner, ok := payload[key].(map[string]any); ok {
			return inner
		}
	}
	return payload
}

// asObject accepts a decoded object or JSON text.
func asObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &out); err != nil {
			return nil, fmt.Errorf("expected a JSON object: %w", err)
		}
		if out == nil {
			return nil, fmt.Errorf("expected a JSON object, got null")
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("expected a JSON object, got nothing")
	default:
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
}

// convert re-encodes src into dst through JSON.
func convert(src, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func cloneObject(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// list returns data[key] as a slice, accepting []any and []string.
func list(data map[string]any, key string) []any {
	switch t := data[key].(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	}
	return nil
}

func text(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
