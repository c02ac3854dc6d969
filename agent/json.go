package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Chan-Developer/ReAct-agent/core"
	internalutil "github.com/Chan-Developer/ReAct-agent/internal/util"
)

var (
	jsonFencePattern  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	plainFencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// ExtractJSONText returns the first JSON object found in model output. It
// tries a ```json fence, then a plain fence, then the first balanced braces.
func ExtractJSONText(text string) (string, error) {
	candidates := make([]string, 0, 3)
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := plainFencePattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if obj, ok := internalutil.ExtractObject(text); ok {
		candidates = append(candidates, obj)
	}

	for _, c := range candidates {
		if gjson.Valid(c) && gjson.Parse(c).IsObject() {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: no JSON object in output (%d chars)", core.ErrOutputShape, len(text))
}

// ExtractJSON decodes the first JSON object found in model output.
func ExtractJSON(text string) (map[string]any, error) {
	raw, err := ExtractJSONText(text)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrOutputShape, err)
	}
	return out, nil
}

// RequireFields returns an ErrOutputShape error naming the first top-level
// field absent from the object text.
func RequireFields(raw string, fields ...string) error {
	for _, f := range fields {
		if !gjson.Get(raw, f).Exists() {
			return fmt.Errorf("%w: missing field %q", core.ErrOutputShape, f)
		}
	}
	return nil
}
