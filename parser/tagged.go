package parser

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/internal/util"
	"github.com/Chan-Developer/ReAct-agent/model"
)

// Tagged parses one `Action: name(args)` per response from free text.
//
// Accepted action forms:
//
//	Action: calculator("3*7+2")
//	Action: calculator(expression="3*7+2")
//	Action: calculator({"expression": "3*7+2"})
//	Action: {"name": "calculator", "arguments": {"expression": "3*7+2"}}
//
// Bare values are matched to parameters by position: required parameters in
// declaration order, then the remaining properties sorted by name.
type Tagged struct{}

var _ Strategy = Tagged{}

// NewTagged returns the tagged-text strategy.
func NewTagged() Tagged { return Tagged{} }

// Mode implements Strategy.
func (Tagged) Mode() Mode { return ModeTagged }

var (
	actionPattern  = regexp.MustCompile(`(?i)\baction\s*:`)
	thoughtPattern = regexp.MustCompile(`(?i)^\s*thought\s*:\s*`)
	identPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*`)
)

// Parse implements Strategy. A response with an action before any final
// marker yields exactly one invocation; a final marker yields the answer; a
// response with neither is returned as non-final with no invocations.
func (Tagged) Parse(resp model.Response, specs []core.ToolSpec) (Result, error) {
	thought, text := SplitThought(resp.Content)
	res := Result{Thought: thought}

	actionLoc := actionPattern.FindStringIndex(text)
	finalLoc := finalPattern.FindStringIndex(text)

	preamble := text
	switch {
	case actionLoc != nil:
		preamble = text[:actionLoc[0]]
	case finalLoc != nil:
		preamble = text[:finalLoc[0]]
	}
	if res.Thought == "" && (actionLoc != nil || finalLoc != nil) {
		res.Thought = strings.TrimSpace(thoughtPattern.ReplaceAllString(preamble, ""))
	}

	if actionLoc != nil && (finalLoc == nil || actionLoc[0] < finalLoc[0]) {
		call, err := parseAction(strings.TrimSpace(text[actionLoc[1]:]), specs)
		if err != nil {
			return res, err
		}
		res.Invocations = []Invocation{{Call: call}}
		return res, nil
	}

	if answer, ok := finalAnswer(text); ok {
		res.Final = true
		res.Answer = answer
	}

	return res, nil
}

func parseAction(body string, specs []core.ToolSpec) (core.ToolCall, error) {
	if strings.HasPrefix(body, "{") {
		return parseJSONAction(body, specs)
	}

	name := identPattern.FindString(body)
	if name == "" {
		return core.ToolCall{}, parseErr(ModeTagged, body, "action has no tool name")
	}

	rest := strings.TrimLeft(body[len(name):], " \t")
	if !strings.HasPrefix(rest, "(") {
		return core.ToolCall{}, parseErr(ModeTagged, body, "missing '(' after tool name %q", name)
	}

	inner, ok := matchParen(rest)
	if !ok {
		return core.ToolCall{}, parseErr(ModeTagged, body, "missing ')' in action %q", firstLine(body))
	}

	spec, ok := specByName(specs, name)
	if !ok {
		return core.ToolCall{}, parseErr(ModeTagged, body, "unknown tool %q (available: %s)", name, specNames(specs))
	}

	args, err := bindArguments(inner, spec)
	if err != nil {
		return core.ToolCall{}, err
	}

	return newCall(name, args), nil
}

func parseJSONAction(body string, specs []core.ToolSpec) (core.ToolCall, error) {
	obj, ok := util.ExtractObject(body)
	if !ok || !gjson.Valid(obj) {
		return core.ToolCall{}, parseErr(ModeTagged, body, "action JSON is incomplete or invalid")
	}

	name := gjson.Get(obj, "name").String()
	if name == "" {
		return core.ToolCall{}, parseErr(ModeTagged, body, "action JSON has no \"name\" field")
	}
	if _, ok := specByName(specs, name); !ok {
		return core.ToolCall{}, parseErr(ModeTagged, body, "unknown tool %q (available: %s)", name, specNames(specs))
	}

	args := map[string]any{}
	switch a := gjson.Get(obj, "arguments"); {
	case !a.Exists():
	case a.Type == gjson.String:
		decoded, err := DecodeArguments(a.String())
		if err != nil {
			return core.ToolCall{}, decodeErr(ModeTagged, body, "tool %q: %v", name, err)
		}
		args = decoded
	case a.IsObject():
		if err := json.Unmarshal([]byte(a.Raw), &args); err != nil {
			return core.ToolCall{}, decodeErr(ModeTagged, body, "tool %q: %v", name, err)
		}
	default:
		return core.ToolCall{}, decodeErr(ModeTagged, body, "tool %q: arguments must be a JSON object", name)
	}

	return newCall(name, args), nil
}

func newCall(name string, args map[string]any) core.ToolCall {
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte("{}")
	}
	return core.ToolCall{ID: uuid.NewString(), Name: name, Arguments: args, Raw: string(raw)}
}

// bindArguments maps the text between the parentheses onto the tool's
// declared parameters.
func bindArguments(inner string, spec core.ToolSpec) (map[string]any, error) {
	trimmed := strings.TrimSpace(inner)
	args := map[string]any{}

	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) && gjson.Parse(trimmed).IsObject() {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return nil, decodeErr(ModeTagged, inner, "tool %q: %v", spec.Name, err)
		}
		return args, checkBound(args, spec, inner)
	}

	pieces := splitTopLevel(trimmed)
	order := positionalOrder(spec)
	props := spec.Properties()
	next := 0

	for _, piece := range pieces {
		if key, value, ok := splitKeyword(piece); ok {
			if _, known := props[key]; !known {
				return nil, parseErr(ModeTagged, inner, "unknown parameter %q for tool %q", key, spec.Name)
			}
			if _, dup := args[key]; dup {
				return nil, parseErr(ModeTagged, inner, "parameter %q given twice", key)
			}
			args[key] = decodeValue(value)
			continue
		}

		for next < len(order) {
			if _, taken := args[order[next]]; !taken {
				break
			}
			next++
		}
		if next >= len(order) {
			return nil, parseErr(ModeTagged, inner,
				"tool %q takes %d parameter(s), got %d value(s)", spec.Name, len(order), len(pieces))
		}
		args[order[next]] = decodeValue(piece)
		next++
	}

	return args, checkBound(args, spec, inner)
}

func checkBound(args map[string]any, spec core.ToolSpec, inner string) error {
	var missing []string
	for _, req := range spec.RequiredParameters() {
		if _, ok := args[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return parseErr(ModeTagged, inner, "tool %q is missing required parameter(s): %s",
			spec.Name, strings.Join(missing, ", "))
	}
	return nil
}

// positionalOrder lists required parameters in declaration order followed by
// the remaining properties sorted by name.
func positionalOrder(spec core.ToolSpec) []string {
	required := spec.RequiredParameters()
	seen := make(map[string]bool, len(required))
	order := make([]string, 0, len(spec.Properties()))
	for _, r := range required {
		if !seen[r] {
			seen[r] = true
			order = append(order, r)
		}
	}

	rest := make([]string, 0)
	for name := range spec.Properties() {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
