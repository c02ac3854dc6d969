package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

func calculatorSpec() core.ToolSpec {
	return core.ToolSpec{
		Name:        "calculator",
		Description: "Evaluate arithmetic",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{"type": "string"},
			},
			"required": []string{"expression"},
		},
	}
}

func styleSpec() core.ToolSpec {
	return core.ToolSpec{
		Name: "style_selector",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action":           map[string]any{"type": "string"},
				"template_name":    map[string]any{"type": "string"},
				"job_description":  map[string]any{"type": "string"},
				"page_preference":  map[string]any{"type": "string"},
				"custom_overrides": map[string]any{"type": "object"},
			},
			"required": []any{"action"},
		},
	}
}

func specs() []core.ToolSpec { return []core.ToolSpec{calculatorSpec(), styleSpec()} }

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Tagged")
	require.NoError(t, err)
	assert.Equal(t, ModeTagged, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStructured, m)

	_, err = ParseMode("xml")
	assert.Error(t, err)

	assert.Equal(t, "tagged", New(ModeTagged).Mode().String())
	assert.Equal(t, "structured", New(ModeStructured).Mode().String())
}

func TestSplitThought(t *testing.T) {
	thought, rest := SplitThought("<think>step one</think>Answer <THINK>two</THINK> here")
	assert.Equal(t, "step one\ntwo", thought)
	assert.Equal(t, "Answer  here", rest)

	thought, rest = SplitThought("  plain  ")
	assert.Empty(t, thought)
	assert.Equal(t, "plain", rest)
}

// -------------------- Structured --------------------

func TestStructured_Calls(t *testing.T) {
	resp := model.ToolCallResponse("<think>need math</think>", model.ToolCall{
		ID: "c1", Name: "calculator", Arguments: `{"expression":"3*7+2"}`,
	}, model.ToolCall{
		Name: "style_selector", Arguments: `"{\"action\":\"list\"}"`,
	}, model.ToolCall{
		ID: "c3", Name: "calculator", Arguments: "",
	})

	res, err := NewStructured().Parse(resp, specs())
	require.NoError(t, err)
	assert.False(t, res.Final)
	assert.Equal(t, "need math", res.Thought)
	require.Len(t, res.Invocations, 3)

	first := res.Invocations[0]
	assert.NoError(t, first.Err)
	assert.Equal(t, "c1", first.Call.ID)
	assert.Equal(t, map[string]any{"expression": "3*7+2"}, first.Call.Arguments)

	second := res.Invocations[1]
	assert.NoError(t, second.Err)
	assert.NotEmpty(t, second.Call.ID, "missing IDs are generated")
	assert.Equal(t, map[string]any{"action": "list"}, second.Call.Arguments)

	assert.Equal(t, map[string]any{}, res.Invocations[2].Call.Arguments)
	assert.Equal(t, []string{"calculator", "style_selector", "calculator"},
		[]string{res.Calls()[0].Name, res.Calls()[1].Name, res.Calls()[2].Name})
}

func TestStructured_MalformedArgumentsAreNonFatal(t *testing.T) {
	resp := model.ToolCallResponse("", model.ToolCall{ID: "bad", Name: "calculator", Arguments: `{"expression": `})

	res, err := NewStructured().Parse(resp, specs())
	require.NoError(t, err)
	require.Len(t, res.Invocations, 1)

	inv := res.Invocations[0]
	assert.ErrorIs(t, inv.Err, core.ErrArgumentDecode)
	assert.Equal(t, "bad", inv.Call.ID)
	assert.Equal(t, `{"expression": `, inv.Call.Raw)
	assert.False(t, res.Final)

	for _, blob := range []string{`[1,2]`, `42`, `"not an object"`} {
		_, err := DecodeArguments(blob)
		assert.Error(t, err, blob)
	}
}

func TestStructured_NoCallsIsFinal(t *testing.T) {
	res, err := NewStructured().Parse(model.TextResponse("<think>done</think>The result is 23."), nil)
	require.NoError(t, err)
	assert.True(t, res.Final)
	assert.Equal(t, "The result is 23.", res.Answer)
	assert.Equal(t, "done", res.Thought)

	res, err = NewStructured().Parse(model.TextResponse("Thought: ok\nFinal Answer: 23"), nil)
	require.NoError(t, err)
	assert.Equal(t, "23", res.Answer)
}

// -------------------- Tagged --------------------

func TestTagged_Actions(t *testing.T) {
	tests := []struct {
		name string
		text string
		tool string
		args map[string]any
	}{
		{"positional", `Thought: compute it
Action: calculator("3*7+2")`, "calculator", map[string]any{"expression": "3*7+2"}},
		{"keyword", `Action: calculator(expression='3*7+2')`, "calculator", map[string]any{"expression": "3*7+2"}},
		{"json object argument", `Action: calculator({"expression": "1+1"})`, "calculator", map[string]any{"expression": "1+1"}},
		{"json action form", `Action: {"name": "calculator", "arguments": {"expression": "2*2"}}`, "calculator", map[string]any{"expression": "2*2"}},
		{"json action with string arguments", `Action: {"name": "calculator", "arguments": "{\"expression\": \"5\"}"}`, "calculator", map[string]any{"expression": "5"}},
		{"bare raw text", `Action: calculator(3*7+2)`, "calculator", map[string]any{"expression": "3*7+2"}},
		{"required then sorted optional", `Action: style_selector("match", {"font": 1}, "senior go developer")`, "style_selector",
			map[string]any{"action": "match", "custom_overrides": map[string]any{"font": 1.0}, "job_description": "senior go developer"}},
		{"mixed with commas in quotes", `Action: style_selector(action="select", template_name="a, b")`, "style_selector",
			map[string]any{"action": "select", "template_name": "a, b"}},
		{"nested json value", `Action: style_selector("select", custom_overrides={"font": {"size": 11}})`, "style_selector",
			map[string]any{"action": "select", "custom_overrides": map[string]any{"font": map[string]any{"size": 11.0}}}},
		{"action before final wins", "Action: calculator(\"1\")\nObservation: 1\nFinal Answer: 1", "calculator", map[string]any{"expression": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewTagged().Parse(model.TextResponse(tt.text), specs())
			require.NoError(t, err)
			assert.False(t, res.Final)
			require.Len(t, res.Invocations, 1)

			call := res.Invocations[0].Call
			assert.Equal(t, tt.tool, call.Name)
			assert.Equal(t, tt.args, call.Arguments)
			assert.NotEmpty(t, call.ID)
			assert.NotEmpty(t, call.Raw)
		})
	}
}

func TestTagged_ThoughtCaptured(t *testing.T) {
	res, err := NewTagged().Parse(model.TextResponse("Thought: I should add\nAction: calculator(\"1+1\")"), specs())
	require.NoError(t, err)
	assert.Equal(t, "I should add", res.Thought)
}

func TestTagged_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{"missing close paren", `Action: calculator("3*7+2"`, "missing ')'"},
		{"missing open paren", `Action: calculator "3*7+2"`, "missing '('"},
		{"unknown tool", `Action: weather("Paris")`, `unknown tool "weather"`},
		{"too many positional", `Action: calculator("1", "2")`, "takes 1 parameter(s), got 2"},
		{"missing required", `Action: style_selector(template_name="x")`, "missing required parameter(s): action"},
		{"empty args for required", `Action: calculator()`, "missing required parameter(s): expression"},
		{"unknown keyword", `Action: calculator(expr="1")`, `unknown parameter "expr"`},
		{"duplicate keyword", `Action: calculator(expression="1", expression="2")`, "given twice"},
		{"no tool name", `Action: ("1")`, "no tool name"},
		{"json without name", `Action: {"arguments": {}}`, "no \"name\""},
		{"truncated json", `Action: {"name": "calculator"`, "incomplete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewTagged().Parse(model.TextResponse(tt.text), specs())
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrParse)
			assert.Contains(t, err.Error(), tt.reason)
			assert.Empty(t, res.Invocations)
			assert.False(t, res.Final)

			var pErr *Error
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, ModeTagged, pErr.Strategy)
		})
	}
}

func TestTagged_Final(t *testing.T) {
	for _, text := range []string{
		"Thought: done\nFinal Answer: 23",
		"final answer: 23",
		"final_answer: 23",
		"<think>x</think>FINAL ANSWER:   23  ",
	} {
		res, err := NewTagged().Parse(model.TextResponse(text), specs())
		require.NoError(t, err, text)
		assert.True(t, res.Final, text)
		assert.Equal(t, "23", res.Answer, text)
		assert.Empty(t, res.Invocations)
	}
}

func TestTagged_NeitherActionNorFinal(t *testing.T) {
	res, err := NewTagged().Parse(model.TextResponse("I think the answer is 23"), specs())
	require.NoError(t, err)
	assert.False(t, res.Final)
	assert.Empty(t, res.Invocations)
}

func TestSplitTopLevel(t *testing.T) {
	assert.Nil(t, splitTopLevel("  "))
	assert.Equal(t, []string{`"a,b"`, `[1, 2]`, `{"x": 1, "y": 2}`, `f(1, 2)`},
		splitTopLevel(`"a,b", [1, 2], {"x": 1, "y": 2}, f(1, 2)`))
	assert.Equal(t, []string{`'it\'s, fine'`, `2`}, splitTopLevel(`'it\'s, fine', 2`))
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, "x", decodeValue(`"x"`))
	assert.Equal(t, "it's", decodeValue(`'it\'s'`))
	assert.Equal(t, 3.0, decodeValue(`3`))
	assert.Equal(t, true, decodeValue(`true`))
	assert.Equal(t, true, decodeValue(`True`))
	assert.Nil(t, decodeValue(`null`))
	assert.Nil(t, decodeValue(`None`))
	assert.Equal(t, []any{1.0, 2.0}, decodeValue(`[1, 2]`))
	assert.Equal(t, "3*7+2", decodeValue(`3*7+2`))
}
