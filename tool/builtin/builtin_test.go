package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"3*7+2", 23},
		{"(10+5)/3", 5},
		{"2 + 3 * 4", 14},
		{"(2+3)*4", 20},
		{"-3 + 5", 2},
		{"1.5*2", 3},
		{"10/4", 2.5},
		{"2*(3+(4-1))", 12},
		{"7/2", 3.5},
		{"--4", 4},
		{" 0.5 + 0.25", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	for _, expr := range []string{"1/0", "1/(2-2)", "3/0.0"} {
		_, err := Evaluate(expr)
		assert.ErrorIs(t, err, ErrDivisionByZero, expr)
	}

	for _, expr := range []string{"", "2+", "(1+2", "import os", "2**3", "1.2.3", "1..3", "3)", "len([1])", "1 % 2"} {
		_, err := Evaluate(expr)
		assert.Error(t, err, expr)
	}
}

func TestEvaluate_Bounds(t *testing.T) {
	_, err := Evaluate(strings.Repeat("-", 100000) + "1")
	assert.ErrorContains(t, err, "longer than")

	_, err = Evaluate(strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40))
	assert.ErrorContains(t, err, "nested too deeply")

	v, err := Evaluate(strings.Repeat("(", 10) + "6" + strings.Repeat(")", 10) + "/3")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = Evaluate("1" + strings.Repeat("0", 200) + ".0*1" + strings.Repeat("0", 200) + ".0")
	assert.ErrorContains(t, err, "finite")
}

func TestCalculatorTool(t *testing.T) {
	calc := NewCalculator()
	tc := core.NewToolContext(context.Background(), "fc1")

	out, err := calc.Call(tc, map[string]any{"expression": "3*7+2"})
	require.NoError(t, err)
	assert.Equal(t, 23.0, out)

	_, err = calc.Call(tc, map[string]any{"expression": "1/0"})
	require.Error(t, err)
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.CodeExecution, toolErr.Code)
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

func TestFileTools(t *testing.T) {
	root := t.TempDir()
	tc := core.NewToolContext(context.Background(), "fc1")

	_, err := NewWriteFile(root).Call(tc, map[string]any{"filename": "out/notes.txt", "content": "hello"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "out", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	out, err := NewReadFile(root).Call(tc, map[string]any{"filename": "out/notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = NewReadFile(root).Call(tc, map[string]any{"filename": "../escape.txt"})
	assert.Error(t, err)

	_, err = NewReadFile(root).Call(tc, map[string]any{"filename": "/etc/passwd"})
	assert.Error(t, err)
}

type staticKnowledge struct{ results []core.SearchResult }

func (s staticKnowledge) Store(string, map[string]any) (string, error) { return "", nil }
func (s staticKnowledge) Search(string, int) ([]core.SearchResult, error) {
	return s.results, nil
}
func (s staticKnowledge) Delete(string) error { return nil }

func TestKnowledgeSearchTool(t *testing.T) {
	store := staticKnowledge{results: []core.SearchResult{{ID: "1", Content: "Quantify achievements", Score: 0.8}}}
	tc := core.NewToolContext(context.Background(), "fc1")

	out, err := NewKnowledgeSearch(store).Call(tc, map[string]any{"query": "achievements"})
	require.NoError(t, err)
	snippets, ok := out.([]map[string]any)
	require.True(t, ok)
	require.Len(t, snippets, 1)
	assert.Equal(t, "Quantify achievements", snippets[0]["content"])

	empty, err := NewKnowledgeSearch(staticKnowledge{}).Call(tc, map[string]any{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, "no matching entries for x", empty)
}

func TestRegister(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, Register(reg, func(o *Options) {
		o.WorkDir = t.TempDir()
		o.Knowledge = staticKnowledge{}
	}))
	assert.Equal(t, []string{"calculator", "read_file", "write_file", "knowledge_search"}, reg.Names())

	minimal := tool.NewRegistry()
	require.NoError(t, Register(minimal))
	assert.Equal(t, []string{"calculator"}, minimal.Names())
}
