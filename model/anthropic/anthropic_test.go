package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
)

func TestBuildMessages_FoldsToolResults(t *testing.T) {
	history := []core.Message{
		core.NewSystemMessage("sys"),
		core.NewUserMessage("go"),
		core.NewAssistantMessage("thinking",
			core.ToolCall{ID: "a", Name: "t1", Arguments: map[string]any{}},
			core.ToolCall{ID: "b", Name: "t2", Raw: `{"x":1}`},
		),
		core.NewToolMessage(core.ToolResult{ToolCallID: "a", Output: "1"}),
		core.NewToolMessage(core.ToolResult{ToolCallID: "b", Output: "2"}),
		core.NewAssistantMessage("done"),
	}

	msgs := buildMessages(history)
	require.Len(t, msgs, 4)
	assert.Len(t, msgs[1].Content, 3)
	assert.Len(t, msgs[2].Content, 2, "both tool results share one user turn")

	system := extractSystem(history)
	require.Len(t, system, 1)
	assert.Equal(t, "sys", system[0].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]core.ToolSpec{{
		Name:        "calculator",
		Description: "Evaluate arithmetic",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"expression": map[string]any{"type": "string"}},
			"required":   []any{"expression"},
		},
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "calculator", tools[0].OfTool.Name)
	assert.Equal(t, []string{"expression"}, tools[0].OfTool.InputSchema.Required)
}
