package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

func TestBuildMessages(t *testing.T) {
	history := []core.Message{
		core.NewSystemMessage("you are helpful"),
		core.NewUserMessage("what is 2+3?"),
		core.NewAssistantMessage("", core.ToolCall{ID: "c1", Name: "calculator", Arguments: map[string]any{"expression": "2+3"}}),
		core.NewToolMessage(core.ToolResult{ToolCallID: "c1", Name: "calculator", Output: "5"}),
		core.NewAssistantMessage("5"),
	}

	msgs := buildMessages(history)
	require.Len(t, msgs, 5)

	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "c1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.JSONEq(t, `{"expression":"2+3"}`, msgs[2].OfAssistant.ToolCalls[0].Function.Arguments)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "c1", msgs[3].OfTool.ToolCallID)
	assert.NotNil(t, msgs[4].OfAssistant)
}

func TestBuildParams_TemperatureOverrideAndTools(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })

	temp := 0.1
	params := m.buildParams(model.Request{
		Temperature: &temp,
		ToolChoice:  "auto",
		Tools: []core.ToolSpec{{
			Name:        "calculator",
			Description: "Evaluate arithmetic",
			Parameters:  map[string]any{"type": "object"},
		}},
	}, nil)

	assert.Equal(t, 0.1, params.Temperature.Value)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "calculator", params.Tools[0].Function.Name)
}

func TestFlattenAgg_OrdersByIndex(t *testing.T) {
	calls := flattenAgg(map[int64]*aggCall{
		1: {id: "b", name: "second"},
		0: {id: "a", name: "first", args: `{}`},
	})
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Name)
	assert.Equal(t, "second", calls[1].Name)
}
