package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/model"
)

func TestConversationBuilder(t *testing.T) {
	b := NewConversationBuilder().
		System("sys").
		User("add").
		Call("c1", "calculator", map[string]any{"expression": "1+1"}).
		Result("c1", "calculator", "2").
		Assistant("Final Answer: 2")

	msgs := b.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
	assert.Equal(t, `{"expression":"1+1"}`, msgs[2].ToolCalls[0].Raw)
	assert.Equal(t, "c1", msgs[3].ToolCallID)

	conv, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 5, conv.Len())

	_, err = NewConversationBuilder().User("x").Result("nope", "calculator", "1").Build()
	assert.ErrorIs(t, err, core.ErrDanglingToolResult)
}

func TestResponseBuilder(t *testing.T) {
	resp := NewResponse().ID("r1").Text("Thought: add").CallWith("c1", "calculator", map[string]any{"expression": "1+1"}).Usage(10, 5).Build()

	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, `{"expression":"1+1"}`, resp.ToolCalls[0].Arguments)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "stop", NewResponse().Text("done").Build().FinishReason)
	assert.True(t, NewResponse().Partial().Build().Partial)
}

func TestMockModel(t *testing.T) {
	m := &MockModel{}
	m.On("Generate", mock.Anything, mock.Anything).Return(NewResponse().Text("hello").Build(), nil).Once()
	m.On("Generate", mock.Anything, mock.Anything).Return(model.Response{}, errors.New("backend down")).Once()

	resp, err := model.Collect(context.Background(), m, model.Request{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	_, err = model.Collect(context.Background(), m, model.Request{})
	assert.EqualError(t, err, "backend down")

	m.AssertNumberOfCalls(t, "Generate", 2)
}
