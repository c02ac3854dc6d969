package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Chan-Developer/ReAct-agent/model"
)

// MockModel is a testify mock of model.Model. Expectations are set on
// "Generate" with (ctx, request) and return (model.Response, error):
//
//	m := &MockModel{}
//	m.On("Generate", mock.Anything, mock.Anything).Return(NewResponse().Text("Final Answer: ok").Build(), nil).Once()
type MockModel struct {
	mock.Mock
}

var _ model.Model = (*MockModel)(nil)

// Generate implements model.Model.
func (m *MockModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- args.Get(0).(model.Response)
	}
	close(respCh)
	close(errCh)

	return respCh, errCh
}

// Info implements model.Model.
func (m *MockModel) Info() model.Info {
	return model.Info{Name: "mock", Provider: "testify", SupportsTools: true}
}
