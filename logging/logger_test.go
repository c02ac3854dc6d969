package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"loud", LogLevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStructuredLogger_JSONAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("dispatcher").
		WithRun("run-1").
		WithContext("agent", "driver")

	l.Info("tool.dispatch.start", "tool", "calculator")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "tool.dispatch.start", rec["msg"])
	assert.Equal(t, "dispatcher", rec["component"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Equal(t, "driver", rec["agent"])
	assert.Equal(t, "calculator", rec["tool"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.LogToolCall("calc", time.Millisecond, false, errors.New("boom"))
	assert.True(t, strings.Contains(buf.String(), "tool.call.failed"))
	assert.True(t, strings.Contains(buf.String(), "boom"))
}

func TestWithContextDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Format: "json", Output: &buf})
	_ = parent.WithContext("k", "v")

	parent.Info("msg")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	_, ok := rec["k"]
	assert.False(t, ok)
}

var _ Logger = (*StructuredLogger)(nil)
var _ Logger = NoOpLogger{}
