package logging

import "time"

// MetricsLogger is a Logger with the domain helpers of StructuredLogger.
type MetricsLogger interface {
	Logger
	LogToolCall(tool string, dur time.Duration, success bool, err error)
	LogLLMCall(model string, tokens int, dur time.Duration, success bool, err error)
	LogRound(round, toolCalls int, final bool, dur time.Duration)
	LogStep(pipeline, step string, dur time.Duration, success bool, err error)
}

var _ MetricsLogger = (*StructuredLogger)(nil)

// LogToolCall uses l's helper when it has one and falls back to a debug line.
func LogToolCall(l Logger, tool string, dur time.Duration, success bool, err error) {
	if ml, ok := l.(MetricsLogger); ok {
		ml.LogToolCall(tool, dur, success, err)
		return
	}
	l.Debug("tool.call.completed", "tool_name", tool, "duration", dur, "success", success)
}

// LogLLMCall uses l's helper when it has one and falls back to a debug line.
func LogLLMCall(l Logger, model string, tokens int, dur time.Duration, success bool, err error) {
	if ml, ok := l.(MetricsLogger); ok {
		ml.LogLLMCall(model, tokens, dur, success, err)
		return
	}
	l.Debug("llm.call.completed", "model", model, "token_count", tokens, "duration", dur, "success", success)
}

// LogRound uses l's helper when it has one and falls back to a debug line.
func LogRound(l Logger, round, toolCalls int, final bool, dur time.Duration) {
	if ml, ok := l.(MetricsLogger); ok {
		ml.LogRound(round, toolCalls, final, dur)
		return
	}
	l.Debug("react.round.completed", "round", round, "tool_calls", toolCalls, "final", final, "duration", dur)
}

// LogStep uses l's helper when it has one and falls back to a debug line.
func LogStep(l Logger, pipeline, step string, dur time.Duration, success bool, err error) {
	if ml, ok := l.(MetricsLogger); ok {
		ml.LogStep(pipeline, step, dur, success, err)
		return
	}
	l.Debug("pipeline.step.completed", "pipeline", pipeline, "step", step, "duration", dur, "success", success)
}
