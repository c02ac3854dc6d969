package core

import "github.com/Chan-Developer/ReAct-agent/logging"

// contextLogger prefixes every line with the correlation fields of the
// context that owns it. A nil logger becomes a NoOpLogger.
type contextLogger struct {
	logger logging.Logger
	fields []any
}

func newContextLogger(l logging.Logger, fields ...any) *contextLogger {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &contextLogger{logger: l, fields: fields}
}

// Logger returns the underlying logger without correlation fields.
func (l *contextLogger) Logger() logging.Logger { return l.logger }

func (l *contextLogger) with(args []any) []any {
	if len(l.fields) == 0 {
		return args
	}
	out := make([]any, 0, len(l.fields)+len(args))
	out = append(out, l.fields...)
	return append(out, args...)
}

// LogDebug logs a debug message.
func (l *contextLogger) LogDebug(msg string, args ...any) { l.logger.Debug(msg, l.with(args)...) }

// LogInfo logs an info message.
func (l *contextLogger) LogInfo(msg string, args ...any) { l.logger.Info(msg, l.with(args)...) }

// LogWarn logs a warning message.
func (l *contextLogger) LogWarn(msg string, args ...any) { l.logger.Warn(msg, l.with(args)...) }

// LogError logs an error message.
func (l *contextLogger) LogError(msg string, args ...any) { l.logger.Error(msg, l.with(args)...) }
