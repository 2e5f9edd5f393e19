package common

import "context"

// StageLogger receives structured log entries from pipeline stages.
type StageLogger interface {
	Log(level, message string, data map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a stage logger to the context
func WithLogger(ctx context.Context, logger StageLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) StageLogger {
	if logger, ok := ctx.Value(loggerKey).(StageLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// noOpLogger is the fallback when no logger is carried in the context
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, data map[string]interface{}) {
}
