package logger

import "github.com/user/clipsampler/pkg/ports"

// NoopLogger discards all messages. It backs the quiet log level.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{})  {}
func (*NoopLogger) Warn(string, ...interface{})  {}
func (*NoopLogger) Error(string, ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *NoopLogger) WithComponent(string) ports.Logger {
	return l
}
