package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/sirupsen/logrus"
	"github.com/user/clipsampler/pkg/ports"
)

// Log formats accepted by NewLogrus.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LogrusLogger logs structured entries through logrus. The component is carried as a field.
type LogrusLogger struct {
	entry *logrus.Entry
}

// IsValidFormat reports whether format is accepted by NewLogrus.
func IsValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return true
	}
	return false
}

// NewLogrus creates a logger writing to w in text or JSON format.
func NewLogrus(level ports.LogLevel, format string, w io.Writer) (*LogrusLogger, error) {
	l := logrus.New()
	l.SetOutput(w)

	switch strings.ToLower(format) {
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	case FormatText, "":
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	switch level {
	case ports.LevelDebug:
		l.SetLevel(logrus.DebugLevel)
	case ports.LevelInfo:
		l.SetLevel(logrus.InfoLevel)
	case ports.LevelWarn:
		l.SetLevel(logrus.WarnLevel)
	case ports.LevelError:
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetOutput(io.Discard)
		l.SetLevel(logrus.PanicLevel)
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}, nil
}

func (l *LogrusLogger) Debug(msg string, args ...interface{}) {
	if l.entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		l.entry.Debug(l10n.F(msg, args...))
	}
}

func (l *LogrusLogger) Info(msg string, args ...interface{}) {
	l.entry.Info(l10n.F(msg, args...))
}

func (l *LogrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.Warn(l10n.F(msg, args...))
}

func (l *LogrusLogger) Error(msg string, args ...interface{}) {
	l.entry.Error(l10n.F(msg, args...))
}

// WithComponent returns a logger whose entries carry the component field.
func (l *LogrusLogger) WithComponent(component string) ports.Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

var (
	_ ports.Logger = (*LogrusLogger)(nil)
	_ ports.Logger = (*ConsoleLogger)(nil)
	_ ports.Logger = (*NoopLogger)(nil)
)
