// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Libraries in this module default to NoOpLogger and never
// force a logging dependency on callers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the minimal structured logging interface used across agentgraph.
// Args are alternating key/value pairs in the slog convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is
// disabled.
type NoOpLogger struct{}

// Debug discards a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards an error message.
func (NoOpLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct{ l *slog.Logger }

// NewSlogLogger builds a SlogLogger writing to w. Format is "json" or "text"
// (default text).
func NewSlogLogger(w io.Writer, level slog.Level, format string) *SlogLogger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{l: slog.New(h)}
}

// FromSlog wraps an existing slog logger.
func FromSlog(l *slog.Logger) *SlogLogger { return &SlogLogger{l: l} }

// Debug logs at debug level.
func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }

// Info logs at info level.
func (s *SlogLogger) Info(msg string, args ...any) { s.l.Info(msg, args...) }

// Warn logs at warn level.
func (s *SlogLogger) Warn(msg string, args ...any) { s.l.Warn(msg, args...) }

// Error logs at error level.
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
