// Package logging builds the charmbracelet loggers used across pagebuilder
// and carries them through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a logger with timestamp formatting that writes to w and
// filters messages below level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel maps a config string (debug, info, warn, error) to a level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("invalid log level %q", s)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
