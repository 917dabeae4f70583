// Package logging provides leveled logging for the simulator CLI and an
// adapter that routes calculation engine messages through it.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace is a custom slog level below Debug for per-path and per-combination detail.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "error", "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// EngineLogger adapts a slog.Logger to the printf-style logger the
// calculation engine expects. Messages carry a component attribute.
type EngineLogger struct {
	logger *slog.Logger
}

// NewEngineLogger wraps l; a nil l discards everything.
func NewEngineLogger(l *slog.Logger, component string) *EngineLogger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if component != "" {
		l = l.With("component", component)
	}
	return &EngineLogger{logger: l}
}

func (e *EngineLogger) Debugf(format string, args ...any) { e.log(slog.LevelDebug, format, args...) }
func (e *EngineLogger) Infof(format string, args ...any)  { e.log(slog.LevelInfo, format, args...) }
func (e *EngineLogger) Warnf(format string, args ...any)  { e.log(slog.LevelWarn, format, args...) }
func (e *EngineLogger) Errorf(format string, args ...any) { e.log(slog.LevelError, format, args...) }

// Tracef logs below debug.
func (e *EngineLogger) Tracef(format string, args ...any) { e.log(LevelTrace, format, args...) }

func (e *EngineLogger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !e.logger.Enabled(ctx, level) {
		return
	}
	e.logger.Log(ctx, level, fmt.Sprintf(format, args...))
}
