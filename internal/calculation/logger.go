package calculation

import "time"

// Logger is a minimal logging interface for the calculation engine.
// Implementations should be fast; the default is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// traceLogger is implemented by loggers with a level below debug.
type traceLogger interface {
	Tracef(format string, args ...any)
}

// tracef logs per-combination detail when l supports a trace level.
func tracef(l Logger, format string, args ...any) {
	if t, ok := l.(traceLogger); ok {
		t.Tracef(format, args...)
	}
}

// NopLogger implements Logger with no output.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// Recorder receives engine counters. The observability package provides a
// Prometheus-backed implementation; the default discards everything.
type Recorder interface {
	ObserveRun(paths, depleted int, elapsed time.Duration)
	ObserveCombination(status string)
}

// NopRecorder implements Recorder with no output.
type NopRecorder struct{}

func (NopRecorder) ObserveRun(paths, depleted int, elapsed time.Duration) {}
func (NopRecorder) ObserveCombination(status string)                      {}
