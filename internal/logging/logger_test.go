package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/qol-retirement/internal/calculation"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"warn filters info", "warn", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			assert.Equal(t, tt.logAtDebug, strings.Contains(buf.String(), "debug message"))

			buf.Reset()
			logger.Info("info message")
			assert.Equal(t, tt.logAtInfo, strings.Contains(buf.String(), "info message"))
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "path detail")

	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "path detail")
}

func TestEngineLogger(t *testing.T) {
	var buf bytes.Buffer
	var engineLogger calculation.Logger = NewEngineLogger(NewLogger("debug", &buf), "montecarlo")

	engineLogger.Debugf("running %d paths", 1000)
	engineLogger.Warnf("sweep combination %d failed", 3)

	out := buf.String()
	assert.Contains(t, out, "running 1000 paths")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "component=montecarlo")
}

func TestEngineLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewEngineLogger(NewLogger("info", &buf), "")

	l.Debugf("hidden")
	l.Tracef("also hidden")
	assert.Empty(t, buf.String())

	l.Errorf("visible %s", "error")
	require.Contains(t, buf.String(), "visible error")
	assert.NotContains(t, buf.String(), "component=")
}

func TestEngineLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewEngineLogger(NewLogger("trace", &buf), "sweep")

	l.Tracef("sweep combination %d done", 4)
	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "sweep combination 4 done")
	assert.Contains(t, buf.String(), "component=sweep")
}

func TestEngineLogger_NilLogger(t *testing.T) {
	l := NewEngineLogger(nil, "x")
	assert.NotPanics(t, func() { l.Infof("discarded %d", 1) })
}
