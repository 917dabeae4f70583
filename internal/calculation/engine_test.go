package calculation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *captureLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *captureLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *captureLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *captureLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }
func (l *captureLogger) Tracef(format string, args ...any) { l.add("TRACE", format, args...) }

func (l *captureLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestCalculationEngine_SetLoggerAndRecorder(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &captureLogger{}
	rec := &recordingRecorder{}
	engine.SetLogger(logger)
	engine.SetRecorder(rec)
	engine.SetWorkers(4, 3)

	if engine.MonteCarlo.Workers != 4 || engine.Sweeper.Workers != 3 {
		t.Errorf("workers = %d/%d, want 4/3", engine.MonteCarlo.Workers, engine.Sweeper.Workers)
	}

	if _, err := engine.SweepOneParameter(context.Background(), sweepBase(20), "return_mean", []float64{0.01, 0.02}, ObjectiveDepletionRate); err != nil {
		t.Fatalf("SweepOneParameter failed: %v", err)
	}
	if rec.runs != 2 || rec.combinations["ok"] != 2 {
		t.Errorf("recorded %d runs and %v combinations", rec.runs, rec.combinations)
	}
	if len(logger.lines) == 0 {
		t.Error("expected engine log output")
	}
	if n := logger.count("TRACE sweep combination"); n != 2 {
		t.Errorf("got %d combination trace lines, want 2", n)
	}

	engine.SetLogger(nil)
	engine.SetRecorder(nil)
	if _, ok := engine.Logger.(NopLogger); !ok {
		t.Errorf("SetLogger(nil) should install NopLogger, got %T", engine.Logger)
	}
	if _, ok := engine.MonteCarlo.Recorder.(NopRecorder); !ok {
		t.Errorf("SetRecorder(nil) should install NopRecorder, got %T", engine.MonteCarlo.Recorder)
	}
	engine.SetWorkers(0, -1)
	if engine.MonteCarlo.Workers != 4 || engine.Sweeper.Workers != 3 {
		t.Error("non-positive worker counts should keep the current limits")
	}
}

func TestCalculationEngine_SweepFacades(t *testing.T) {
	engine := NewCalculationEngine()
	ctx := context.Background()
	base := sweepBase(20)

	two, err := engine.SweepTwoParameters(ctx, base, "return_mean", []float64{0.01, 0.02}, "withdrawal_rate", []float64{0.04}, ObjectiveSurvivalRate)
	if err != nil {
		t.Fatalf("SweepTwoParameters failed: %v", err)
	}
	if two.Mode != SweepTwoParameters || two.Grid == nil {
		t.Errorf("unexpected two-parameter result %+v", two)
	}

	many, err := engine.SweepManyParameters(ctx, base, []ParameterRange{{Name: "return_mean", Values: []float64{0.01, 0.02}}}, 10, nil)
	if err != nil {
		t.Fatalf("SweepManyParameters failed: %v", err)
	}
	if many.Mode != SweepComprehensive || many.Series != nil || many.Grid != nil {
		t.Errorf("unexpected comprehensive result %+v", many)
	}
}

func TestCalculationEngine_LoadGlidePath(t *testing.T) {
	dir := t.TempDir()
	content := "age,equity,bond\n65,0.5,0.5\n66,0.4,0.6\n"
	if err := os.WriteFile(filepath.Join(dir, "glide.csv"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write glide path: %v", err)
	}

	engine := NewCalculationEngine()
	engine.GlidePathLoader = NewGlidePathLoader(dir)
	gp, err := engine.LoadGlidePath("glide.csv")
	if err != nil {
		t.Fatalf("LoadGlidePath failed: %v", err)
	}
	if gp.Allocation(66).Equity != 0.4 {
		t.Errorf("age 66 equity = %v, want 0.4", gp.Allocation(66).Equity)
	}

	if _, err := engine.LoadGlidePath("missing.csv"); err == nil {
		t.Error("expected error for missing glide path")
	}
}
