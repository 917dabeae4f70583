package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/qol-retirement/internal/calculation"
)

// gather returns the metric family called name from m's registry.
func gather(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	f := gather(t, m, name)
	require.Len(t, f.GetMetric(), 1)
	return f.GetMetric()[0].GetCounter().GetValue()
}

func labelledCounter(t *testing.T, m *Metrics, name, label, value string) float64 {
	t.Helper()
	for _, metric := range gather(t, m, name).GetMetric() {
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics_ImplementsRecorder(t *testing.T) {
	var _ calculation.Recorder = NewMetrics("")
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveRun(1000, 250, 1500*time.Millisecond)
	m.ObserveRun(500, 0, 200*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "test_montecarlo_runs_total"))
	assert.Equal(t, 1500.0, counterValue(t, m, "test_montecarlo_paths_total"))
	assert.Equal(t, 250.0, counterValue(t, m, "test_montecarlo_depleted_paths_total"))

	gauge := gather(t, m, "test_montecarlo_last_success_rate")
	assert.Equal(t, 1.0, gauge.GetMetric()[0].GetGauge().GetValue())

	hist := gather(t, m, "test_montecarlo_run_duration_seconds")
	assert.Equal(t, uint64(2), hist.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 1.7, hist.GetMetric()[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestMetrics_ObserveCombination(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveCombination("ok")
	m.ObserveCombination("ok")
	m.ObserveCombination("failed")

	assert.Equal(t, 2.0, labelledCounter(t, m, "test_sweep_combinations_total", "status", "ok"))
	assert.Equal(t, 1.0, labelledCounter(t, m, "test_sweep_combinations_total", "status", "failed"))
	assert.Equal(t, 0.0, labelledCounter(t, m, "test_sweep_combinations_total", "status", "skipped"))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics("")
	b := NewMetrics("")
	a.ObserveRun(10, 1, time.Second)

	assert.Equal(t, 1.0, counterValue(t, a, "qol_retirement_montecarlo_runs_total"))
	assert.Equal(t, 0.0, counterValue(t, b, "qol_retirement_montecarlo_runs_total"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveRun(100, 10, time.Second)
	m.ObserveCombination("skipped")

	path := filepath.Join(t.TempDir(), "qolsim.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "test_montecarlo_paths_total 100")
	assert.Contains(t, text, `test_sweep_combinations_total{status="skipped"} 1`)
}

func TestMetrics_WithEngine(t *testing.T) {
	m := NewMetrics("test")
	engine := calculation.NewCalculationEngine()
	engine.SetRecorder(m)

	cfg := calculation.DefaultSimulationConfig()
	cfg.NumPaths = 25
	cfg.Seed = 5
	_, err := engine.RunSimulation(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, m, "test_montecarlo_runs_total"))
	assert.Equal(t, 25.0, counterValue(t, m, "test_montecarlo_paths_total"))
}
