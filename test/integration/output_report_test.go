package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/config"
	"github.com/rpgo/qol-retirement/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputGeneration(t *testing.T) {
	scenario, err := config.NewInputParser().LoadFromFile(exampleConfig)
	require.NoError(t, err)
	cfg, err := config.BuildSimulationConfig(scenario)
	require.NoError(t, err)

	engine := calculation.NewCalculationEngine()
	ens, err := engine.RunSimulation(cfg)
	require.NoError(t, err)
	risk, err := engine.AnalyzeDepletion(ens)
	require.NoError(t, err)

	report := &output.Report{Scenario: scenario.Name, Simulation: output.NewSimulationReport(ens, risk)}
	for _, format := range []string{"console", "json", "csv"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.GenerateReport(&buf, report, format))
			assert.Contains(t, buf.String(), "1965")
		})
	}

	var buf bytes.Buffer
	assert.ErrorIs(t, output.GenerateReport(&buf, report, "html"), output.ErrUnsupportedFormat)
}

func TestCSVExportSet(t *testing.T) {
	scenario, err := config.NewInputParser().LoadFromFile(exampleConfig)
	require.NoError(t, err)
	cfg, err := config.BuildSimulationConfig(scenario)
	require.NoError(t, err)
	strategies, err := config.BuildComparison(scenario)
	require.NoError(t, err)

	cmp, err := calculation.NewCalculationEngine().CompareStrategies(cfg, strategies)
	require.NoError(t, err)

	dir := t.TempDir()
	files, err := (&output.MonteCarloCSVReport{Report: &output.Report{Comparison: cmp}}).GenerateAllCSVReports(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(dir, "strategy_comparison.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hauenstein QOL")
}
