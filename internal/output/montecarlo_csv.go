package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
	money "github.com/rpgo/qol-retirement/pkg/decimal"
)

// gridObjectives are the metrics a two-parameter sweep exports as matrices.
var gridObjectives = []calculation.Objective{
	calculation.ObjectiveDepletionRate,
	calculation.ObjectiveFinalValueMean,
	calculation.ObjectiveFinalValueMedian,
	calculation.ObjectiveSurvivalRate,
}

// MonteCarloCSVReport generates the CSV export set for a report.
type MonteCarloCSVReport struct {
	Report *Report
}

// GenerateSummaryCSV writes the formatter's primary table to outputPath.
func (m *MonteCarloCSVReport) GenerateSummaryCSV(outputPath string) error {
	data, err := CSVSummarizer{}.Format(m.Report)
	if err != nil {
		return fmt.Errorf("failed to format summary CSV: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	return nil
}

// GeneratePathsCSV writes every simulated year of every path. RealWithdrawal
// is the withdrawal in starting-year dollars.
func (m *MonteCarloCSVReport) GeneratePathsCSV(outputPath string) error {
	sim := m.Report.Simulation
	if sim == nil {
		return fmt.Errorf("paths CSV needs a simulation report")
	}
	return writeCSV(outputPath, func(w *csv.Writer) error {
		header := []string{
			"Path", "Year", "Age", "StartValue", "Withdrawal", "RealWithdrawal", "Return", "Inflation",
			"InflationFactor", "EquityWeight", "QOLFactor", "EndValue", "Depleted",
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, p := range sim.Paths() {
			for _, y := range p.Years {
				row := []string{
					intToString(p.Index),
					intToString(y.Year),
					intToString(y.Age),
					formatFloat(y.StartValue),
					formatFloat(y.Withdrawal),
					money.NewMoney(y.Withdrawal).Deflate(y.InflationFactor).String(),
					formatFloat(y.Return),
					formatFloat(y.Inflation),
					formatFloat(y.InflationFactor),
					formatFloat(y.Allocation.Equity),
					formatFloat(y.QOLFactor),
					formatFloat(y.EndValue),
					boolToString(y.Depleted),
				}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("failed to write path row: %w", err)
				}
			}
		}
		return nil
	})
}

// GenerateSurvivalCSV writes the survival curve by year and age.
func (m *MonteCarloCSVReport) GenerateSurvivalCSV(outputPath string) error {
	sim := m.Report.Simulation
	if sim == nil || sim.Risk == nil {
		return fmt.Errorf("survival CSV needs a risk report")
	}
	risk := sim.Risk
	return writeCSV(outputPath, func(w *csv.Writer) error {
		if err := w.Write([]string{"Year", "Age", "Survival"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for y, s := range risk.SurvivalByYear {
			if err := w.Write([]string{intToString(y), intToString(risk.SurvivalAges[y]), formatFloat(s)}); err != nil {
				return fmt.Errorf("failed to write survival row: %w", err)
			}
		}
		return nil
	})
}

// GeneratePercentileCSV writes final-value and depletion-age percentiles side by side.
func (m *MonteCarloCSVReport) GeneratePercentileCSV(outputPath string) error {
	sim := m.Report.Simulation
	if sim == nil || sim.Risk == nil {
		return fmt.Errorf("percentile CSV needs a risk report")
	}
	fv := sim.Summary.FinalValuePercentiles
	ages := sim.Risk.DepletionAges
	return writeCSV(outputPath, func(w *csv.Writer) error {
		if err := w.Write([]string{"Percentile", "FinalValue", "DepletionAge", "Interpretation"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		percentileData := [][]string{
			{"10th", fv.P10.StringFixed(2), ages.P10.String(), "Worst 10% of scenarios"},
			{"25th", fv.P25.StringFixed(2), ages.P25.String(), "Below average scenarios"},
			{"50th (Median)", fv.P50.StringFixed(2), ages.P50.String(), "Typical scenario"},
			{"75th", fv.P75.StringFixed(2), ages.P75.String(), "Above average scenarios"},
			{"90th", fv.P90.StringFixed(2), ages.P90.String(), "Best 10% of scenarios"},
		}
		for _, row := range percentileData {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write percentile row: %w", err)
			}
		}
		return nil
	})
}

// GenerateGridCSV writes one metric of a two-parameter sweep as a matrix
// with the first parameter across and the second down.
func (m *MonteCarloCSVReport) GenerateGridCSV(outputPath string, objective calculation.Objective) error {
	res := m.Report.Sweep
	if res == nil || res.Grid == nil {
		return fmt.Errorf("grid CSV needs a two-parameter sweep")
	}
	g := res.Grid
	var cells [][]float64
	switch objective {
	case calculation.ObjectiveDepletionRate:
		cells = ratioMatrix(g.DepletionRates)
	case calculation.ObjectiveFinalValueMean:
		cells = ratioMatrix(g.FinalValueMeans)
	case calculation.ObjectiveFinalValueMedian:
		cells = ratioMatrix(g.FinalValueMedians)
	case calculation.ObjectiveSurvivalRate:
		cells = ratioMatrix(g.SurvivalRates)
	default:
		return fmt.Errorf("unknown objective %q", objective)
	}
	return writeCSV(outputPath, func(w *csv.Writer) error {
		header := []string{res.ParameterNames[1] + `\` + res.ParameterNames[0]}
		for _, v := range g.Values1 {
			header = append(header, formatFloat(v))
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for j, v2 := range g.Values2 {
			row := []string{formatFloat(v2)}
			for _, c := range cells[j] {
				row = append(row, formatFloat(c))
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write grid row: %w", err)
			}
		}
		return nil
	})
}

// GenerateAllCSVReports creates every CSV that applies to the report in outputDir
// and returns the files written.
func (m *MonteCarloCSVReport) GenerateAllCSVReports(outputDir string) ([]string, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	run := func(name string, gen func(string) error) error {
		path := filepath.Join(outputDir, name)
		if err := gen(path); err != nil {
			return fmt.Errorf("failed to generate %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	switch m.Report.Kind() {
	case "simulation":
		steps := []struct {
			name string
			gen  func(string) error
		}{
			{"monte_carlo_summary.csv", m.GenerateSummaryCSV},
			{"monte_carlo_paths.csv", m.GeneratePathsCSV},
			{"monte_carlo_survival.csv", m.GenerateSurvivalCSV},
			{"monte_carlo_percentiles.csv", m.GeneratePercentileCSV},
		}
		for _, s := range steps {
			if err := run(s.name, s.gen); err != nil {
				return written, err
			}
		}
	case "comparison":
		if err := run("strategy_comparison.csv", m.GenerateSummaryCSV); err != nil {
			return written, err
		}
	case "sweep":
		if err := run("sweep_points.csv", m.GenerateSummaryCSV); err != nil {
			return written, err
		}
		if m.Report.Sweep.Grid != nil {
			for _, o := range gridObjectives {
				err := run("sweep_grid_"+string(o)+".csv", func(p string) error { return m.GenerateGridCSV(p, o) })
				if err != nil {
					return written, err
				}
			}
		}
	default:
		return nil, fmt.Errorf("nothing to export")
	}
	return written, nil
}

func writeCSV(outputPath string, body func(*csv.Writer) error) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := body(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func ratioMatrix(m [][]domain.Ratio) [][]float64 {
	out := make([][]float64, len(m))
	for j, row := range m {
		out[j] = make([]float64, len(row))
		for i, r := range row {
			out[j][i] = r.Float64()
		}
	}
	return out
}
