package output_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/rpgo/qol-retirement/internal/output"
	stddec "github.com/shopspring/decimal"
)

func TestFormatters(t *testing.T) {
	if got := output.FormatCurrency(stddec.NewFromFloat(123.45)); got != "$123.45" {
		t.Fatalf("FormatCurrency = %q", got)
	}
	if got := output.FormatPercentage(stddec.NewFromFloat(12.34)); got != "12.34%" {
		t.Fatalf("FormatPercentage = %q", got)
	}
	if got := output.FormatDollars(1250000.4); got != "$1,250,000" {
		t.Fatalf("FormatDollars = %q", got)
	}
}

func TestReportKind(t *testing.T) {
	cases := []struct {
		report *output.Report
		want   string
	}{
		{&output.Report{}, ""},
		{&output.Report{Comparison: &domain.StrategyComparison{}}, "comparison"},
		{&output.Report{Sweep: &calculation.SweepResult{}}, "sweep"},
	}
	for _, c := range cases {
		if got := c.report.Kind(); got != c.want {
			t.Fatalf("Kind() = %q, want %q", got, c.want)
		}
	}
}

func TestGenerateReport_JSON_CSV(t *testing.T) {
	report := &output.Report{
		Comparison: &domain.StrategyComparison{
			Strategies: []domain.StrategySummary{{Label: "Baseline", Kind: "fixed_real", MedianDepletion: domain.Never}},
		},
	}

	var buf bytes.Buffer
	if err := output.GenerateReport(&buf, report, "json"); err != nil {
		t.Fatalf("GenerateReport json error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("empty json output")
	}
	buf.Reset()
	if err := output.GenerateReport(&buf, report, "csv-summary"); err != nil {
		t.Fatalf("GenerateReport csv error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Baseline,fixed_real,")) {
		t.Fatalf("unexpected csv output: %s", buf.String())
	}

	err := output.GenerateReport(&buf, report, "html")
	if !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewSimulationReport(t *testing.T) {
	cfg := calculation.DefaultSimulationConfig()
	cfg.NumPaths = 5
	cfg.Seed = 3
	ens, err := calculation.NewMonteCarloEngine().Run(cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sim := output.NewSimulationReport(ens, nil)
	if sim.Seed != 3 || len(sim.Paths()) != 5 {
		t.Fatalf("unexpected report: seed %d, %d paths", sim.Seed, len(sim.Paths()))
	}
	if (&output.SimulationReport{}).Paths() != nil {
		t.Fatalf("decoded report should have no paths")
	}
}
