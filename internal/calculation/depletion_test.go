package calculation

import (
	"errors"
	"math"
	"testing"

	"github.com/rpgo/qol-retirement/internal/domain"
)

// syntheticPath builds a path that depletes in year depleteAt, or never when depleteAt < 0.
func syntheticPath(index, horizon, depleteAt int) PathResult {
	p := PathResult{Index: index, StartingValue: 100}
	for y := 0; y < horizon; y++ {
		end := 100.0
		if depleteAt >= 0 && y >= depleteAt {
			end = 0
		}
		p.Years = append(p.Years, YearRecord{Year: y, Age: 65 + y, EndValue: end, Depleted: end == 0})
	}
	return p
}

func syntheticEnsemble(horizon int, depletions ...int) *PathEnsemble {
	cfg := DefaultSimulationConfig()
	cfg.HorizonYears = horizon
	cfg.NumPaths = len(depletions)
	ens := &PathEnsemble{Config: cfg}
	for i, d := range depletions {
		ens.Paths = append(ens.Paths, syntheticPath(i, horizon, d))
	}
	return ens
}

func TestDepletionAnalyzer_Statistics(t *testing.T) {
	ens := syntheticEnsemble(10, 2, 4, 6, 8, -1)
	report, err := NewDepletionAnalyzer().Analyze(ens)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.DepletedPaths != 4 || report.DepletionRate != 0.8 {
		t.Errorf("depleted = %d (rate %v), want 4 (0.8)", report.DepletedPaths, report.DepletionRate)
	}
	if math.Abs(report.SurvivalRate-0.2) > 1e-12 {
		t.Errorf("survival rate = %v, want 0.2", report.SurvivalRate)
	}

	checks := []struct {
		name     string
		got      domain.DepletionYear
		expected float64
	}{
		{name: "median year", got: report.MedianDepletionYear, expected: 5},
		{name: "mean year", got: report.MeanDepletionYear, expected: 5},
		{name: "earliest year", got: report.EarliestDepletionYear, expected: 2},
		{name: "p10 year", got: report.DepletionYears.P10, expected: 2.6},
		{name: "p90 year", got: report.DepletionYears.P90, expected: 7.4},
		{name: "var95 year", got: report.VaR95Year, expected: 2.3},
		{name: "median age", got: report.MedianDepletionAge, expected: 70},
		{name: "p25 age", got: report.DepletionAges.P25, expected: 68.5},
		{name: "var99 age", got: report.VaR99Age, expected: 67.06},
	}
	for _, c := range checks {
		if math.Abs(c.got.Float64()-c.expected) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.expected)
		}
	}
}

func TestDepletionAnalyzer_SurvivalCurve(t *testing.T) {
	ens := syntheticEnsemble(10, 2, 4, 6, 8, -1)
	report, err := NewDepletionAnalyzer().Analyze(ens)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	expected := []float64{1, 1, 0.8, 0.8, 0.6, 0.6, 0.4, 0.4, 0.2, 0.2}
	if len(report.SurvivalByYear) != len(expected) {
		t.Fatalf("survival curve has %d points, want %d", len(report.SurvivalByYear), len(expected))
	}
	for y, want := range expected {
		if math.Abs(report.SurvivalByYear[y]-want) > 1e-12 {
			t.Errorf("year %d: survival = %v, want %v", y, report.SurvivalByYear[y], want)
		}
		if report.SurvivalAges[y] != 65+y {
			t.Errorf("year %d: age = %d, want %d", y, report.SurvivalAges[y], 65+y)
		}
	}

	ageChecks := map[int]float64{50: 1, 65: 1, 67: 0.8, 74: 0.2, 120: 0.2}
	for age, want := range ageChecks {
		if got := report.SurvivalAtAge(age); math.Abs(got-want) > 1e-12 {
			t.Errorf("SurvivalAtAge(%d) = %v, want %v", age, got, want)
		}
	}
	if got := report.Milestone(90); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("milestone 90 = %v, want 0.2", got)
	}
	if !math.IsNaN(report.Milestone(85)) {
		t.Error("expected NaN for an age that is not a milestone")
	}
}

func TestDepletionAnalyzer_SurvivalNonIncreasing(t *testing.T) {
	cfg := testConfig(300, 31)
	cfg.Strategy = FixedReal{Rate: 0.06}
	ens, err := NewMonteCarloEngine().Run(cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	report, err := NewDepletionAnalyzer().Analyze(ens)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for y := 1; y < len(report.SurvivalByYear); y++ {
		if report.SurvivalByYear[y] > report.SurvivalByYear[y-1] {
			t.Fatalf("survival rose from %v to %v in year %d", report.SurvivalByYear[y-1], report.SurvivalByYear[y], y)
		}
	}
	last := report.SurvivalByYear[len(report.SurvivalByYear)-1]
	if math.Abs(last-report.SurvivalRate) > 1e-12 {
		t.Errorf("final survival %v != survival rate %v", last, report.SurvivalRate)
	}
	if math.Abs(report.SurvivalRate-ens.Summary.SuccessRate) > 1e-12 {
		t.Errorf("survival rate %v != ensemble success rate %v", report.SurvivalRate, ens.Summary.SuccessRate)
	}
}

func TestDepletionAnalyzer_NoDepletion(t *testing.T) {
	report, err := NewDepletionAnalyzer().Analyze(syntheticEnsemble(5, -1, -1, -1))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.DepletionRate != 0 || report.SurvivalRate != 1 {
		t.Errorf("rates = %v/%v, want 0/1", report.DepletionRate, report.SurvivalRate)
	}
	sentinels := map[string]domain.DepletionYear{
		"median year":   report.MedianDepletionYear,
		"mean year":     report.MeanDepletionYear,
		"earliest year": report.EarliestDepletionYear,
		"p10 year":      report.DepletionYears.P10,
		"p90 age":       report.DepletionAges.P90,
		"var95 year":    report.VaR95Year,
		"var99 age":     report.VaR99Age,
		"median age":    report.MedianDepletionAge,
	}
	for name, v := range sentinels {
		if !v.IsNever() {
			t.Errorf("%s = %v, want never", name, v)
		}
	}
}

func TestDepletionAnalyzer_ZeroHorizon(t *testing.T) {
	report, err := NewDepletionAnalyzer().Analyze(syntheticEnsemble(0, -1, -1))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(report.SurvivalByYear) != 0 {
		t.Errorf("survival curve has %d points, want 0", len(report.SurvivalByYear))
	}
	if report.DepletionRate != 0 {
		t.Errorf("depletion rate = %v, want 0", report.DepletionRate)
	}
	if got := report.SurvivalAtAge(90); got != 1 {
		t.Errorf("SurvivalAtAge(90) = %v, want 1", got)
	}
}

func TestDepletionAnalyzer_EmptyEnsemble(t *testing.T) {
	_, err := NewDepletionAnalyzer().Analyze(&PathEnsemble{Config: DefaultSimulationConfig()})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewDepletionAnalyzer().Analyze(nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for nil ensemble, got %v", err)
	}
}
