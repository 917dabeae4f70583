package output

import (
	"math"
	"testing"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/shopspring/decimal"
)

func buildSimulationReport(t *testing.T) *Report {
	t.Helper()
	cfg := calculation.DefaultSimulationConfig()
	cfg.NumPaths = 40
	cfg.HorizonYears = 35
	cfg.Seed = 1965
	ens, err := calculation.NewMonteCarloEngine().Run(cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	risk, err := calculation.NewDepletionAnalyzer().Analyze(ens)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return &Report{Scenario: "Fixture", Simulation: NewSimulationReport(ens, risk)}
}

func buildTestComparison() *Report {
	summary := func(label, kind string, success float64, utility int64) domain.StrategySummary {
		return domain.StrategySummary{
			Label:            label,
			Kind:             kind,
			SuccessRate:      success,
			DepletionRate:    1 - success,
			SurvivalAt90:     success,
			MedianDepletion:  domain.Never,
			MeanFinalValue:   decimal.NewFromInt(900000),
			MedianFinalValue: decimal.NewFromInt(850000),
			FirstYearMean:    decimal.NewFromInt(40000),
			Enjoyment: domain.EnjoymentMetrics{
				MeanUtility:            decimal.NewFromInt(utility),
				EarlyConcentration:     0.4,
				ActiveConcentration:    0.6,
				CostPerEnjoymentDollar: domain.SafeRatio(1_000_000, float64(utility)),
			},
		}
	}
	return &Report{
		Scenario: "Fixture",
		Comparison: &domain.StrategyComparison{
			Seed:         42,
			NumPaths:     1000,
			HorizonYears: 30,
			StartingAge:  65,
			Strategies: []domain.StrategySummary{
				summary("Trinity 4%", "fixed_real", 0.92, 800000),
				summary("Hauenstein QOL", "qol_phased", 0.89, 950000),
			},
			TradeOffs: []domain.TradeOff{{
				Strategy:              "Hauenstein QOL",
				Baseline:              "Trinity 4%",
				EnjoymentPremiumPct:   18.75,
				RiskPenaltyPct:        3,
				RiskAdjustedEnjoyment: 6.25,
				EarlyYearsAdvantage:   domain.Unbounded,
				FinalValueDifference:  decimal.NewFromInt(-50000),
			}},
			MostEnjoyment:  "Hauenstein QOL",
			SafestStrategy: "Trinity 4%",
		},
	}
}

func buildTestSweep(withGrid bool) *Report {
	point := func(idx int, rate, ret float64, status calculation.CombinationStatus) calculation.SweepPoint {
		p := calculation.SweepPoint{
			Index:      idx,
			Parameters: []calculation.ParameterValue{{Name: "withdrawal_rate", Value: rate}, {Name: "return_mean", Value: ret}},
			Status:     status,
		}
		if status == calculation.StatusOK {
			p.Summary = &calculation.RiskSummary{
				DepletionRate:    rate * 2,
				SurvivalRate:     1 - rate*2,
				FinalValueMean:   decimal.NewFromFloat(1e6 * (1 - rate)).Round(2),
				FinalValueMedian: decimal.NewFromFloat(9e5 * (1 - rate)).Round(2),
			}
		} else {
			p.Reason = "simulation panicked"
		}
		return p
	}
	res := &calculation.SweepResult{
		Mode:              calculation.SweepTwoParameters,
		ParameterNames:    []string{"withdrawal_rate", "return_mean"},
		Seed:              7,
		TotalCombinations: 4,
		Evaluated:         4,
		Failed:            1,
		Points: []calculation.SweepPoint{
			point(0, 0.03, 0.01, calculation.StatusOK),
			point(1, 0.03, 0.02, calculation.StatusOK),
			point(2, 0.05, 0.01, calculation.StatusOK),
			point(3, 0.05, 0.02, calculation.StatusFailed),
		},
		Optimal: []calculation.OptimalPoint{{
			Objective:  calculation.ObjectiveDepletionRate,
			Index:      0,
			Parameters: []calculation.ParameterValue{{Name: "withdrawal_rate", Value: 0.03}, {Name: "return_mean", Value: 0.01}},
			Value:      0.06,
		}},
	}
	if withGrid {
		nan := domain.Ratio(math.NaN())
		res.Grid = &calculation.SweepGrid{
			Values1:           []float64{0.03, 0.05},
			Values2:           []float64{0.01, 0.02},
			DepletionRates:    [][]domain.Ratio{{0.06, 0.10}, {0.06, nan}},
			FinalValueMeans:   [][]domain.Ratio{{970000, 950000}, {970000, nan}},
			FinalValueMedians: [][]domain.Ratio{{873000, 855000}, {873000, nan}},
			SurvivalRates:     [][]domain.Ratio{{0.94, 0.90}, {0.94, nan}},
		}
	}
	return &Report{Scenario: "Fixture", Sweep: res}
}
