package calculation

import (
	"math"

	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	earlyYears  = 10
	activeYears = 15
)

// NamedStrategy is one entry of a strategy comparison.
type NamedStrategy struct {
	Label    string
	Strategy WithdrawalStrategy
	// Baseline marks the strategy QOL strategies are measured against. When
	// no entry is marked, the first non-QOL strategy is used.
	Baseline bool
}

// CompareStrategies runs every strategy on the same resolved seed. Path i
// sees the same market and inflation draws under every strategy; QOL noise
// has its own stream and does not shift them.
func (ce *CalculationEngine) CompareStrategies(cfg SimulationConfig, strategies []NamedStrategy) (*domain.StrategyComparison, error) {
	if len(strategies) == 0 {
		return nil, configError("comparison.strategies", "at least one strategy is required")
	}
	seen := make(map[string]bool, len(strategies))
	for i, s := range strategies {
		if s.Label == "" {
			return nil, configError("comparison.strategies", "strategy %d has no label", i)
		}
		if seen[s.Label] {
			return nil, configError("comparison.strategies", "duplicate label %q", s.Label)
		}
		seen[s.Label] = true
	}

	cfg.Seed = resolveSeed(cfg.Seed)
	curve := ce.enjoymentCurve()

	comparison := &domain.StrategyComparison{
		Seed:         cfg.Seed,
		NumPaths:     cfg.NumPaths,
		HorizonYears: cfg.HorizonYears,
		StartingAge:  cfg.StartingAge,
		Strategies:   make([]domain.StrategySummary, 0, len(strategies)),
	}
	utilities := make([]float64, len(strategies))
	earlyIncome := make([]float64, len(strategies))

	for i, s := range strategies {
		run := cfg
		run.Strategy = s.Strategy
		ens, err := ce.RunSimulation(run)
		if err != nil {
			return nil, err
		}
		report, err := ce.AnalyzeDepletion(ens)
		if err != nil {
			return nil, err
		}
		summary, utility, early := summarizeStrategy(s, ens, report, curve)
		utilities[i] = utility
		earlyIncome[i] = early
		comparison.Strategies = append(comparison.Strategies, summary)
		ce.Logger.Debugf("compare: %s success %.3f utility %.0f", s.Label, summary.SuccessRate, utility)
	}

	// Best by enjoyment and by safety; the first strategy wins ties.
	var bestUtility decimal.Decimal
	var bestSuccess float64
	for i, summary := range comparison.Strategies {
		if i == 0 || summary.Enjoyment.MeanUtility.GreaterThan(bestUtility) {
			bestUtility = summary.Enjoyment.MeanUtility
			comparison.MostEnjoyment = summary.Label
		}
		if i == 0 || summary.SuccessRate > bestSuccess {
			bestSuccess = summary.SuccessRate
			comparison.SafestStrategy = summary.Label
		}
	}

	base := baselineIndex(strategies)
	if base < 0 {
		return comparison, nil
	}
	baseSummary := comparison.Strategies[base]
	for i, s := range strategies {
		if i == base || !s.Strategy.UsesQOL() {
			continue
		}
		summary := comparison.Strategies[i]
		penalty := (baseSummary.SuccessRate - summary.SuccessRate) * 100
		premium := percentChange(utilities[i], utilities[base])
		comparison.TradeOffs = append(comparison.TradeOffs, domain.TradeOff{
			Strategy:              s.Label,
			Baseline:              baseSummary.Label,
			EnjoymentPremiumPct:   premium,
			RiskPenaltyPct:        penalty,
			RiskAdjustedEnjoyment: domain.SafeRatio(premium.Float64(), penalty),
			EarlyYearsAdvantage:   percentChange(earlyIncome[i], earlyIncome[base]),
			FinalValueDifference:  summary.MeanFinalValue.Sub(baseSummary.MeanFinalValue),
		})
	}

	return comparison, nil
}

func baselineIndex(strategies []NamedStrategy) int {
	for i, s := range strategies {
		if s.Baseline {
			return i
		}
	}
	for i, s := range strategies {
		if !s.Strategy.UsesQOL() {
			return i
		}
	}
	return -1
}

// summarizeStrategy also returns the raw mean utility and mean early-years
// income so trade-offs are computed before rounding.
func summarizeStrategy(s NamedStrategy, ens *PathEnsemble, report *RiskReport, curve EnjoymentCurve) (domain.StrategySummary, float64, float64) {
	n := float64(len(ens.Paths))
	var utility, total, early, active float64
	for _, p := range ens.Paths {
		utility += p.Utility(curve)
		for _, y := range p.Years {
			total += y.Withdrawal
			if y.Year < earlyYears {
				early += y.Withdrawal
			}
			if y.Year < activeYears {
				active += y.Withdrawal
			}
		}
	}
	utility /= n
	total /= n
	early /= n
	active /= n

	enjoyment := domain.EnjoymentMetrics{
		MeanUtility:            money(utility),
		MeanTotalIncome:        money(total),
		EarlyYearsIncome:       money(early),
		ActiveYearsIncome:      money(active),
		EarlyConcentration:     share(early, total),
		ActiveConcentration:    share(active, total),
		CostPerEnjoymentDollar: domain.SafeRatio(ens.Config.StartingValue, utility),
	}

	pct := ens.Summary.FinalValuePercentiles
	return domain.StrategySummary{
		Label:             s.Label,
		Kind:              string(s.Strategy.Kind()),
		SuccessRate:       ens.Summary.SuccessRate,
		DepletionRate:     report.DepletionRate,
		SurvivalAt90:      report.SurvivalAtAge(90),
		MedianDepletion:   report.MedianDepletionAge,
		MeanFinalValue:    ens.Summary.FinalValueMean,
		MedianFinalValue:  ens.Summary.FinalValueMedian,
		P10FinalValue:     pct.P10,
		P90FinalValue:     pct.P90,
		MeanTotalWithdraw: ens.Summary.TotalWithdrawnMean,
		FirstYearMean:     ens.Summary.FirstYearWithdrawal,
		Enjoyment:         enjoyment,
	}, utility, early
}

// percentChange is (value/base - 1) * 100, unbounded when base <= 0.
func percentChange(value, base float64) domain.Ratio {
	if base <= 0 {
		return domain.Unbounded
	}
	return domain.Ratio((value/base - 1) * 100)
}

// share is part/whole, undefined when nothing was withdrawn.
func share(part, whole float64) domain.Ratio {
	if whole <= 0 {
		return domain.Ratio(math.NaN())
	}
	return domain.Ratio(part / whole)
}
