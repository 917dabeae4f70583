package output

import (
	"github.com/rpgo/qol-retirement/internal/domain"
)

// SuccessTolerance is how far below the safest strategy's success rate a
// strategy may fall and still be recommended.
const SuccessTolerance = 0.05

// Recommendation encapsulates the selection result of the best strategy.
type Recommendation struct {
	Strategy    string
	SuccessRate float64
	MeanUtility float64
	// SuccessGap is the safest success rate minus the recommended one.
	SuccessGap float64
}

// AnalyzeComparison picks the strategy with the most enjoyment among those
// whose success rate is within SuccessTolerance of the safest. Ties keep the
// earlier strategy.
func AnalyzeComparison(cmp *domain.StrategyComparison) Recommendation {
	if cmp == nil || len(cmp.Strategies) == 0 {
		return Recommendation{}
	}
	safest := cmp.Strategies[0].SuccessRate
	for _, s := range cmp.Strategies[1:] {
		safest = max(safest, s.SuccessRate)
	}

	best := -1
	for i, s := range cmp.Strategies {
		if s.SuccessRate < safest-SuccessTolerance {
			continue
		}
		if best < 0 || s.Enjoyment.MeanUtility.GreaterThan(cmp.Strategies[best].Enjoyment.MeanUtility) {
			best = i
		}
	}
	s := cmp.Strategies[best]
	return Recommendation{
		Strategy:    s.Label,
		SuccessRate: s.SuccessRate,
		MeanUtility: s.Enjoyment.MeanUtility.InexactFloat64(),
		SuccessGap:  safest - s.SuccessRate,
	}
}
