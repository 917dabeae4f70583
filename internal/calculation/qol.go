package calculation

import (
	"math"
	"math/rand/v2"
)

const (
	qolFactorFloor   = 0.5
	qolFactorCeiling = 1.5
)

// drawQOLFactor returns a multiplicative QOL perturbation N(1, vol) clamped to [0.5, 1.5].
func drawQOLFactor(r *rand.Rand, vol float64) float64 {
	f := normal(r, 1, vol)
	return math.Max(qolFactorFloor, math.Min(qolFactorCeiling, f))
}

// EnjoymentCurve weighs a dollar spent at a given age relative to a dollar spent at 65.
type EnjoymentCurve func(age int) float64

// DefaultEnjoymentCurve declines 2% a year from 65, 4% a year from 75,
// 3% a year from 85 and never drops below 0.2.
func DefaultEnjoymentCurve(age int) float64 {
	switch {
	case age < 65:
		return 1.0
	case age < 75:
		return 1.0 - float64(age-65)*0.02
	case age < 85:
		return 0.8 - float64(age-75)*0.04
	default:
		return math.Max(0.4-float64(age-85)*0.03, 0.2)
	}
}

// Utility is the enjoyment-weighted real spending of a path: each year's
// withdrawal is deflated by the cumulative inflation in force when it was
// taken and weighted by curve(age).
func (p PathResult) Utility(curve EnjoymentCurve) float64 {
	total := 0.0
	for _, y := range p.Years {
		if y.Withdrawal == 0 || y.InflationFactor <= 0 {
			continue
		}
		total += y.Withdrawal / y.InflationFactor * curve(y.Age)
	}
	return total
}
