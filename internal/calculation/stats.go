package calculation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// PercentileRanges holds the reporting percentiles of a dollar distribution.
type PercentileRanges struct {
	P5  decimal.Decimal `json:"p5"`
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
	P95 decimal.Decimal `json:"p95"`
}

// SeriesStats summarizes a metric series.
type SeriesStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// sortedCopy returns an ascending copy of values.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// percentile returns the p-th percentile (0..100) of ascending values using
// linear interpolation between closest ranks. It returns NaN for no data.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func percentileRanges(values []float64) PercentileRanges {
	s := sortedCopy(values)
	return PercentileRanges{
		P5:  money(percentile(s, 5)),
		P10: money(percentile(s, 10)),
		P25: money(percentile(s, 25)),
		P50: money(percentile(s, 50)),
		P75: money(percentile(s, 75)),
		P90: money(percentile(s, 90)),
		P95: money(percentile(s, 95)),
	}
}

// money converts an engine amount to cents. Undefined values become zero.
func money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

func median(values []float64) float64 {
	return percentile(sortedCopy(values), 50)
}

func seriesStats(values []float64) SeriesStats {
	if len(values) == 0 {
		nan := math.NaN()
		return SeriesStats{Min: nan, Max: nan, Mean: nan, Median: nan, StdDev: nan}
	}
	s := sortedCopy(values)
	return SeriesStats{
		Min:    s[0],
		Max:    s[len(s)-1],
		Mean:   mean(s),
		Median: percentile(s, 50),
		StdDev: stdDev(s),
	}
}
