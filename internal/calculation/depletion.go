package calculation

import (
	"math"

	"github.com/rpgo/qol-retirement/internal/domain"
)

// DefaultMilestoneAges are the ages reported in RiskReport.Milestones.
var DefaultMilestoneAges = []int{80, 90, 100}

// DepletionPercentiles are depletion times over the paths that depleted.
type DepletionPercentiles struct {
	P10 domain.DepletionYear `json:"p10"`
	P25 domain.DepletionYear `json:"p25"`
	P50 domain.DepletionYear `json:"p50"`
	P75 domain.DepletionYear `json:"p75"`
	P90 domain.DepletionYear `json:"p90"`
}

func (p DepletionPercentiles) toAges(startingAge int) DepletionPercentiles {
	return DepletionPercentiles{
		P10: p.P10.Age(startingAge),
		P25: p.P25.Age(startingAge),
		P50: p.P50.Age(startingAge),
		P75: p.P75.Age(startingAge),
		P90: p.P90.Age(startingAge),
	}
}

// MilestoneSurvival is the survival probability at a given age.
type MilestoneSurvival struct {
	Age      int     `json:"age"`
	Survival float64 `json:"survival"`
}

// RiskReport turns an ensemble into depletion and survival statistics.
// Every depletion-time field is domain.Never when no path depleted.
type RiskReport struct {
	StartingAge   int     `json:"starting_age"`
	HorizonYears  int     `json:"horizon_years"`
	NumPaths      int     `json:"num_paths"`
	DepletedPaths int     `json:"depleted_paths"`
	DepletionRate float64 `json:"depletion_rate"`
	SurvivalRate  float64 `json:"survival_rate"`

	// SurvivalByYear[y] is the share of paths whose depletion year is after y.
	SurvivalByYear []float64 `json:"survival_by_year"`
	SurvivalAges   []int     `json:"survival_ages"`

	DepletionYears DepletionPercentiles `json:"depletion_year_percentiles"`
	DepletionAges  DepletionPercentiles `json:"depletion_age_percentiles"`

	MeanDepletionYear     domain.DepletionYear `json:"mean_depletion_year"`
	MedianDepletionYear   domain.DepletionYear `json:"median_depletion_year"`
	EarliestDepletionYear domain.DepletionYear `json:"earliest_depletion_year"`
	DepletionStdDev       float64              `json:"depletion_std_dev"`
	MeanDepletionAge      domain.DepletionYear `json:"mean_depletion_age"`
	MedianDepletionAge    domain.DepletionYear `json:"median_depletion_age"`
	EarliestDepletionAge  domain.DepletionYear `json:"earliest_depletion_age"`

	// VaR95 is the 5th percentile depletion time (1-in-20 worst case), VaR99 the 1st.
	VaR95Year domain.DepletionYear `json:"var_95_year"`
	VaR99Year domain.DepletionYear `json:"var_99_year"`
	VaR95Age  domain.DepletionYear `json:"var_95_age"`
	VaR99Age  domain.DepletionYear `json:"var_99_age"`

	Milestones []MilestoneSurvival `json:"milestones"`
}

// DepletionAnalyzer computes RiskReports.
type DepletionAnalyzer struct {
	MilestoneAges []int
}

// NewDepletionAnalyzer returns an analyzer reporting the default milestones.
func NewDepletionAnalyzer() *DepletionAnalyzer {
	return &DepletionAnalyzer{MilestoneAges: DefaultMilestoneAges}
}

// Analyze computes the risk report for ens. An empty ensemble is a
// configuration error, never a zero depletion rate.
func (da *DepletionAnalyzer) Analyze(ens *PathEnsemble) (*RiskReport, error) {
	if ens == nil || len(ens.Paths) == 0 {
		return nil, configError("n_paths", "ensemble has no paths to analyze")
	}

	n := len(ens.Paths)
	horizon := ens.Config.HorizonYears
	startAge := ens.Config.StartingAge

	depletions := make([]domain.DepletionYear, n)
	var finite []float64
	for i, p := range ens.Paths {
		depletions[i] = p.DepletionYear()
		if !depletions[i].IsNever() {
			finite = append(finite, depletions[i].Float64())
		}
	}

	report := &RiskReport{
		StartingAge:    startAge,
		HorizonYears:   horizon,
		NumPaths:       n,
		DepletedPaths:  len(finite),
		DepletionRate:  float64(len(finite)) / float64(n),
		SurvivalByYear: make([]float64, horizon),
		SurvivalAges:   make([]int, horizon),
	}
	report.SurvivalRate = 1 - report.DepletionRate

	for y := 0; y < horizon; y++ {
		alive := 0
		for _, d := range depletions {
			if d > domain.DepletionYear(y) {
				alive++
			}
		}
		report.SurvivalByYear[y] = float64(alive) / float64(n)
		report.SurvivalAges[y] = startAge + y
	}

	if len(finite) == 0 {
		report.DepletionYears = DepletionPercentiles{
			P10: domain.Never, P25: domain.Never, P50: domain.Never, P75: domain.Never, P90: domain.Never,
		}
		report.MeanDepletionYear = domain.Never
		report.MedianDepletionYear = domain.Never
		report.EarliestDepletionYear = domain.Never
		report.VaR95Year = domain.Never
		report.VaR99Year = domain.Never
	} else {
		sorted := sortedCopy(finite)
		at := func(p float64) domain.DepletionYear { return domain.DepletionYear(percentile(sorted, p)) }
		report.DepletionYears = DepletionPercentiles{P10: at(10), P25: at(25), P50: at(50), P75: at(75), P90: at(90)}
		report.MeanDepletionYear = domain.DepletionYear(mean(sorted))
		report.MedianDepletionYear = at(50)
		report.EarliestDepletionYear = domain.DepletionYear(sorted[0])
		report.DepletionStdDev = stdDev(sorted)
		report.VaR95Year = at(5)
		report.VaR99Year = at(1)
	}

	report.DepletionAges = report.DepletionYears.toAges(startAge)
	report.MeanDepletionAge = report.MeanDepletionYear.Age(startAge)
	report.MedianDepletionAge = report.MedianDepletionYear.Age(startAge)
	report.EarliestDepletionAge = report.EarliestDepletionYear.Age(startAge)
	report.VaR95Age = report.VaR95Year.Age(startAge)
	report.VaR99Age = report.VaR99Year.Age(startAge)

	milestones := da.MilestoneAges
	if milestones == nil {
		milestones = DefaultMilestoneAges
	}
	report.Milestones = make([]MilestoneSurvival, len(milestones))
	for i, age := range milestones {
		report.Milestones[i] = MilestoneSurvival{Age: age, Survival: report.SurvivalAtAge(age)}
	}

	return report, nil
}

// SurvivalAtAge returns the survival probability at age. Before retirement it
// is 1; past the last simulated age it repeats the last value; in between it
// is the value at that simulated year. Survival is not interpolated.
func (r *RiskReport) SurvivalAtAge(age int) float64 {
	if age < r.StartingAge {
		return 1.0
	}
	if len(r.SurvivalByYear) == 0 {
		return 1.0
	}
	idx := age - r.StartingAge
	if idx >= len(r.SurvivalByYear) {
		return r.SurvivalByYear[len(r.SurvivalByYear)-1]
	}
	return r.SurvivalByYear[idx]
}

// Milestone returns the recorded survival for age, or NaN when age is not a milestone.
func (r *RiskReport) Milestone(age int) float64 {
	for _, m := range r.Milestones {
		if m.Age == age {
			return m.Survival
		}
	}
	return math.NaN()
}
