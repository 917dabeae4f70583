package calculation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SweepMode names the shape of a sweep.
type SweepMode string

const (
	SweepOneParameter  SweepMode = "one_parameter"
	SweepTwoParameters SweepMode = "two_parameters"
	SweepComprehensive SweepMode = "comprehensive"
)

// DefaultMaxCombinations caps comprehensive sweeps when the caller gives no cap.
const DefaultMaxCombinations = 1000

// subsampleStream is the stream index used to draw comprehensive subsamples.
const subsampleStream = 1 << 40

// Objective is a sweep optimization target.
type Objective string

const (
	ObjectiveDepletionRate    Objective = "depletion_rate"
	ObjectiveFinalValueMean   Objective = "final_value_mean"
	ObjectiveFinalValueMedian Objective = "final_value_median"
	ObjectiveSurvivalRate     Objective = "survival_rate"
)

// DefaultObjectives are reported by comprehensive sweeps unless the caller picks others.
var DefaultObjectives = []Objective{ObjectiveDepletionRate, ObjectiveFinalValueMean, ObjectiveSurvivalRate}

// Minimize reports whether lower values of o are better.
func (o Objective) Minimize() bool { return o == ObjectiveDepletionRate }

// ParseObjective validates an objective name. "success_rate" is accepted for survival_rate.
func ParseObjective(s string) (Objective, error) {
	switch Objective(s) {
	case ObjectiveDepletionRate, ObjectiveFinalValueMean, ObjectiveFinalValueMedian, ObjectiveSurvivalRate:
		return Objective(s), nil
	case "success_rate":
		return ObjectiveSurvivalRate, nil
	}
	return "", configError("sweep.objective", "unknown objective %q", s)
}

// CombinationStatus is the outcome of one sweep combination.
type CombinationStatus string

const (
	StatusOK      CombinationStatus = "ok"
	StatusFailed  CombinationStatus = "failed"
	StatusSkipped CombinationStatus = "skipped"
)

// RiskSummary is the per-combination digest kept by a sweep.
type RiskSummary struct {
	DepletionRate    float64         `json:"depletion_rate"`
	SurvivalRate     float64         `json:"survival_rate"`
	FinalValueMean   decimal.Decimal `json:"final_value_mean"`
	FinalValueMedian decimal.Decimal `json:"final_value_median"`
}

// SummarizeRisk condenses an ensemble and its report.
func SummarizeRisk(ens *PathEnsemble, report *RiskReport) RiskSummary {
	return RiskSummary{
		DepletionRate:    report.DepletionRate,
		SurvivalRate:     report.SurvivalRate,
		FinalValueMean:   ens.Summary.FinalValueMean,
		FinalValueMedian: ens.Summary.FinalValueMedian,
	}
}

// Metric returns the summary value tracked by o.
func (s RiskSummary) Metric(o Objective) float64 {
	switch o {
	case ObjectiveDepletionRate:
		return s.DepletionRate
	case ObjectiveFinalValueMean:
		return s.FinalValueMean.InexactFloat64()
	case ObjectiveFinalValueMedian:
		return s.FinalValueMedian.InexactFloat64()
	case ObjectiveSurvivalRate:
		return s.SurvivalRate
	}
	return math.NaN()
}

// SweepPoint is one evaluated parameter combination.
type SweepPoint struct {
	Index      int               `json:"index"`
	Parameters []ParameterValue  `json:"parameters"`
	Status     CombinationStatus `json:"status"`
	Summary    *RiskSummary      `json:"summary,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// OK reports whether the point has a summary.
func (p SweepPoint) OK() bool { return p.Status == StatusOK && p.Summary != nil }

// OptimalPoint is the best combination found for one objective.
type OptimalPoint struct {
	Objective  Objective        `json:"objective"`
	Index      int              `json:"index"`
	Parameters []ParameterValue `json:"parameters"`
	Value      float64          `json:"value"`
}

// SweepSeries holds 1-D metrics aligned with Values. Failed points are NaN.
type SweepSeries struct {
	Values            []float64              `json:"values"`
	DepletionRates    []domain.Ratio         `json:"depletion_rates"`
	FinalValueMeans   []domain.Ratio         `json:"final_value_means"`
	FinalValueMedians []domain.Ratio         `json:"final_value_medians"`
	SurvivalRates     []domain.Ratio         `json:"survival_rates"`
	MetricValues      []domain.Ratio         `json:"metric_values"`
	Stats             map[string]SeriesStats `json:"stats,omitempty"`
}

// SweepGrid holds 2-D metrics indexed [param2 index][param1 index]. Failed cells are NaN.
type SweepGrid struct {
	Values1           []float64        `json:"values1"`
	Values2           []float64        `json:"values2"`
	DepletionRates    [][]domain.Ratio `json:"depletion_rates"`
	FinalValueMeans   [][]domain.Ratio `json:"final_value_means"`
	FinalValueMedians [][]domain.Ratio `json:"final_value_medians"`
	SurvivalRates     [][]domain.Ratio `json:"survival_rates"`
}

// SweepResult is the outcome of a sensitivity sweep.
type SweepResult struct {
	Mode              SweepMode      `json:"mode"`
	ParameterNames    []string       `json:"parameter_names"`
	Objective         Objective      `json:"objective,omitempty"`
	Seed              int64          `json:"seed"`
	TotalCombinations int            `json:"total_combinations"`
	Evaluated         int            `json:"evaluated"`
	Failed            int            `json:"failed"`
	Skipped           int            `json:"skipped"`
	Cancelled         bool           `json:"cancelled"`
	Points            []SweepPoint   `json:"points"`
	Series            *SweepSeries   `json:"series,omitempty"`
	Grid              *SweepGrid     `json:"grid,omitempty"`
	Optimal           []OptimalPoint `json:"optimal"`
}

// OptimalFor returns the optimum recorded for o.
func (r *SweepResult) OptimalFor(o Objective) (OptimalPoint, bool) {
	for _, opt := range r.Optimal {
		if opt.Objective == o {
			return opt, true
		}
	}
	return OptimalPoint{}, false
}

// SensitivitySweeper re-runs the engine and analyzer over parameter grids.
type SensitivitySweeper struct {
	Engine   *MonteCarloEngine
	Analyzer *DepletionAnalyzer
	// Workers bounds concurrently evaluated combinations.
	Workers  int
	Logger   Logger
	Recorder Recorder
}

// NewSensitivitySweeper creates a sweeper around engine.
func NewSensitivitySweeper(engine *MonteCarloEngine) *SensitivitySweeper {
	if engine == nil {
		engine = NewMonteCarloEngine()
	}
	return &SensitivitySweeper{
		Engine:   engine,
		Analyzer: NewDepletionAnalyzer(),
		Workers:  2,
		Logger:   NopLogger{},
		Recorder: NopRecorder{},
	}
}

// SweepOne varies a single parameter over values.
func (s *SensitivitySweeper) SweepOne(ctx context.Context, base SimulationConfig, name string, values []float64, objective Objective) (*SweepResult, error) {
	ranges := []ParameterRange{{Name: name, Values: values}}
	base, err := s.prepare(base, ranges, []Objective{objective})
	if err != nil {
		return nil, err
	}

	combos := make([][]ParameterValue, len(values))
	for i, v := range values {
		combos[i] = []ParameterValue{{Name: name, Value: v}}
	}

	result := s.newResult(SweepOneParameter, base, ranges, len(combos))
	result.Objective = objective
	runErr := s.evaluateAll(ctx, base, combos, result)

	series := &SweepSeries{
		Values:            append([]float64(nil), values...),
		DepletionRates:    make([]domain.Ratio, len(values)),
		FinalValueMeans:   make([]domain.Ratio, len(values)),
		FinalValueMedians: make([]domain.Ratio, len(values)),
		SurvivalRates:     make([]domain.Ratio, len(values)),
		MetricValues:      make([]domain.Ratio, len(values)),
		Stats:             map[string]SeriesStats{},
	}
	var depl, means, medians, surv []float64
	for i, p := range result.Points {
		if !p.OK() {
			nan := domain.Ratio(math.NaN())
			series.DepletionRates[i], series.FinalValueMeans[i], series.FinalValueMedians[i] = nan, nan, nan
			series.SurvivalRates[i], series.MetricValues[i] = nan, nan
			continue
		}
		sum := p.Summary
		series.DepletionRates[i] = domain.Ratio(sum.DepletionRate)
		series.FinalValueMeans[i] = domain.Ratio(sum.Metric(ObjectiveFinalValueMean))
		series.FinalValueMedians[i] = domain.Ratio(sum.Metric(ObjectiveFinalValueMedian))
		series.SurvivalRates[i] = domain.Ratio(sum.SurvivalRate)
		series.MetricValues[i] = domain.Ratio(sum.Metric(objective))
		depl = append(depl, sum.DepletionRate)
		means = append(means, sum.Metric(ObjectiveFinalValueMean))
		medians = append(medians, sum.Metric(ObjectiveFinalValueMedian))
		surv = append(surv, sum.SurvivalRate)
	}
	if len(depl) > 0 {
		series.Stats[string(ObjectiveDepletionRate)] = seriesStats(depl)
		series.Stats[string(ObjectiveFinalValueMean)] = seriesStats(means)
		series.Stats[string(ObjectiveFinalValueMedian)] = seriesStats(medians)
		series.Stats[string(ObjectiveSurvivalRate)] = seriesStats(surv)
	}
	result.Series = series
	result.Optimal = findOptima(result.Points, []Objective{objective})

	return result, runErr
}

// SweepTwo varies two parameters over their full grid. Combinations are
// evaluated with name1 in the outer loop; grids are indexed [j][i] where i
// indexes values1 and j indexes values2.
func (s *SensitivitySweeper) SweepTwo(ctx context.Context, base SimulationConfig, name1 string, values1 []float64, name2 string, values2 []float64, objective Objective) (*SweepResult, error) {
	ranges := []ParameterRange{{Name: name1, Values: values1}, {Name: name2, Values: values2}}
	base, err := s.prepare(base, ranges, []Objective{objective})
	if err != nil {
		return nil, err
	}

	combos := make([][]ParameterValue, 0, len(values1)*len(values2))
	for _, v1 := range values1 {
		for _, v2 := range values2 {
			combos = append(combos, []ParameterValue{{Name: name1, Value: v1}, {Name: name2, Value: v2}})
		}
	}

	result := s.newResult(SweepTwoParameters, base, ranges, len(combos))
	result.Objective = objective
	runErr := s.evaluateAll(ctx, base, combos, result)

	grid := &SweepGrid{
		Values1:           append([]float64(nil), values1...),
		Values2:           append([]float64(nil), values2...),
		DepletionRates:    newRatioMatrix(len(values2), len(values1)),
		FinalValueMeans:   newRatioMatrix(len(values2), len(values1)),
		FinalValueMedians: newRatioMatrix(len(values2), len(values1)),
		SurvivalRates:     newRatioMatrix(len(values2), len(values1)),
	}
	for i := range values1 {
		for j := range values2 {
			p := result.Points[i*len(values2)+j]
			if !p.OK() {
				continue
			}
			grid.DepletionRates[j][i] = domain.Ratio(p.Summary.DepletionRate)
			grid.FinalValueMeans[j][i] = domain.Ratio(p.Summary.Metric(ObjectiveFinalValueMean))
			grid.FinalValueMedians[j][i] = domain.Ratio(p.Summary.Metric(ObjectiveFinalValueMedian))
			grid.SurvivalRates[j][i] = domain.Ratio(p.Summary.SurvivalRate)
		}
	}
	result.Grid = grid
	result.Optimal = findOptima(result.Points, []Objective{objective})

	return result, runErr
}

// SweepMany evaluates the Cartesian product of ranges (last range varying
// fastest). When the product exceeds maxCombinations a uniform subsample of
// that size is drawn from the resolved seed and evaluated in product order.
func (s *SensitivitySweeper) SweepMany(ctx context.Context, base SimulationConfig, ranges []ParameterRange, maxCombinations int, objectives []Objective) (*SweepResult, error) {
	if len(objectives) == 0 {
		objectives = DefaultObjectives
	}
	if len(ranges) == 0 {
		return nil, configError("sweep.parameters", "no parameter ranges defined")
	}
	base, err := s.prepare(base, ranges, objectives)
	if err != nil {
		return nil, err
	}
	if maxCombinations <= 0 {
		maxCombinations = DefaultMaxCombinations
	}

	total := 1
	for _, r := range ranges {
		if total > math.MaxInt32/len(r.Values) {
			return nil, configError("sweep.parameters", "parameter grid is too large to enumerate")
		}
		total *= len(r.Values)
	}

	indices := make([]int, 0, min(total, maxCombinations))
	if total <= maxCombinations {
		for i := 0; i < total; i++ {
			indices = append(indices, i)
		}
	} else {
		indices = sampleIndices(NewStreamRand(base.Seed, subsampleStream).IntN, total, maxCombinations)
		s.logger().Infof("sweep: sampling %d of %d combinations", maxCombinations, total)
	}

	combos := make([][]ParameterValue, len(indices))
	for k, idx := range indices {
		combos[k] = decodeCombination(ranges, idx)
	}

	result := s.newResult(SweepComprehensive, base, ranges, total)
	runErr := s.evaluateAll(ctx, base, combos, result)
	result.Optimal = findOptima(result.Points, objectives)

	return result, runErr
}

// prepare fails fast on unusable inputs and resolves the shared seed.
func (s *SensitivitySweeper) prepare(base SimulationConfig, ranges []ParameterRange, objectives []Objective) (SimulationConfig, error) {
	if err := base.Validate(); err != nil {
		return base, err
	}
	seen := make(map[string]bool, len(ranges))
	for _, r := range ranges {
		if err := checkParameter(base, r.Name); err != nil {
			return base, err
		}
		if seen[r.Name] {
			return base, configError("sweep.parameters", "parameter %q listed twice", r.Name)
		}
		seen[r.Name] = true
		if len(r.Values) == 0 {
			return base, configError("sweep.parameters", "parameter %q has no values", r.Name)
		}
	}
	for _, o := range objectives {
		if _, err := ParseObjective(string(o)); err != nil {
			return base, err
		}
	}
	base.Seed = resolveSeed(base.Seed)
	return base, nil
}

func (s *SensitivitySweeper) newResult(mode SweepMode, base SimulationConfig, ranges []ParameterRange, total int) *SweepResult {
	names := make([]string, len(ranges))
	for i, r := range ranges {
		names[i] = r.Name
	}
	return &SweepResult{
		Mode:              mode,
		ParameterNames:    names,
		Seed:              base.Seed,
		TotalCombinations: total,
	}
}

// evaluateAll runs every combination through the engine with bounded
// concurrency. Each result lands in its own slot. Cancellation is checked
// before a combination starts; combinations never started stay skipped.
func (s *SensitivitySweeper) evaluateAll(ctx context.Context, base SimulationConfig, combos [][]ParameterValue, result *SweepResult) error {
	points := make([]SweepPoint, len(combos))
	for i, combo := range combos {
		points[i] = SweepPoint{Index: i, Parameters: combo, Status: StatusSkipped, Reason: "cancelled before evaluation"}
	}

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := s.logger()
	step := max(1, len(combos)/20)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, combo := range combos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			points[i] = s.evaluate(base, i, combo)
			s.recorder().ObserveCombination(string(points[i].Status))
			if n := done.Add(1); n%int64(step) == 0 {
				logger.Infof("sweep progress: %d/%d combinations", n, len(combos))
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Points = points
	for _, p := range points {
		switch p.Status {
		case StatusOK:
			result.Evaluated++
		case StatusFailed:
			result.Failed++
		case StatusSkipped:
			result.Skipped++
			s.recorder().ObserveCombination(string(StatusSkipped))
		}
	}

	// A cancel that lands after the last combination started changes nothing.
	if result.Skipped > 0 {
		result.Cancelled = true
		logger.Warnf("sweep cancelled after %d of %d combinations", result.Evaluated+result.Failed, len(combos))
		return ctx.Err()
	}
	return nil
}

// evaluate runs one combination. Any failure, including a panic, is
// recorded on the point instead of aborting the sweep.
func (s *SensitivitySweeper) evaluate(base SimulationConfig, index int, combo []ParameterValue) (point SweepPoint) {
	point = SweepPoint{Index: index, Parameters: combo}
	fail := func(reason string) SweepPoint {
		point.Status = StatusFailed
		point.Summary = nil
		point.Reason = reason
		s.logger().Warnf("sweep combination %d %v failed: %s", index, combo, reason)
		return point
	}
	defer func() {
		if rec := recover(); rec != nil {
			point = fail(fmt.Sprintf("panic: %v", rec))
		}
	}()

	cfg := base
	for _, pv := range combo {
		var err error
		if cfg, err = ApplyParameter(cfg, pv.Name, pv.Value); err != nil {
			return fail(err.Error())
		}
	}

	ens, err := s.Engine.Run(cfg)
	if err != nil {
		return fail(err.Error())
	}
	analyzer := s.Analyzer
	if analyzer == nil {
		analyzer = NewDepletionAnalyzer()
	}
	report, err := analyzer.Analyze(ens)
	if err != nil {
		return fail(err.Error())
	}

	summary := SummarizeRisk(ens, report)
	point.Status = StatusOK
	point.Summary = &summary
	tracef(s.logger(), "sweep combination %d %v: depletion %.4f, final mean %s", index, combo, summary.DepletionRate, summary.FinalValueMean.StringFixed(0))
	return point
}

func (s *SensitivitySweeper) logger() Logger {
	if s.Logger == nil {
		return NopLogger{}
	}
	return s.Logger
}

func (s *SensitivitySweeper) recorder() Recorder {
	if s.Recorder == nil {
		return NopRecorder{}
	}
	return s.Recorder
}

// findOptima scans points in iteration order. A later point replaces the
// incumbent only when it is better by more than a relative 1e-12, so ties
// go to the first point encountered.
func findOptima(points []SweepPoint, objectives []Objective) []OptimalPoint {
	optima := make([]OptimalPoint, 0, len(objectives))
	for _, o := range objectives {
		best := -1
		bestValue := 0.0
		for i, p := range points {
			if !p.OK() {
				continue
			}
			v := p.Summary.Metric(o)
			if math.IsNaN(v) {
				continue
			}
			if best < 0 || improves(v, bestValue, o.Minimize()) {
				best, bestValue = i, v
			}
		}
		if best < 0 {
			continue
		}
		optima = append(optima, OptimalPoint{
			Objective:  o,
			Index:      points[best].Index,
			Parameters: points[best].Parameters,
			Value:      bestValue,
		})
	}
	return optima
}

func improves(candidate, incumbent float64, minimize bool) bool {
	tol := 1e-12 * math.Max(1, math.Abs(incumbent))
	if minimize {
		return candidate < incumbent-tol
	}
	return candidate > incumbent+tol
}

// sampleIndices draws k distinct indices from [0, n) with Floyd's algorithm
// and returns them ascending.
func sampleIndices(intN func(int) int, n, k int) []int {
	selected := make(map[int]struct{}, k)
	for j := n - k; j < n; j++ {
		t := intN(j + 1)
		if _, ok := selected[t]; ok {
			selected[j] = struct{}{}
		} else {
			selected[t] = struct{}{}
		}
	}
	out := make([]int, 0, k)
	for idx := range selected {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// decodeCombination maps a product index onto parameter values, last range fastest.
func decodeCombination(ranges []ParameterRange, idx int) []ParameterValue {
	combo := make([]ParameterValue, len(ranges))
	for p := len(ranges) - 1; p >= 0; p-- {
		n := len(ranges[p].Values)
		combo[p] = ParameterValue{Name: ranges[p].Name, Value: ranges[p].Values[idx%n]}
		idx /= n
	}
	return combo
}

func newRatioMatrix(rows, cols int) [][]domain.Ratio {
	m := make([][]domain.Ratio, rows)
	for r := range m {
		m[r] = make([]domain.Ratio, cols)
		for c := range m[r] {
			m[r][c] = domain.Ratio(math.NaN())
		}
	}
	return m
}
