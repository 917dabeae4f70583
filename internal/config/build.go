package config

import (
	"fmt"
	"strings"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
)

const (
	presetTwoAsset  = "two_asset"
	presetFourAsset = "four_asset"
)

// SweepPlan is a validated sweep section ready for the sweeper.
type SweepPlan struct {
	Mode            calculation.SweepMode
	Ranges          []calculation.ParameterRange
	Objectives      []calculation.Objective
	MaxCombinations int
	Workers         int
}

// BuildSimulationConfig converts a scenario file into an engine configuration,
// filling every unset field from calculation.DefaultSimulationConfig.
func BuildSimulationConfig(scenario *domain.ScenarioFile) (calculation.SimulationConfig, error) {
	cfg := calculation.DefaultSimulationConfig()
	sim := scenario.Simulation

	cfg.StartingValue = sim.StartingValue.InexactFloat64()
	if sim.StartingAge != 0 {
		cfg.StartingAge = sim.StartingAge
	}
	if sim.HorizonYears != nil {
		cfg.HorizonYears = *sim.HorizonYears
	}
	if sim.NumPaths != nil {
		cfg.NumPaths = *sim.NumPaths
	}
	cfg.Seed = sim.Seed
	if sim.QOLVariability != nil {
		cfg.QOLStochastic = *sim.QOLVariability
	}
	if sim.QOLNoiseVolatility != nil {
		cfg.QOLNoiseVolatility = *sim.QOLNoiseVolatility
	}
	if sim.DepletionThreshold != nil {
		cfg.DepletionThreshold = *sim.DepletionThreshold
	}

	strategy, err := BuildStrategy(scenario.Strategy)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strategy

	market, err := BuildMarket(scenario.Market)
	if err != nil {
		return cfg, err
	}
	cfg.Market = market

	glide, err := BuildGlidePath(scenario.GlidePath)
	if err != nil {
		return cfg, err
	}
	cfg.GlidePath = glide

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildStrategy resolves a strategy section. An empty kind selects qol_phased.
func BuildStrategy(s domain.StrategySettings) (calculation.WithdrawalStrategy, error) {
	kind := calculation.KindQOLPhased
	if s.Kind != "" {
		k, err := calculation.ParseStrategyKind(s.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	rate := 0.04
	if s.Rate != nil {
		rate = *s.Rate
	}

	var strategy calculation.WithdrawalStrategy
	switch kind {
	case calculation.KindFixedReal:
		strategy = calculation.FixedReal{Rate: rate}
	case calculation.KindFixedNominal:
		strategy = calculation.FixedNominal{Rate: rate}
	case calculation.KindPercentOfCurrent:
		strategy = calculation.PercentOfCurrent{Rate: rate}
	default:
		q := calculation.DefaultQOLPhased()
		if s.Rate != nil {
			q.BaseRate = *s.Rate
		}
		for i, r := range []*float64{s.Phase1Rate, s.Phase2Rate, s.Phase3Rate} {
			if r != nil {
				q.PhaseRates[i] = *r
			}
		}
		if s.Phase1End != nil {
			q.Phase1End = *s.Phase1End
		}
		if s.Phase2End != nil {
			q.Phase2End = *s.Phase2End
		}
		strategy = q
	}

	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return strategy, nil
}

// BuildMarket resolves the market section. Listing assets or a preset
// implies correlated mode.
func BuildMarket(m domain.MarketAssumptions) (calculation.MarketConfig, error) {
	cfg := calculation.DefaultMarketConfig()
	if m.ReturnMean != nil {
		cfg.ReturnMean = *m.ReturnMean
	}
	if m.ReturnVolatility != nil {
		cfg.ReturnVolatility = *m.ReturnVolatility
	}
	if m.InflationMean != nil {
		cfg.InflationMean = *m.InflationMean
	}
	if m.InflationVolatility != nil {
		cfg.InflationVolatility = *m.InflationVolatility
	}
	if m.InflationVariability != nil {
		cfg.InflationStochastic = *m.InflationVariability
	}

	mode := calculation.MarketMode(strings.ToLower(m.Mode))
	if mode == "" && (m.Preset != "" || len(m.Assets) > 0) {
		mode = calculation.MarketCorrelated
	}
	if mode == "" {
		mode = calculation.MarketIndependent
	}
	cfg.Mode = mode

	if mode == calculation.MarketCorrelated {
		switch {
		case len(m.Assets) > 0:
			cfg.Assets = make([]calculation.AssetClass, len(m.Assets))
			for i, a := range m.Assets {
				cfg.Assets[i] = calculation.AssetClass{
					Name:       a.Name,
					Sleeve:     calculation.Sleeve(strings.ToLower(a.Sleeve)),
					Mean:       a.Mean,
					Volatility: a.Volatility,
					Weight:     a.Weight,
				}
			}
			cfg.Correlation = m.Correlation
		case m.Preset == presetFourAsset:
			cfg.Assets, cfg.Correlation = calculation.FourAssetPreset()
		default:
			cfg.Assets, cfg.Correlation = calculation.TwoAssetPreset()
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildGlidePath returns the table from TableFile when set, otherwise the
// default formula with any overridden bounds. Percentages are whole numbers.
func BuildGlidePath(g domain.GlidePathSettings) (*calculation.GlidePath, error) {
	if g.TableFile != "" {
		path, err := calculation.NewGlidePathLoader("").Load(g.TableFile)
		if err != nil {
			return nil, &calculation.ConfigurationError{Field: "glide_path.table_file", Reason: err.Error()}
		}
		return path, nil
	}

	path := calculation.DefaultGlidePath()
	overrides := []struct {
		src *int
		dst *int
	}{
		{g.Baseline, &path.Baseline},
		{g.MinEquity, &path.MinEquity},
		{g.MaxEquity, &path.MaxEquity},
		{g.FirstAge, &path.FirstAge},
		{g.LastAge, &path.LastAge},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

// DefaultComparison is the strategy set compared when a scenario lists none.
func DefaultComparison() []domain.StrategySettings {
	rate := 0.04
	return []domain.StrategySettings{
		{Label: "Trinity 4%", Kind: string(calculation.KindFixedReal), Rate: &rate},
		{Label: "Hauenstein QOL", Kind: string(calculation.KindQOLPhased)},
		{Label: "Dynamic 4%", Kind: string(calculation.KindPercentOfCurrent), Rate: &rate},
	}
}

// BuildComparison resolves the comparison section. The baseline is matched by
// label first, then by kind. Without a match the comparison picks its own.
func BuildComparison(scenario *domain.ScenarioFile) ([]calculation.NamedStrategy, error) {
	settings := scenario.Comparison.Strategies
	if len(settings) == 0 {
		settings = DefaultComparison()
	}

	named := make([]calculation.NamedStrategy, 0, len(settings))
	for i, s := range settings {
		strategy, err := BuildStrategy(s)
		if err != nil {
			return nil, fmt.Errorf("comparison strategy %d: %w", i+1, err)
		}
		named = append(named, calculation.NamedStrategy{Label: strategyLabel(s), Strategy: strategy})
	}

	if want := scenario.Comparison.Baseline; want != "" {
		idx := -1
		for i, n := range named {
			if n.Label == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			if kind, err := calculation.ParseStrategyKind(want); err == nil {
				for i, n := range named {
					if n.Strategy.Kind() == kind {
						idx = i
						break
					}
				}
			}
		}
		if idx < 0 {
			return nil, &calculation.ConfigurationError{Field: "comparison.baseline", Reason: fmt.Sprintf("no strategy matches %q", want)}
		}
		named[idx].Baseline = true
	}
	return named, nil
}

// BuildSweepPlan resolves the sweep section.
func BuildSweepPlan(s *domain.SweepSettings) (*SweepPlan, error) {
	if s == nil {
		return nil, &calculation.ConfigurationError{Field: "sweep", Reason: "is required"}
	}
	mode, err := parseSweepMode(s.Mode)
	if err != nil {
		return nil, err
	}

	plan := &SweepPlan{
		Mode:            mode,
		MaxCombinations: s.MaxCombinations,
		Workers:         s.Workers,
	}
	for _, p := range s.Parameters {
		plan.Ranges = append(plan.Ranges, calculation.ParameterRange{Name: p.Name, Values: p.Values})
	}

	names := s.Objectives
	if s.Objective != "" {
		names = append([]string{s.Objective}, names...)
	}
	seen := make(map[calculation.Objective]bool)
	for _, n := range names {
		o, err := calculation.ParseObjective(n)
		if err != nil {
			return nil, err
		}
		if !seen[o] {
			seen[o] = true
			plan.Objectives = append(plan.Objectives, o)
		}
	}
	return plan, nil
}

// parseSweepMode accepts the short names and the long result names.
func parseSweepMode(s string) (calculation.SweepMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one", "1d", string(calculation.SweepOneParameter):
		return calculation.SweepOneParameter, nil
	case "two", "2d", string(calculation.SweepTwoParameters):
		return calculation.SweepTwoParameters, nil
	case "many", "nd", string(calculation.SweepComprehensive):
		return calculation.SweepComprehensive, nil
	}
	return "", &calculation.ConfigurationError{Field: "sweep.mode", Reason: fmt.Sprintf("must be one, two or many, got %q", s)}
}

func strategyLabel(s domain.StrategySettings) string {
	if s.Label != "" {
		return s.Label
	}
	if s.Kind == "" {
		return string(calculation.KindQOLPhased)
	}
	return s.Kind
}
