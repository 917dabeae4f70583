package calculation

import (
	"math"
	"sort"
)

// ParameterRange is one named sweep axis.
type ParameterRange struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ParameterValue is one parameter setting of a sweep combination.
type ParameterValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type parameter struct {
	// applies rejects a base configuration the parameter cannot act on.
	applies func(cfg SimulationConfig) error
	set     func(cfg *SimulationConfig, v float64) error
}

var sweepParameters = map[string]parameter{
	"starting_value": {set: func(c *SimulationConfig, v float64) error { c.StartingValue = v; return nil }},
	"starting_age":   {set: intParam("starting_age", func(c *SimulationConfig, n int) { c.StartingAge = n })},
	"horizon_years":  {set: intParam("horizon_years", func(c *SimulationConfig, n int) { c.HorizonYears = n })},
	"n_paths":        {set: intParam("n_paths", func(c *SimulationConfig, n int) { c.NumPaths = n })},

	"return_mean":          {applies: requireIndependentMarket, set: func(c *SimulationConfig, v float64) error { c.Market.ReturnMean = v; return nil }},
	"return_volatility":    {applies: requireIndependentMarket, set: func(c *SimulationConfig, v float64) error { c.Market.ReturnVolatility = v; return nil }},
	"inflation_mean":       {set: func(c *SimulationConfig, v float64) error { c.Market.InflationMean = v; return nil }},
	"inflation_volatility": {set: func(c *SimulationConfig, v float64) error { c.Market.InflationVolatility = v; return nil }},

	"qol_variability":       {set: boolParam("qol_variability", func(c *SimulationConfig, b bool) { c.QOLStochastic = b })},
	"inflation_variability": {set: boolParam("inflation_variability", func(c *SimulationConfig, b bool) { c.Market.InflationStochastic = b })},
	"qol_noise_volatility":  {set: func(c *SimulationConfig, v float64) error { c.QOLNoiseVolatility = v; return nil }},
	"depletion_threshold":   {set: func(c *SimulationConfig, v float64) error { c.DepletionThreshold = v; return nil }},

	"withdrawal_rate": {set: setWithdrawalRate},
	"phase1_rate":     {applies: requireQOLPhased, set: phaseRate(0)},
	"phase2_rate":     {applies: requireQOLPhased, set: phaseRate(1)},
	"phase3_rate":     {applies: requireQOLPhased, set: phaseRate(2)},
	"phase1_end":      {applies: requireQOLPhased, set: phaseEnd("phase1_end", 1)},
	"phase2_end":      {applies: requireQOLPhased, set: phaseEnd("phase2_end", 2)},
}

// SweepParameterNames lists the parameters a sweep can vary.
func SweepParameterNames() []string {
	names := make([]string, 0, len(sweepParameters))
	for name := range sweepParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkParameter fails fast for unknown names or parameters that cannot act on base.
func checkParameter(base SimulationConfig, name string) error {
	p, ok := sweepParameters[name]
	if !ok {
		return configError("sweep.parameter", "unknown parameter %q", name)
	}
	if p.applies != nil {
		return p.applies(base)
	}
	return nil
}

// ApplyParameter returns a copy of cfg with name set to value. The result is
// not validated; callers run it through the engine which does.
func ApplyParameter(cfg SimulationConfig, name string, value float64) (SimulationConfig, error) {
	if err := checkParameter(cfg, name); err != nil {
		return cfg, err
	}
	if err := sweepParameters[name].set(&cfg, value); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func intParam(name string, apply func(*SimulationConfig, int)) func(*SimulationConfig, float64) error {
	return func(c *SimulationConfig, v float64) error {
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return configError(name, "must be a whole number, got %g", v)
		}
		apply(c, int(v))
		return nil
	}
}

func boolParam(name string, apply func(*SimulationConfig, bool)) func(*SimulationConfig, float64) error {
	return func(c *SimulationConfig, v float64) error {
		if v != 0 && v != 1 {
			return configError(name, "must be 0 or 1, got %g", v)
		}
		apply(c, v == 1)
		return nil
	}
}

// requireIndependentMarket rejects portfolio return parameters when returns
// come from per-asset assumptions, which would silently ignore them.
func requireIndependentMarket(c SimulationConfig) error {
	if c.Market.Mode == MarketCorrelated {
		return configError("sweep.parameter", "return parameters need an independent market, got %s", c.Market.Mode)
	}
	return nil
}

func requireQOLPhased(c SimulationConfig) error {
	if _, ok := c.Strategy.(QOLPhased); !ok {
		kind := StrategyKind("none")
		if c.Strategy != nil {
			kind = c.Strategy.Kind()
		}
		return configError("sweep.parameter", "phase parameters need a qol_phased strategy, got %s", kind)
	}
	return nil
}

func phaseRate(idx int) func(*SimulationConfig, float64) error {
	return func(c *SimulationConfig, v float64) error {
		s := c.Strategy.(QOLPhased)
		s.PhaseRates[idx] = v
		c.Strategy = s
		return nil
	}
}

func phaseEnd(name string, phase int) func(*SimulationConfig, float64) error {
	return intParam(name, func(c *SimulationConfig, n int) {
		s := c.Strategy.(QOLPhased)
		if phase == 1 {
			s.Phase1End = n
		} else {
			s.Phase2End = n
		}
		c.Strategy = s
	})
}

func setWithdrawalRate(c *SimulationConfig, v float64) error {
	switch s := c.Strategy.(type) {
	case FixedReal:
		s.Rate = v
		c.Strategy = s
	case FixedNominal:
		s.Rate = v
		c.Strategy = s
	case PercentOfCurrent:
		s.Rate = v
		c.Strategy = s
	case QOLPhased:
		// Scale the whole schedule so the phase shape is kept.
		if s.BaseRate > 0 {
			for i := range s.PhaseRates {
				s.PhaseRates[i] *= v / s.BaseRate
			}
		}
		s.BaseRate = v
		c.Strategy = s
	default:
		return configError("withdrawal_rate", "no strategy to apply the rate to")
	}
	return nil
}
