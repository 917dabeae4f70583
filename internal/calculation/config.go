package calculation

// SimulationConfig is the immutable input of a Monte Carlo run.
type SimulationConfig struct {
	StartingValue float64            `json:"starting_value"`
	StartingAge   int                `json:"starting_age"`
	HorizonYears  int                `json:"horizon_years"`
	NumPaths      int                `json:"num_paths"`
	Seed          int64              `json:"seed"`
	Strategy      WithdrawalStrategy `json:"strategy"`
	Market        MarketConfig       `json:"market"`

	// QOLStochastic enables multiplicative noise on the QOL factor for
	// strategies that use it.
	QOLStochastic      bool    `json:"qol_stochastic"`
	QOLNoiseVolatility float64 `json:"qol_noise_volatility"`

	// DepletionThreshold is a fraction of StartingValue. An end-of-year value
	// at or below it is treated as depleted and set to exactly zero.
	DepletionThreshold float64 `json:"depletion_threshold"`

	// GlidePath defaults to DefaultGlidePath when nil.
	GlidePath *GlidePath `json:"-"`
}

// DefaultSimulationConfig returns the reference scenario: $1M at 65 over
// 30 years with the phased QOL strategy.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		StartingValue:      1_000_000,
		StartingAge:        65,
		HorizonYears:       30,
		NumPaths:           1000,
		Strategy:           DefaultQOLPhased(),
		Market:             DefaultMarketConfig(),
		QOLStochastic:      true,
		QOLNoiseVolatility: 0.10,
		DepletionThreshold: 0.01,
	}
}

// Validate reports the first invalid field as a ConfigurationError.
func (c SimulationConfig) Validate() error {
	if c.StartingValue <= 0 {
		return configError("starting_value", "must be positive, got %g", c.StartingValue)
	}
	if c.StartingAge < 18 {
		return configError("starting_age", "must be at least 18, got %d", c.StartingAge)
	}
	if c.HorizonYears < 0 {
		return configError("horizon_years", "cannot be negative, got %d", c.HorizonYears)
	}
	if c.NumPaths <= 0 {
		return configError("n_paths", "must be positive, got %d", c.NumPaths)
	}
	if c.Strategy == nil {
		return configError("strategy", "is required")
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	if err := c.Market.Validate(); err != nil {
		return err
	}
	if err := checkUnitInterval("qol_noise_volatility", c.QOLNoiseVolatility); err != nil {
		return err
	}
	if err := checkUnitInterval("depletion_threshold", c.DepletionThreshold); err != nil {
		return err
	}
	if c.GlidePath != nil {
		if err := c.GlidePath.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c SimulationConfig) glidePath() *GlidePath {
	if c.GlidePath == nil {
		return DefaultGlidePath()
	}
	return c.GlidePath
}
