package domain

import (
	"github.com/shopspring/decimal"
)

// ScenarioFile is the top-level structure of a scenario YAML file.
type ScenarioFile struct {
	Name       string             `yaml:"name" json:"name"`
	Simulation SimulationSettings `yaml:"simulation" json:"simulation"`
	Market     MarketAssumptions  `yaml:"market" json:"market"`
	Strategy   StrategySettings   `yaml:"strategy" json:"strategy"`
	GlidePath  GlidePathSettings  `yaml:"glide_path" json:"glide_path"`
	Comparison ComparisonSettings `yaml:"comparison,omitempty" json:"comparison,omitempty"`
	Sweep      *SweepSettings     `yaml:"sweep,omitempty" json:"sweep,omitempty"`
}

// SimulationSettings holds the portfolio and run size parameters.
// Pointer fields distinguish "not set" (use default) from an explicit zero.
type SimulationSettings struct {
	StartingValue      decimal.Decimal `yaml:"starting_value" json:"starting_value"`
	StartingAge        int             `yaml:"starting_age" json:"starting_age"`
	HorizonYears       *int            `yaml:"horizon_years,omitempty" json:"horizon_years,omitempty"`
	NumPaths           *int            `yaml:"n_paths,omitempty" json:"n_paths,omitempty"`
	Seed               int64           `yaml:"seed,omitempty" json:"seed,omitempty"`
	QOLVariability     *bool           `yaml:"qol_variability,omitempty" json:"qol_variability,omitempty"`
	QOLNoiseVolatility *float64        `yaml:"qol_noise_volatility,omitempty" json:"qol_noise_volatility,omitempty"`
	DepletionThreshold *float64        `yaml:"depletion_threshold,omitempty" json:"depletion_threshold,omitempty"`
	Workers            int             `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// MarketAssumptions describes the return and inflation model.
type MarketAssumptions struct {
	Mode                 string          `yaml:"mode,omitempty" json:"mode,omitempty"`     // independent | correlated
	Preset               string          `yaml:"preset,omitempty" json:"preset,omitempty"` // two_asset | four_asset
	ReturnMean           *float64        `yaml:"return_mean,omitempty" json:"return_mean,omitempty"`
	ReturnVolatility     *float64        `yaml:"return_volatility,omitempty" json:"return_volatility,omitempty"`
	InflationMean        *float64        `yaml:"inflation_mean,omitempty" json:"inflation_mean,omitempty"`
	InflationVolatility  *float64        `yaml:"inflation_volatility,omitempty" json:"inflation_volatility,omitempty"`
	InflationVariability *bool           `yaml:"inflation_variability,omitempty" json:"inflation_variability,omitempty"`
	Assets               []AssetSettings `yaml:"assets,omitempty" json:"assets,omitempty"`
	Correlation          [][]float64     `yaml:"correlation,omitempty" json:"correlation,omitempty"`
}

// AssetSettings describes one asset class in correlated mode.
type AssetSettings struct {
	Name       string  `yaml:"name" json:"name"`
	Sleeve     string  `yaml:"sleeve" json:"sleeve"` // equity | bond
	Mean       float64 `yaml:"mean" json:"mean"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
	Weight     float64 `yaml:"weight" json:"weight"` // weight within its sleeve
}

// StrategySettings selects a withdrawal strategy and its parameters.
type StrategySettings struct {
	Label      string   `yaml:"label,omitempty" json:"label,omitempty"`
	Kind       string   `yaml:"kind" json:"kind"`
	Rate       *float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
	Phase1Rate *float64 `yaml:"phase1_rate,omitempty" json:"phase1_rate,omitempty"`
	Phase2Rate *float64 `yaml:"phase2_rate,omitempty" json:"phase2_rate,omitempty"`
	Phase3Rate *float64 `yaml:"phase3_rate,omitempty" json:"phase3_rate,omitempty"`
	Phase1End  *int     `yaml:"phase1_end,omitempty" json:"phase1_end,omitempty"`
	Phase2End  *int     `yaml:"phase2_end,omitempty" json:"phase2_end,omitempty"`
}

// GlidePathSettings configures the age-based allocation schedule.
// Percent fields are whole percentages (e.g. 80 for 80% equity).
type GlidePathSettings struct {
	TableFile string `yaml:"table_file,omitempty" json:"table_file,omitempty"`
	Baseline  *int   `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	MinEquity *int   `yaml:"min_equity,omitempty" json:"min_equity,omitempty"`
	MaxEquity *int   `yaml:"max_equity,omitempty" json:"max_equity,omitempty"`
	FirstAge  *int   `yaml:"first_age,omitempty" json:"first_age,omitempty"`
	LastAge   *int   `yaml:"last_age,omitempty" json:"last_age,omitempty"`
}

// ComparisonSettings lists the strategies to run side by side.
// Baseline names the label (or kind) the QOL strategies are measured against.
type ComparisonSettings struct {
	Baseline   string             `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	Strategies []StrategySettings `yaml:"strategies,omitempty" json:"strategies,omitempty"`
}

// SweepSettings describes a sensitivity sweep over the scenario.
type SweepSettings struct {
	Mode            string              `yaml:"mode" json:"mode"` // one | two | many
	Parameters      []ParameterSettings `yaml:"parameters" json:"parameters"`
	Objective       string              `yaml:"objective,omitempty" json:"objective,omitempty"`
	Objectives      []string            `yaml:"objectives,omitempty" json:"objectives,omitempty"`
	MaxCombinations int                 `yaml:"max_combinations,omitempty" json:"max_combinations,omitempty"`
	Workers         int                 `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// ParameterSettings is one named axis of a sweep.
type ParameterSettings struct {
	Name   string    `yaml:"name" json:"name"`
	Values []float64 `yaml:"values" json:"values"`
}
