package calculation

import (
	"math"
	"math/rand/v2"
)

// MarketMode selects how annual returns are generated.
type MarketMode string

const (
	// MarketIndependent draws a single portfolio return per year.
	MarketIndependent MarketMode = "independent"
	// MarketCorrelated draws one return per asset class from a correlated normal.
	MarketCorrelated MarketMode = "correlated"
)

// Sleeve groups asset classes into the two glide path buckets.
type Sleeve string

const (
	SleeveEquity Sleeve = "equity"
	SleeveBond   Sleeve = "bond"
)

// AssetClass is one asset in correlated mode. Weight is its share of its sleeve.
type AssetClass struct {
	Name       string  `json:"name"`
	Sleeve     Sleeve  `json:"sleeve"`
	Mean       float64 `json:"mean"`
	Volatility float64 `json:"volatility"`
	Weight     float64 `json:"weight"`
}

// MarketConfig holds the return and inflation assumptions.
type MarketConfig struct {
	Mode                MarketMode   `json:"mode"`
	ReturnMean          float64      `json:"return_mean"`
	ReturnVolatility    float64      `json:"return_volatility"`
	InflationMean       float64      `json:"inflation_mean"`
	InflationVolatility float64      `json:"inflation_volatility"`
	InflationStochastic bool         `json:"inflation_stochastic"`
	Assets              []AssetClass `json:"assets,omitempty"`
	Correlation         [][]float64  `json:"correlation,omitempty"`
}

// DefaultMarketConfig returns the baseline independent model:
// 1.5% mean real return with 15% volatility and 2.5% ± 1% inflation.
func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		Mode:                MarketIndependent,
		ReturnMean:          0.015,
		ReturnVolatility:    0.15,
		InflationMean:       0.025,
		InflationVolatility: 0.01,
		InflationStochastic: true,
	}
}

// TwoAssetPreset is a stock/bond pair with a mild positive correlation.
func TwoAssetPreset() ([]AssetClass, [][]float64) {
	assets := []AssetClass{
		{Name: "stocks", Sleeve: SleeveEquity, Mean: 0.07, Volatility: 0.20, Weight: 1},
		{Name: "bonds", Sleeve: SleeveBond, Mean: 0.04, Volatility: 0.05, Weight: 1},
	}
	corr := [][]float64{
		{1.0, 0.1},
		{0.1, 1.0},
	}
	return assets, corr
}

// FourAssetPreset adds TIPS and gold. Gold rides in the equity sleeve, TIPS in the bond sleeve.
func FourAssetPreset() ([]AssetClass, [][]float64) {
	assets := []AssetClass{
		{Name: "stocks", Sleeve: SleeveEquity, Mean: 0.072, Volatility: 0.20, Weight: 0.85},
		{Name: "bonds", Sleeve: SleeveBond, Mean: 0.02, Volatility: 0.06, Weight: 0.60},
		{Name: "tips", Sleeve: SleeveBond, Mean: 0.01, Volatility: 0.05, Weight: 0.40},
		{Name: "gold", Sleeve: SleeveEquity, Mean: 0.015, Volatility: 0.18, Weight: 0.15},
	}
	corr := [][]float64{
		{1.0, 0.1, -0.1, 0.3},
		{0.1, 1.0, 0.8, -0.2},
		{-0.1, 0.8, 1.0, 0.1},
		{0.3, -0.2, 0.1, 1.0},
	}
	return assets, corr
}

// MarketDraw is one year of market conditions.
type MarketDraw struct {
	EquityReturn float64
	BondReturn   float64
	Inflation    float64
}

// Blend returns the portfolio return for the given allocation.
func (d MarketDraw) Blend(a Allocation) float64 {
	return a.Equity*d.EquityReturn + a.Bond*d.BondReturn
}

// MarketModel generates annual market draws. It is read-only after construction
// and safe to share between goroutines; all randomness comes from the caller's source.
type MarketModel struct {
	cfg  MarketConfig
	chol [][]float64
}

// NewMarketModel validates cfg and prepares the correlation factor in correlated mode.
func NewMarketModel(cfg MarketConfig) (*MarketModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &MarketModel{cfg: cfg}
	if cfg.Mode == MarketCorrelated {
		l, err := cholesky(cfg.Correlation)
		if err != nil {
			return nil, configError("market.correlation", "%v", err)
		}
		m.chol = l
	}
	return m, nil
}

// Validate checks the market assumptions.
func (c MarketConfig) Validate() error {
	if c.ReturnMean < -1 || c.ReturnMean > 1 {
		return configError("market.return_mean", "must be between -1 and 1, got %g", c.ReturnMean)
	}
	if err := checkUnitInterval("market.return_volatility", c.ReturnVolatility); err != nil {
		return err
	}
	if c.InflationMean < -1 || c.InflationMean > 1 {
		return configError("market.inflation_mean", "must be between -1 and 1, got %g", c.InflationMean)
	}
	if err := checkUnitInterval("market.inflation_volatility", c.InflationVolatility); err != nil {
		return err
	}

	switch c.Mode {
	case MarketIndependent, "":
		return nil
	case MarketCorrelated:
		return c.validateAssets()
	default:
		return configError("market.mode", "unknown mode %q", c.Mode)
	}
}

func (c MarketConfig) validateAssets() error {
	n := len(c.Assets)
	if n == 0 {
		return configError("market.assets", "correlated mode needs at least one asset")
	}
	if len(c.Correlation) != n {
		return configError("market.correlation", "must be %dx%d, got %d rows", n, n, len(c.Correlation))
	}
	for i, row := range c.Correlation {
		if len(row) != n {
			return configError("market.correlation", "row %d must have %d entries", i, n)
		}
	}

	sleeveWeight := map[Sleeve]float64{}
	for i, a := range c.Assets {
		if a.Sleeve != SleeveEquity && a.Sleeve != SleeveBond {
			return configError("market.assets", "%s has unknown sleeve %q", a.Name, a.Sleeve)
		}
		if err := checkUnitInterval("market.assets."+a.Name+".volatility", a.Volatility); err != nil {
			return err
		}
		if err := checkUnitInterval("market.assets."+a.Name+".weight", a.Weight); err != nil {
			return err
		}
		sleeveWeight[a.Sleeve] += a.Weight
		for j, rho := range c.Correlation[i] {
			if rho < -1 || rho > 1 {
				return configError("market.correlation", "entry [%d][%d] must be between -1 and 1", i, j)
			}
			if math.Abs(rho-c.Correlation[j][i]) > 1e-12 {
				return configError("market.correlation", "must be symmetric at [%d][%d]", i, j)
			}
		}
		if c.Correlation[i][i] != 1 {
			return configError("market.correlation", "diagonal entry [%d][%d] must be 1", i, i)
		}
	}
	for _, s := range []Sleeve{SleeveEquity, SleeveBond} {
		if math.Abs(sleeveWeight[s]-1) > 1e-9 {
			return configError("market.assets", "%s sleeve weights must sum to 1, got %g", s, sleeveWeight[s])
		}
	}
	return nil
}

// Draw samples one year. Inflation is drawn first, then returns, so the
// number of values consumed from r per year is fixed for a given config.
func (m *MarketModel) Draw(r *rand.Rand) MarketDraw {
	var d MarketDraw

	d.Inflation = m.cfg.InflationMean
	if m.cfg.InflationStochastic {
		d.Inflation = normal(r, m.cfg.InflationMean, m.cfg.InflationVolatility)
	}

	if m.cfg.Mode != MarketCorrelated {
		ret := normal(r, m.cfg.ReturnMean, m.cfg.ReturnVolatility)
		d.EquityReturn, d.BondReturn = ret, ret
		return d
	}

	n := len(m.cfg.Assets)
	eps := make([]float64, n)
	for i := range eps {
		eps[i] = boxMuller(r)
	}
	for i, asset := range m.cfg.Assets {
		z := 0.0
		for k := 0; k <= i; k++ {
			z += m.chol[i][k] * eps[k]
		}
		ret := asset.Mean + asset.Volatility*z
		if asset.Sleeve == SleeveEquity {
			d.EquityReturn += asset.Weight * ret
		} else {
			d.BondReturn += asset.Weight * ret
		}
	}
	return d
}

func normal(r *rand.Rand, mean, stdDev float64) float64 {
	return mean + stdDev*boxMuller(r)
}

// boxMuller converts two uniforms into a standard normal deviate.
func boxMuller(r *rand.Rand) float64 {
	u1 := 1 - r.Float64() // (0, 1]
	u2 := r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
