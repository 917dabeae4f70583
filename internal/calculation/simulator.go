package calculation

import (
	"math/rand/v2"

	"github.com/rpgo/qol-retirement/internal/domain"
)

// YearRecord is one simulated year of one path.
type YearRecord struct {
	Year            int        `json:"year"`
	Age             int        `json:"age"`
	StartValue      float64    `json:"start_value"`
	Withdrawal      float64    `json:"withdrawal"`
	EndValue        float64    `json:"end_value"`
	Return          float64    `json:"return"`
	Inflation       float64    `json:"inflation"`
	InflationFactor float64    `json:"inflation_factor"`
	Allocation      Allocation `json:"allocation"`
	QOLFactor       float64    `json:"qol_factor"`
	Depleted        bool       `json:"depleted"`
}

// PathResult is one simulated life path. Once a year ends at zero every
// later year is zero with no withdrawal.
type PathResult struct {
	Index         int          `json:"index"`
	StartingValue float64      `json:"starting_value"`
	Years         []YearRecord `json:"years"`
}

// Values returns the starting value followed by each year's end value.
func (p PathResult) Values() []float64 {
	values := make([]float64, 0, len(p.Years)+1)
	values = append(values, p.StartingValue)
	for _, y := range p.Years {
		values = append(values, y.EndValue)
	}
	return values
}

// FinalValue is the value at the end of the horizon (the starting value for a zero horizon).
func (p PathResult) FinalValue() float64 {
	if len(p.Years) == 0 {
		return p.StartingValue
	}
	return p.Years[len(p.Years)-1].EndValue
}

// DepletionYear is the first year index ending at or below zero, or domain.Never.
func (p PathResult) DepletionYear() domain.DepletionYear {
	for i, y := range p.Years {
		if y.EndValue <= 0 {
			return domain.DepletionYear(i)
		}
	}
	return domain.Never
}

// Depleted reports whether the path ran out before the horizon ended.
func (p PathResult) Depleted() bool { return !p.DepletionYear().IsNever() }

// TotalWithdrawn sums every withdrawal on the path.
func (p PathResult) TotalWithdrawn() float64 {
	total := 0.0
	for _, y := range p.Years {
		total += y.Withdrawal
	}
	return total
}

// PathSimulator evolves one portfolio year by year. It holds only read-only
// state and may be shared by concurrent callers.
type PathSimulator struct {
	cfg    SimulationConfig
	market *MarketModel
	glide  *GlidePath
	floor  float64
}

// NewPathSimulator validates cfg and prepares the market model and glide path.
func NewPathSimulator(cfg SimulationConfig) (*PathSimulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	market, err := NewMarketModel(cfg.Market)
	if err != nil {
		return nil, err
	}
	return &PathSimulator{
		cfg:    cfg,
		market: market,
		glide:  cfg.glidePath(),
		floor:  cfg.DepletionThreshold * cfg.StartingValue,
	}, nil
}

// Simulate runs path pathIndex using r as its only source of randomness.
// QOL noise comes from a second source split off r before the first year,
// so a path's market draws are the same whichever strategy runs on it.
// Each year: draw the market, look up the allocation, compute the QOL factor,
// withdraw from the pre-update inflation state, advance inflation, then grow
// the remainder by the blended return.
func (ps *PathSimulator) Simulate(pathIndex int, r *rand.Rand) PathResult {
	cfg := ps.cfg
	result := PathResult{
		Index:         pathIndex,
		StartingValue: cfg.StartingValue,
		Years:         make([]YearRecord, 0, cfg.HorizonYears),
	}

	value := cfg.StartingValue
	inflation := NewInflationState()
	usesQOL := cfg.Strategy.UsesQOL()
	qolRand := rand.New(rand.NewPCG(r.Uint64(), r.Uint64()))

	for year := 0; year < cfg.HorizonYears; year++ {
		age := cfg.StartingAge + year
		draw := ps.market.Draw(r)
		alloc := ps.glide.Allocation(age)

		qol := 1.0
		if usesQOL && cfg.QOLStochastic {
			qol = drawQOLFactor(qolRand, cfg.QOLNoiseVolatility)
		}

		requested := cfg.Strategy.Withdrawal(WithdrawalContext{
			Year:          year,
			Age:           age,
			StartingValue: cfg.StartingValue,
			CurrentValue:  value,
			Inflation:     inflation,
			QOLFactor:     qol,
		})
		withdrawal := CapWithdrawal(requested, value)
		usedFactor := inflation.Factor()
		inflation = inflation.Advance(draw.Inflation)

		growth := draw.Blend(alloc)
		end := (value - withdrawal) * (1 + growth)
		if end <= ps.floor {
			end = 0
		}

		result.Years = append(result.Years, YearRecord{
			Year:            year,
			Age:             age,
			StartValue:      value,
			Withdrawal:      withdrawal,
			EndValue:        end,
			Return:          growth,
			Inflation:       draw.Inflation,
			InflationFactor: usedFactor,
			Allocation:      alloc,
			QOLFactor:       qol,
			Depleted:        end == 0,
		})

		if end == 0 {
			ps.fillDepleted(&result, year+1, inflation.Factor())
			break
		}
		value = end
	}

	return result
}

// fillDepleted pads the path with zero records from year from to the horizon.
func (ps *PathSimulator) fillDepleted(result *PathResult, from int, factor float64) {
	for year := from; year < ps.cfg.HorizonYears; year++ {
		age := ps.cfg.StartingAge + year
		result.Years = append(result.Years, YearRecord{
			Year:            year,
			Age:             age,
			InflationFactor: factor,
			Allocation:      ps.glide.Allocation(age),
			Depleted:        true,
		})
	}
}
