package calculation

import (
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
)

// defaultWorkers bounds concurrent path simulations.
const defaultWorkers = 10

// MonteCarloEngine runs independent simulated paths for a configuration.
type MonteCarloEngine struct {
	Workers  int
	Logger   Logger
	Recorder Recorder
}

// PathEnsemble is every path produced for one configuration. It is written
// once by Run and never mutated afterwards.
type PathEnsemble struct {
	Config  SimulationConfig `json:"config"`
	Seed    int64            `json:"seed"`
	Paths   []PathResult     `json:"paths"`
	Summary EnsembleSummary  `json:"summary"`
}

// EnsembleSummary aggregates final values, withdrawals and QOL factors across
// paths. Dollar figures are rounded to cents.
type EnsembleSummary struct {
	SuccessRate           float64          `json:"success_rate"`
	FinalValueMean        decimal.Decimal  `json:"final_value_mean"`
	FinalValueMedian      decimal.Decimal  `json:"final_value_median"`
	FinalValueStdDev      decimal.Decimal  `json:"final_value_std_dev"`
	FinalValuePercentiles PercentileRanges `json:"final_value_percentiles"`
	TotalWithdrawnMean    decimal.Decimal  `json:"total_withdrawn_mean"`
	TotalWithdrawnMedian  decimal.Decimal  `json:"total_withdrawn_median"`
	FirstYearWithdrawal   decimal.Decimal  `json:"first_year_withdrawal_mean"`
	AnnualWithdrawalMean  decimal.Decimal  `json:"annual_withdrawal_mean"`
	WithdrawalVolatility  decimal.Decimal  `json:"withdrawal_volatility"`
	QOLMean               float64          `json:"qol_mean"`
	QOLStdDev             float64          `json:"qol_std_dev"`
	QOLMin                float64          `json:"qol_min"`
	QOLMax                float64          `json:"qol_max"`
}

// NewMonteCarloEngine creates an engine with the default worker limit and no-op logging.
func NewMonteCarloEngine() *MonteCarloEngine {
	return &MonteCarloEngine{
		Workers:  defaultWorkers,
		Logger:   NopLogger{},
		Recorder: NopRecorder{},
	}
}

// Run validates cfg and simulates cfg.NumPaths paths. Path i draws from
// NewStreamRand(seed, i) and writes only its own slot, so the ensemble is
// identical for any worker count. A zero seed is resolved once per run.
func (mce *MonteCarloEngine) Run(cfg SimulationConfig) (*PathEnsemble, error) {
	sim, err := NewPathSimulator(cfg)
	if err != nil {
		return nil, err
	}
	cfg.Seed = resolveSeed(cfg.Seed)

	logger := mce.logger()
	workers := mce.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	started := nowFunc()
	logger.Debugf("monte carlo: %d paths, horizon %d, strategy %s, seed %d", cfg.NumPaths, cfg.HorizonYears, cfg.Strategy.Kind(), cfg.Seed)

	paths := make([]PathResult, cfg.NumPaths)
	failures := make([]error, cfg.NumPaths)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers) // Limit concurrent simulations

	for i := 0; i < cfg.NumPaths; i++ {
		wg.Add(1)
		go func(pathIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore
			defer func() {
				if rec := recover(); rec != nil {
					failures[pathIndex] = fmt.Errorf("path %d: %v", pathIndex, rec)
					logger.Errorf("monte carlo path %d failed: %v", pathIndex, rec)
				}
			}()

			paths[pathIndex] = sim.Simulate(pathIndex, NewStreamRand(cfg.Seed, pathIndex))
		}(i)
	}

	wg.Wait()

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}

	ensemble := &PathEnsemble{
		Config:  cfg,
		Seed:    cfg.Seed,
		Paths:   paths,
		Summary: summarizeEnsemble(paths),
	}

	depleted := 0
	for _, p := range paths {
		if p.Depleted() {
			depleted++
		}
	}
	elapsed := nowFunc().Sub(started)
	mce.recorder().ObserveRun(len(paths), depleted, elapsed)
	logger.Infof("monte carlo: %d/%d paths depleted, success rate %.3f (%s)", depleted, len(paths), ensemble.Summary.SuccessRate, elapsed)

	return ensemble, nil
}

func (mce *MonteCarloEngine) logger() Logger {
	if mce.Logger == nil {
		return NopLogger{}
	}
	return mce.Logger
}

func (mce *MonteCarloEngine) recorder() Recorder {
	if mce.Recorder == nil {
		return NopRecorder{}
	}
	return mce.Recorder
}

// FinalValues returns each path's final value in path order.
func (e *PathEnsemble) FinalValues() []float64 {
	values := make([]float64, len(e.Paths))
	for i, p := range e.Paths {
		values[i] = p.FinalValue()
	}
	return values
}

// summarizeEnsemble computes the ensemble statistics. Withdrawal figures
// include the zero years that follow a depletion; QOL figures do not.
func summarizeEnsemble(paths []PathResult) EnsembleSummary {
	var s EnsembleSummary
	if len(paths) == 0 {
		return s
	}

	finals := make([]float64, len(paths))
	totals := make([]float64, len(paths))
	var firstYear, withdrawals, qols []float64
	survived := 0
	for i, p := range paths {
		finals[i] = p.FinalValue()
		totals[i] = p.TotalWithdrawn()
		if !p.Depleted() {
			survived++
		}
		if len(p.Years) > 0 {
			firstYear = append(firstYear, p.Years[0].Withdrawal)
		}
		for _, y := range p.Years {
			withdrawals = append(withdrawals, y.Withdrawal)
			if y.StartValue > 0 {
				qols = append(qols, y.QOLFactor)
			}
		}
	}

	s.SuccessRate = float64(survived) / float64(len(paths))
	s.FinalValueMean = money(mean(finals))
	s.FinalValueMedian = money(median(finals))
	s.FinalValueStdDev = money(stdDev(finals))
	s.FinalValuePercentiles = percentileRanges(finals)
	s.TotalWithdrawnMean = money(mean(totals))
	s.TotalWithdrawnMedian = money(median(totals))

	if len(withdrawals) > 0 {
		s.FirstYearWithdrawal = money(mean(firstYear))
		s.AnnualWithdrawalMean = money(mean(withdrawals))
		s.WithdrawalVolatility = money(stdDev(withdrawals))
	}
	if len(qols) > 0 {
		s.QOLMean = mean(qols)
		s.QOLStdDev = stdDev(qols)
		s.QOLMin, s.QOLMax = math.Inf(1), math.Inf(-1)
		for _, q := range qols {
			s.QOLMin = math.Min(s.QOLMin, q)
			s.QOLMax = math.Max(s.QOLMax, q)
		}
	}
	return s
}
