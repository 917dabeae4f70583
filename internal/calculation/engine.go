package calculation

import (
	"context"
)

// CalculationEngine orchestrates simulations, depletion analysis, sweeps and comparisons.
type CalculationEngine struct {
	MonteCarlo      *MonteCarloEngine
	Analyzer        *DepletionAnalyzer
	Sweeper         *SensitivitySweeper
	GlidePathLoader *GlidePathLoader
	EnjoymentCurve  EnjoymentCurve // Weights withdrawals by age in comparisons
	Logger          Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	mc := NewMonteCarloEngine()
	sweeper := NewSensitivitySweeper(mc)
	return &CalculationEngine{
		MonteCarlo:      mc,
		Analyzer:        sweeper.Analyzer,
		Sweeper:         sweeper,
		GlidePathLoader: NewGlidePathLoader("data"),
		EnjoymentCurve:  DefaultEnjoymentCurve,
		Logger:          NopLogger{},
	}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
	ce.MonteCarlo.Logger = l
	ce.Sweeper.Logger = l
}

// SetRecorder routes run and sweep observations to r. If nil is provided, nothing is recorded.
func (ce *CalculationEngine) SetRecorder(r Recorder) {
	if r == nil {
		r = NopRecorder{}
	}
	ce.MonteCarlo.Recorder = r
	ce.Sweeper.Recorder = r
}

// SetWorkers sets the path and combination concurrency limits. Non-positive values keep the current limit.
func (ce *CalculationEngine) SetWorkers(paths, combinations int) {
	if paths > 0 {
		ce.MonteCarlo.Workers = paths
	}
	if combinations > 0 {
		ce.Sweeper.Workers = combinations
	}
}

// RunSimulation validates cfg and simulates its ensemble.
func (ce *CalculationEngine) RunSimulation(cfg SimulationConfig) (*PathEnsemble, error) {
	return ce.MonteCarlo.Run(cfg)
}

// AnalyzeDepletion computes the risk report for an ensemble.
func (ce *CalculationEngine) AnalyzeDepletion(ens *PathEnsemble) (*RiskReport, error) {
	return ce.Analyzer.Analyze(ens)
}

// SweepOneParameter varies one parameter; see SensitivitySweeper.SweepOne.
func (ce *CalculationEngine) SweepOneParameter(ctx context.Context, cfg SimulationConfig, name string, values []float64, objective Objective) (*SweepResult, error) {
	return ce.Sweeper.SweepOne(ctx, cfg, name, values, objective)
}

// SweepTwoParameters varies two parameters over their grid.
func (ce *CalculationEngine) SweepTwoParameters(ctx context.Context, cfg SimulationConfig, name1 string, values1 []float64, name2 string, values2 []float64, objective Objective) (*SweepResult, error) {
	return ce.Sweeper.SweepTwo(ctx, cfg, name1, values1, name2, values2, objective)
}

// SweepManyParameters evaluates the (possibly subsampled) product of ranges.
func (ce *CalculationEngine) SweepManyParameters(ctx context.Context, cfg SimulationConfig, ranges []ParameterRange, maxCombinations int, objectives []Objective) (*SweepResult, error) {
	return ce.Sweeper.SweepMany(ctx, cfg, ranges, maxCombinations, objectives)
}

// LoadGlidePath reads an age-indexed allocation table through the engine's loader.
func (ce *CalculationEngine) LoadGlidePath(filename string) (*GlidePath, error) {
	gp, err := ce.GlidePathLoader.Load(filename)
	if err != nil {
		ce.Logger.Warnf("failed to load glide path %s: %v", filename, err)
		return nil, err
	}
	ce.Logger.Debugf("loaded glide path %s", filename)
	return gp, nil
}

func (ce *CalculationEngine) enjoymentCurve() EnjoymentCurve {
	if ce.EnjoymentCurve == nil {
		return DefaultEnjoymentCurve
	}
	return ce.EnjoymentCurve
}
