package output

import (
	"io"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
)

// Report is what one command produced. Exactly one of Simulation,
// Comparison or Sweep is set.
type Report struct {
	Scenario   string                     `json:"scenario,omitempty"`
	Simulation *SimulationReport          `json:"simulation,omitempty"`
	Comparison *domain.StrategyComparison `json:"comparison,omitempty"`
	Sweep      *calculation.SweepResult   `json:"sweep,omitempty"`
}

// SimulationReport is a single-strategy run with its depletion analysis.
// The per-path detail is kept for the CSV exports but not serialized.
type SimulationReport struct {
	Config  calculation.SimulationConfig `json:"config"`
	Seed    int64                        `json:"seed"`
	Summary calculation.EnsembleSummary  `json:"summary"`
	Risk    *calculation.RiskReport      `json:"risk"`

	ensemble *calculation.PathEnsemble
}

// NewSimulationReport pairs an ensemble with its risk report.
func NewSimulationReport(ens *calculation.PathEnsemble, risk *calculation.RiskReport) *SimulationReport {
	return &SimulationReport{
		Config:   ens.Config,
		Seed:     ens.Seed,
		Summary:  ens.Summary,
		Risk:     risk,
		ensemble: ens,
	}
}

// Paths returns the simulated paths, or nil when the report was decoded.
func (s *SimulationReport) Paths() []calculation.PathResult {
	if s.ensemble == nil {
		return nil
	}
	return s.ensemble.Paths
}

// Kind names the populated section.
func (r *Report) Kind() string {
	switch {
	case r.Simulation != nil:
		return "simulation"
	case r.Comparison != nil:
		return "comparison"
	case r.Sweep != nil:
		return "sweep"
	}
	return ""
}

// GenerateReport renders report in the named format to w.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f, err := ResolveFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
