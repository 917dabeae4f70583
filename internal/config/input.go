package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of scenario files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML (or JSON) file. A relative
// glide_path.table_file is resolved against the scenario file's directory.
func (ip *InputParser) LoadFromFile(filename string) (*domain.ScenarioFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var scenario domain.ScenarioFile
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if tf := scenario.GlidePath.TableFile; tf != "" && !filepath.IsAbs(tf) {
		scenario.GlidePath.TableFile = filepath.Join(filepath.Dir(filename), tf)
	}

	// Validate the configuration
	if err := ip.ValidateConfiguration(&scenario); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &scenario, nil
}

// ValidateConfiguration validates the loaded scenario. Numeric ranges that
// the engine enforces are checked again when the scenario is built.
func (ip *InputParser) ValidateConfiguration(scenario *domain.ScenarioFile) error {
	if err := ip.validateSimulation(&scenario.Simulation); err != nil {
		return fmt.Errorf("simulation validation failed: %w", err)
	}

	if err := ip.validateMarket(&scenario.Market); err != nil {
		return fmt.Errorf("market validation failed: %w", err)
	}

	if err := ip.validateStrategy("strategy", &scenario.Strategy); err != nil {
		return fmt.Errorf("strategy validation failed: %w", err)
	}

	labels := make(map[string]bool, len(scenario.Comparison.Strategies))
	for i, s := range scenario.Comparison.Strategies {
		if err := ip.validateStrategy(fmt.Sprintf("comparison.strategies[%d]", i), &s); err != nil {
			return fmt.Errorf("comparison validation failed: %w", err)
		}
		label := strategyLabel(s)
		if labels[label] {
			return fmt.Errorf("comparison validation failed: %w", invalid("comparison.strategies", "duplicate label %q", label))
		}
		labels[label] = true
	}

	if scenario.Sweep != nil {
		if err := ip.validateSweep(scenario.Sweep); err != nil {
			return fmt.Errorf("sweep validation failed: %w", err)
		}
	}

	// Building catches the remaining range checks without running anything.
	if _, err := BuildSimulationConfig(scenario); err != nil {
		return err
	}

	return nil
}

func (ip *InputParser) validateSimulation(sim *domain.SimulationSettings) error {
	if !sim.StartingValue.IsPositive() {
		return invalid("simulation.starting_value", "must be positive")
	}
	if sim.StartingAge != 0 && (sim.StartingAge < 18 || sim.StartingAge > 120) {
		return invalid("simulation.starting_age", "must be between 18 and 120, got %d", sim.StartingAge)
	}
	if sim.HorizonYears != nil && (*sim.HorizonYears < 0 || *sim.HorizonYears > 100) {
		return invalid("simulation.horizon_years", "must be between 0 and 100, got %d", *sim.HorizonYears)
	}
	if sim.NumPaths != nil && *sim.NumPaths <= 0 {
		return invalid("simulation.n_paths", "must be positive, got %d", *sim.NumPaths)
	}
	if sim.Workers < 0 {
		return invalid("simulation.workers", "cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateMarket(m *domain.MarketAssumptions) error {
	mode := strings.ToLower(m.Mode)
	switch mode {
	case "", string(calculation.MarketIndependent), string(calculation.MarketCorrelated):
	default:
		return invalid("market.mode", "must be 'independent' or 'correlated', got %q", m.Mode)
	}
	switch m.Preset {
	case "", presetTwoAsset, presetFourAsset:
	default:
		return invalid("market.preset", "must be '%s' or '%s', got %q", presetTwoAsset, presetFourAsset, m.Preset)
	}
	if mode == string(calculation.MarketIndependent) && (m.Preset != "" || len(m.Assets) > 0) {
		return invalid("market.mode", "independent mode does not take assets or a preset")
	}
	if len(m.Assets) > 0 && len(m.Correlation) == 0 {
		return invalid("market.correlation", "is required when assets are listed")
	}
	for i, a := range m.Assets {
		if a.Name == "" {
			return invalid("market.assets", "asset %d has no name", i)
		}
	}
	return nil
}

func (ip *InputParser) validateStrategy(field string, s *domain.StrategySettings) error {
	kind := calculation.KindQOLPhased
	if s.Kind != "" {
		k, err := calculation.ParseStrategyKind(s.Kind)
		if err != nil {
			return err
		}
		kind = k
	}
	if kind != calculation.KindQOLPhased {
		if s.Phase1Rate != nil || s.Phase2Rate != nil || s.Phase3Rate != nil || s.Phase1End != nil || s.Phase2End != nil {
			return invalid(field, "phase settings only apply to qol_phased, got %s", kind)
		}
	}
	return nil
}

func (ip *InputParser) validateSweep(s *domain.SweepSettings) error {
	mode, err := parseSweepMode(s.Mode)
	if err != nil {
		return err
	}
	switch {
	case mode == calculation.SweepOneParameter && len(s.Parameters) != 1:
		return invalid("sweep.parameters", "one-parameter sweep needs exactly 1 parameter, got %d", len(s.Parameters))
	case mode == calculation.SweepTwoParameters && len(s.Parameters) != 2:
		return invalid("sweep.parameters", "two-parameter sweep needs exactly 2 parameters, got %d", len(s.Parameters))
	case len(s.Parameters) == 0:
		return invalid("sweep.parameters", "at least one parameter is required")
	}

	known := make(map[string]bool)
	for _, name := range calculation.SweepParameterNames() {
		known[name] = true
	}
	for _, p := range s.Parameters {
		if !known[p.Name] {
			return invalid("sweep.parameters", "unknown parameter %q", p.Name)
		}
		if len(p.Values) == 0 {
			return invalid("sweep.parameters", "parameter %q has no values", p.Name)
		}
	}

	if s.Objective != "" {
		if _, err := calculation.ParseObjective(s.Objective); err != nil {
			return err
		}
	}
	for _, o := range s.Objectives {
		if _, err := calculation.ParseObjective(o); err != nil {
			return err
		}
	}
	if s.MaxCombinations < 0 || s.Workers < 0 {
		return invalid("sweep", "max_combinations and workers cannot be negative")
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return &calculation.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
