package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/config"
	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/rpgo/qol-retirement/internal/output"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Vary assumptions and measure how the outcome responds",
		Long: `Re-run the scenario over a grid of parameter values. Every combination
shares the same seed, so differences come from the parameters alone.

Parameters come from the scenario's sweep section or from --param flags,
which replace it. Available parameters: ` + strings.Join(calculation.SweepParameterNames(), ", "),
		Example: `  qolsim sweep -c scenario.yaml
  qolsim sweep -c scenario.yaml --param withdrawal_rate=0.03,0.035,0.04,0.045
  qolsim sweep -c scenario.yaml --param return_mean=0,0.01,0.02 --param inflation_mean=0.02,0.03 -f csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			scenario, cfg, err := a.loadScenario(cmd)
			if err != nil {
				return err
			}

			settings, err := sweepSettings(cmd, scenario.Sweep)
			if err != nil {
				return err
			}
			plan, err := config.BuildSweepPlan(settings)
			if err != nil {
				return err
			}
			a.engine.SetWorkers(0, plan.Workers)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			res, runErr := runSweep(ctx, a.engine, cfg, plan)
			if res == nil {
				return runErr
			}
			if err := a.emit(cmd, &output.Report{Scenario: scenario.Name, Sweep: res}); err != nil {
				return err
			}
			if errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("sweep interrupted after %d of %d combinations: %w", res.Evaluated+res.Failed, res.TotalCombinations, runErr)
			}
			return runErr
		},
	}
	cmd.Flags().StringArray("param", nil, "Sweep parameter as name=v1,v2,... (repeatable)")
	cmd.Flags().String("mode", "", "Sweep mode: one, two or many (default from the parameter count)")
	cmd.Flags().String("objective", "", "Objective to optimize (depletion_rate, survival_rate, final_value_mean, final_value_median)")
	cmd.Flags().Int("max-combinations", 0, "Sample at most this many combinations in many mode")
	cmd.Flags().Int("sweep-workers", 0, "Concurrent combinations")
	return cmd
}

// sweepSettings merges the command-line sweep flags over the scenario's section.
func sweepSettings(cmd *cobra.Command, fromFile *domain.SweepSettings) (*domain.SweepSettings, error) {
	var settings domain.SweepSettings
	if fromFile != nil {
		settings = *fromFile
	}

	params, _ := cmd.Flags().GetStringArray("param")
	if len(params) > 0 {
		settings.Parameters = nil
		for _, p := range params {
			ps, err := parseParam(p)
			if err != nil {
				return nil, err
			}
			settings.Parameters = append(settings.Parameters, ps)
		}
		settings.Mode = ""
	}
	if len(settings.Parameters) == 0 {
		return nil, &calculation.ConfigurationError{Field: "sweep.parameters", Reason: "none given; add a sweep section or --param"}
	}

	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		settings.Mode = mode
	}
	if settings.Mode == "" {
		switch len(settings.Parameters) {
		case 1:
			settings.Mode = "one"
		case 2:
			settings.Mode = "two"
		default:
			settings.Mode = "many"
		}
	}
	if o, _ := cmd.Flags().GetString("objective"); o != "" {
		settings.Objective = o
	}
	if n, _ := cmd.Flags().GetInt("max-combinations"); n > 0 {
		settings.MaxCombinations = n
	}
	if n, _ := cmd.Flags().GetInt("sweep-workers"); n > 0 {
		settings.Workers = n
	}
	return &settings, nil
}

// parseParam reads "name=v1,v2,...".
func parseParam(s string) (domain.ParameterSettings, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(list) == "" {
		return domain.ParameterSettings{}, &calculation.ConfigurationError{Field: "param", Reason: fmt.Sprintf("%q must look like name=v1,v2", s)}
	}
	p := domain.ParameterSettings{Name: name}
	for _, raw := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return domain.ParameterSettings{}, &calculation.ConfigurationError{Field: "param", Reason: fmt.Sprintf("%s: invalid value %q", name, raw)}
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

func runSweep(ctx context.Context, engine *calculation.CalculationEngine, cfg calculation.SimulationConfig, plan *config.SweepPlan) (*calculation.SweepResult, error) {
	objective := calculation.ObjectiveDepletionRate
	if len(plan.Objectives) > 0 {
		objective = plan.Objectives[0]
	}

	switch plan.Mode {
	case calculation.SweepOneParameter:
		if len(plan.Ranges) != 1 {
			return nil, &calculation.ConfigurationError{Field: "sweep.parameters", Reason: fmt.Sprintf("one-parameter sweep needs exactly 1 parameter, got %d", len(plan.Ranges))}
		}
		r := plan.Ranges[0]
		return engine.SweepOneParameter(ctx, cfg, r.Name, r.Values, objective)
	case calculation.SweepTwoParameters:
		if len(plan.Ranges) != 2 {
			return nil, &calculation.ConfigurationError{Field: "sweep.parameters", Reason: fmt.Sprintf("two-parameter sweep needs exactly 2 parameters, got %d", len(plan.Ranges))}
		}
		r1, r2 := plan.Ranges[0], plan.Ranges[1]
		return engine.SweepTwoParameters(ctx, cfg, r1.Name, r1.Values, r2.Name, r2.Values, objective)
	default:
		return engine.SweepManyParameters(ctx, cfg, plan.Ranges, plan.MaxCombinations, plan.Objectives)
	}
}
