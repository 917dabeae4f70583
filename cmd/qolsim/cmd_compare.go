package main

import (
	"github.com/rpgo/qol-retirement/internal/config"
	"github.com/rpgo/qol-retirement/internal/output"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare withdrawal strategies under the same market paths",
		Long: `Run every strategy in the scenario's comparison section (or the default
Trinity, QOL and dynamic trio) against one seed and weigh what each
buys in enjoyment against what it costs in depletion risk.`,
		Example: `  qolsim compare -c scenario.yaml
  qolsim compare -c scenario.yaml -f csv -o comparison.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			scenario, cfg, err := a.loadScenario(cmd)
			if err != nil {
				return err
			}

			strategies, err := config.BuildComparison(scenario)
			if err != nil {
				return err
			}
			cmp, err := a.engine.CompareStrategies(cfg, strategies)
			if err != nil {
				return err
			}

			return a.emit(cmd, &output.Report{Scenario: scenario.Name, Comparison: cmp})
		},
	}
}
