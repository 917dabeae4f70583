package main

import (
	"github.com/rpgo/qol-retirement/internal/output"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run the scenario's strategy and report depletion risk",
		Long: `Simulate the configured withdrawal strategy over many market paths and
report final values, withdrawals, survival and depletion timing.`,
		Example: `  qolsim simulate -c scenario.yaml
  qolsim simulate -c scenario.yaml --paths 10000 --seed 42 -f json -o report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			scenario, cfg, err := a.loadScenario(cmd)
			if err != nil {
				return err
			}

			ens, err := a.engine.RunSimulation(cfg)
			if err != nil {
				return err
			}
			risk, err := a.engine.AnalyzeDepletion(ens)
			if err != nil {
				return err
			}

			return a.emit(cmd, &output.Report{
				Scenario:   scenario.Name,
				Simulation: output.NewSimulationReport(ens, risk),
			})
		},
	}
}
