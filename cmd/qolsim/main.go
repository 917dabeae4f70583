package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qolsim",
		Short: "Quality-of-life retirement withdrawal simulator",
		Long: `qolsim runs Monte Carlo simulations of retirement withdrawal strategies.

It front-loads spending into the years a retiree is most able to enjoy it,
measures how often the portfolio runs out and when, compares strategies
side by side, and sweeps assumptions to show how sensitive the outcome is.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Scenario YAML file")
	rootCmd.PersistentFlags().StringP("format", "f", "console", "Output format (console, json, csv)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Write the report to this file or directory instead of stdout")
	rootCmd.PersistentFlags().String("csv-dir", "", "Also write the CSV export set to this directory")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	rootCmd.PersistentFlags().Int64("seed", 0, "Override the scenario seed (0 keeps the scenario value)")
	rootCmd.PersistentFlags().Int("paths", 0, "Override the number of simulated paths")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent path simulations (0 keeps the default)")
	rootCmd.PersistentFlags().String("glide-path", "", "CSV glide path table overriding the scenario's")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newCompareCmd(),
		newSweepCmd(),
	)
	return rootCmd
}

// formatError makes configuration problems recognizable whatever wrapped them.
func formatError(err error) string {
	msg := err.Error()
	if errors.Is(err, calculation.ErrConfiguration) && !strings.Contains(msg, calculation.ErrConfiguration.Error()) {
		return calculation.ErrConfiguration.Error() + ": " + msg
	}
	return "Error: " + msg
}
