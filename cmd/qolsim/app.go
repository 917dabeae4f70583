package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/config"
	"github.com/rpgo/qol-retirement/internal/domain"
	"github.com/rpgo/qol-retirement/internal/logging"
	"github.com/rpgo/qol-retirement/internal/observability"
	"github.com/rpgo/qol-retirement/internal/output"
	"github.com/spf13/cobra"
)

// app is the per-invocation wiring shared by the run commands.
type app struct {
	engine  *calculation.CalculationEngine
	metrics *observability.Metrics
	logger  *slog.Logger
}

func newApp(cmd *cobra.Command) *app {
	level, _ := cmd.Flags().GetString("log-level")
	workers, _ := cmd.Flags().GetInt("workers")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	logger := logging.NewLogger(level, cmd.ErrOrStderr())
	engine := calculation.NewCalculationEngine()
	engine.GlidePathLoader = calculation.NewGlidePathLoader("")
	engine.SetLogger(logging.NewEngineLogger(logger, "engine"))
	engine.SetWorkers(workers, 0)

	a := &app{engine: engine, logger: logger}
	if metricsFile != "" {
		a.metrics = observability.NewMetrics("")
		engine.SetRecorder(a.metrics)
	}
	return a
}

// loadScenario reads --config and applies the command-line overrides.
func (a *app) loadScenario(cmd *cobra.Command) (*domain.ScenarioFile, calculation.SimulationConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, calculation.SimulationConfig{}, fmt.Errorf("--config is required")
	}

	scenario, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, calculation.SimulationConfig{}, err
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		scenario.Simulation.Seed = seed
	}
	if paths, _ := cmd.Flags().GetInt("paths"); paths > 0 {
		scenario.Simulation.NumPaths = &paths
	}

	cfg, err := config.BuildSimulationConfig(scenario)
	if err != nil {
		return nil, cfg, err
	}
	if glideFile, _ := cmd.Flags().GetString("glide-path"); glideFile != "" {
		glide, err := a.engine.LoadGlidePath(glideFile)
		if err != nil {
			return nil, cfg, &calculation.ConfigurationError{Field: "glide-path", Reason: err.Error()}
		}
		cfg.GlidePath = glide
	}
	if scenario.Simulation.Workers > 0 {
		if w, _ := cmd.Flags().GetInt("workers"); w == 0 {
			a.engine.SetWorkers(scenario.Simulation.Workers, 0)
		}
	}

	a.logger.Info("scenario loaded", "file", path, "paths", cfg.NumPaths, "horizon", cfg.HorizonYears, "strategy", cfg.Strategy.Kind())
	return scenario, cfg, nil
}

// emit renders the report and writes the optional CSV set and metrics file.
func (a *app) emit(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	csvDir, _ := cmd.Flags().GetString("csv-dir")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	f, err := output.ResolveFormatter(format)
	if err != nil {
		return err
	}
	if outPath == "" {
		data, err := f.Format(report)
		if err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
	} else {
		written, err := output.WriteFormatted(f, report, outPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", written)
	}

	if csvDir != "" {
		files, err := (&output.MonteCarloCSVReport{Report: report}).GenerateAllCSVReports(csvDir)
		if err != nil {
			return err
		}
		a.logger.Info("csv reports written", "dir", csvDir, "files", len(files))
	}

	if metricsFile != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// signalContext is cancelled on the first interrupt. The returned stop
// function releases the signal handler.
func signalContext(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}
