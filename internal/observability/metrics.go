// Package observability provides Prometheus metrics for simulation runs.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the simulator. It implements
// calculation.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	// Monte Carlo metrics
	RunsTotal     prometheus.Counter
	PathsTotal    prometheus.Counter
	DepletedPaths prometheus.Counter
	RunDuration   prometheus.Histogram
	LastSuccess   prometheus.Gauge

	// Sweep metrics
	Combinations *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "qol_retirement"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "runs_total",
			Help:      "Total number of Monte Carlo ensembles simulated",
		}),
		PathsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "paths_total",
			Help:      "Total number of simulated paths",
		}),
		DepletedPaths: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "depleted_paths_total",
			Help:      "Total number of simulated paths that depleted before the horizon",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one Monte Carlo ensemble in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "last_success_rate",
			Help:      "Success rate of the most recent ensemble",
		}),
		Combinations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "combinations_total",
			Help:      "Total number of sweep combinations by status",
		}, []string{"status"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one completed ensemble.
func (m *Metrics) ObserveRun(paths, depleted int, elapsed time.Duration) {
	m.RunsTotal.Inc()
	m.PathsTotal.Add(float64(paths))
	m.DepletedPaths.Add(float64(depleted))
	m.RunDuration.Observe(elapsed.Seconds())
	if paths > 0 {
		m.LastSuccess.Set(1 - float64(depleted)/float64(paths))
	}
}

// ObserveCombination records the outcome of one sweep combination.
func (m *Metrics) ObserveCombination(status string) {
	m.Combinations.WithLabelValues(status).Inc()
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
