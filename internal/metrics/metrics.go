// Package metrics collects per-run pipeline metrics and writes them in the
// Prometheus text exposition format, ready for a node_exporter textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "incomegrid"

// Run holds the metrics of a single pipeline run. It implements
// executor.Recorder.
type Run struct {
	registry *prometheus.Registry

	nodes        *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	runDuration  prometheus.Gauge
	lastSuccess  prometheus.Gauge
	runFailed    prometheus.Gauge
}

// NewRun creates an isolated registry for one run.
func NewRun() *Run {
	m := &Run{
		registry: prometheus.NewRegistry(),
		nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "node",
				Name:      "executions_total",
				Help:      "Graph nodes finished, by outcome.",
			},
			[]string{"kind", "type", "outcome"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "node",
				Name:      "duration_seconds",
				Help:      "Time spent executing a graph node.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "type", "outcome"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without errors.",
		}),
		runFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "failed",
			Help:      "1 if the last run failed, 0 otherwise.",
		}),
	}
	m.registry.MustRegister(m.nodes, m.nodeDuration, m.runDuration, m.lastSuccess, m.runFailed)
	return m
}

// ObserveNode records a finished, failed or skipped node.
func (m *Run) ObserveNode(kind, nodeType, outcome string, elapsed time.Duration) {
	m.nodes.WithLabelValues(kind, nodeType, outcome).Inc()
	m.nodeDuration.WithLabelValues(kind, nodeType, outcome).Observe(elapsed.Seconds())
}

// Finish records the overall result of the run.
func (m *Run) Finish(elapsed time.Duration, runErr error, now time.Time) {
	m.runDuration.Set(elapsed.Seconds())
	if runErr != nil {
		m.runFailed.Set(1)
		return
	}
	m.runFailed.Set(0)
	m.lastSuccess.Set(float64(now.Unix()))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Run) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile atomically writes the collected metrics to path, creating its
// directory if needed.
func (m *Run) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory for %s: %w", path, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
