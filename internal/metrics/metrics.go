// Package metrics holds the Prometheus collectors of the notifier.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CyclesTotal counts finished fetch cycles.
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_notifier_cycles_total",
			Help: "Fetch cycles by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// CycleDuration observes how long cycles take.
	CycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_notifier_cycle_duration_seconds",
			Help:    "Wall time of a fetch cycle until all branches settled.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)

	// BranchFailuresTotal counts dataset branches that failed.
	BranchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_notifier_branch_failures_total",
			Help: "Dataset branches that failed, by error kind.",
		},
		[]string{"provider", "dataset", "kind"},
	)

	// DatasetsEmittedTotal counts datasets handed to the sinks.
	DatasetsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_notifier_datasets_emitted_total",
			Help: "Datasets emitted to sinks.",
		},
		[]string{"provider", "dataset"},
	)

	// NextDelaySeconds is the delay armed after the last cycle.
	NextDelaySeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_notifier_next_delay_seconds",
			Help: "Delay before the next scheduled cycle.",
		},
	)

	// Loaded reports whether any cycle has fully succeeded.
	Loaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_notifier_loaded",
			Help: "1 once any cycle has completed without failures.",
		},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, CycleDuration, BranchFailuresTotal, DatasetsEmittedTotal, NextDelaySeconds, Loaded)
}

// CycleCompleted records a finished cycle and its outcome.
func CycleCompleted(provider, outcome string, d time.Duration) {
	CyclesTotal.WithLabelValues(provider, outcome).Inc()
	CycleDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// BranchFailed records a failed dataset branch.
func BranchFailed(provider, dataset, kind string) {
	BranchFailuresTotal.WithLabelValues(provider, dataset, kind).Inc()
}

// DatasetEmitted records a dataset handed to the sinks.
func DatasetEmitted(provider, dataset string) {
	DatasetsEmittedTotal.WithLabelValues(provider, dataset).Inc()
}

// Scheduled records the delay the scheduler armed and whether it has loaded.
func Scheduled(next time.Duration, loaded bool) {
	NextDelaySeconds.Set(next.Seconds())
	if loaded {
		Loaded.Set(1)
	} else {
		Loaded.Set(0)
	}
}
