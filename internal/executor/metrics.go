// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScriptRuns counts finished runs by terminal state.
// Use RegisterMetrics to register this with a Prometheus registry.
var ScriptRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "luahost_script_runs_total",
		Help: "Total number of script runs by outcome",
	},
	[]string{"outcome"},
)

// ScriptRunDuration observes how long runs take, preparation included.
// Use RegisterMetrics to register this with a Prometheus registry.
var ScriptRunDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "luahost_script_run_duration_seconds",
		Help:    "Script run duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers executor package metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ScriptRuns)
	reg.MustRegister(ScriptRunDuration)
}

func recordRun(outcome State, duration time.Duration) {
	ScriptRuns.WithLabelValues(outcome.String()).Inc()
	ScriptRunDuration.Observe(duration.Seconds())
}
