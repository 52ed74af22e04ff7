// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package output

import "github.com/prometheus/client_golang/prometheus"

// SinkFailures counts sink panics recovered by the router.
// Use RegisterMetrics to register this with a Prometheus registry.
var SinkFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "luahost_sink_failures_total",
		Help: "Total number of output sink panics recovered by the router",
	},
	[]string{"kind"},
)

// RegisterMetrics registers output package metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SinkFailures)
}

func recordSinkFailure(kind Kind) {
	SinkFailures.WithLabelValues(kind.String()).Inc()
}
