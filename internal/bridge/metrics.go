// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bridge

import "github.com/prometheus/client_golang/prometheus"

// Operation labels for bridge call metrics.
const (
	opBindClass   = "bindClass"
	opNew         = "new"
	opCreateProxy = "createProxy"
	opLoadLib     = "loadLib"
)

// Status labels for bridge call metrics.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusError    = "error"
)

// BridgeCalls counts luajava operations by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var BridgeCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "luahost_bridge_calls_total",
		Help: "Total number of luajava bridge calls made by scripts",
	},
	[]string{"operation", "status"},
)

// RegisterMetrics registers bridge package metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(BridgeCalls)
}

func recordCall(operation, status string) {
	BridgeCalls.WithLabelValues(operation, status).Inc()
}
