// Package metrics holds the Prometheus collectors devstack records while it
// runs commands, probes endpoints and drives start attempts. They register on
// the default registry and are exposed by `devstack serve --metrics-addr`.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devstack_commands_total",
			Help: "External commands executed, by executable and result (ok, exit_error, exec_error, timeout)",
		},
		[]string{"executable", "result"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devstack_command_duration_seconds",
			Help:    "Wall time of external commands",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 120},
		},
		[]string{"executable"},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devstack_probes_total",
			Help: "HTTP health probes, by outcome (reachable, unexpected_status, unreachable)",
		},
		[]string{"outcome"},
	)

	StartAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devstack_start_attempts_total",
			Help: "Start mechanisms attempted per service, by strategy and result (ok, failed, timeout)",
		},
		[]string{"service", "strategy", "result"},
	)

	ServiceUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "devstack_service_up",
			Help: "1 when the last inspection classified the service as running",
		},
		[]string{"service"},
	)
)
