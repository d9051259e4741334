package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles the server's Prometheus collectors on a private registry so
// tests can instantiate it repeatedly.
type Metrics struct {
	Registry *prometheus.Registry

	ConnectionsActive prometheus.Gauge
	TablesOpen        prometheus.Gauge
	HandsStarted      prometheus.Counter
	ActionsTotal      *prometheus.CounterVec
	BroadcastFailures prometheus.Counter
}

// NewMetrics builds and registers the collector set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamecartas_connections_active",
			Help: "Number of open WebSocket connections.",
		}),
		TablesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamecartas_tables_open",
			Help: "Number of live table sessions.",
		}),
		HandsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamecartas_hands_started_total",
			Help: "Hands dealt since start.",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamecartas_actions_total",
			Help: "Player actions applied, by action.",
		}, []string{"action"}),
		BroadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamecartas_broadcast_failures_total",
			Help: "Connections dropped for failing to accept a broadcast.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.TablesOpen,
		m.HandsStarted,
		m.ActionsTotal,
		m.BroadcastFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
