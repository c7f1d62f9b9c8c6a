// ABOUTME: Prometheus metrics for remote record calls and list loads
// ABOUTME: Uses a private registry so repeated construction in tests never collides
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors used across the workspace.
type Metrics struct {
	// Registry owns the collectors; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	listLoads      *prometheus.CounterVec
}

// NewMetrics registers all collectors in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		remoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdesk_remote_calls_total",
				Help: "Remote record calls by table, operation and outcome.",
			},
			[]string{"table", "op", "outcome"},
		),
		remoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crmdesk_remote_call_duration_seconds",
				Help:    "Duration of remote record calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table", "op"},
		),
		listLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdesk_list_loads_total",
				Help: "List view loads by entity and resulting state.",
			},
			[]string{"entity", "state"},
		),
	}
}

// RecordRemoteCall counts one remote call and observes its latency.
// A nil receiver is a no-op so callers can run without metrics.
func (m *Metrics) RecordRemoteCall(table, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(table, op, outcome).Inc()
	m.remoteDuration.WithLabelValues(table, op).Observe(d.Seconds())
}

// RecordListLoad counts a finished list view load.
func (m *Metrics) RecordListLoad(entity, state string) {
	if m == nil {
		return
	}
	m.listLoads.WithLabelValues(entity, state).Inc()
}
