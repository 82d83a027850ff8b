// Package metrics registers the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels for workflow operations.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics bundles the collectors exported on /metrics.
type Metrics struct {
	Registry         *prometheus.Registry
	WorkflowOps      *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	CatalogAvailable prometheus.Gauge
	PendingRequests  prometheus.Gauge
}

// New creates a registry with process and Go runtime collectors plus the service instruments.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		WorkflowOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_operations_total",
			Help:      "Adoption workflow operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		CatalogAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_available_pets",
			Help:      "Pets currently available for adoption.",
		}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_pending_requests",
			Help:      "Adoption requests awaiting an admin decision.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.WorkflowOps,
		m.HTTPDuration,
		m.CatalogAvailable,
		m.PendingRequests,
	)
	return m
}

// NewNop returns instruments registered on a private registry, for tests and tools.
func NewNop() *Metrics {
	return New("test")
}

// ObserveWorkflow records one workflow operation outcome.
func (m *Metrics) ObserveWorkflow(operation, outcome string) {
	m.WorkflowOps.WithLabelValues(operation, outcome).Inc()
}
