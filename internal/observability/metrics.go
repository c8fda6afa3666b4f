package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce        sync.Once
	registry            *prometheus.Registry
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	workflowTransitions *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_requests_total",
			Help: "Total number of API requests served, by caller role.",
		}, []string{"method", "route", "status", "role"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qbank_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_errors_total",
			Help: "Total number of error responses returned by the API, by caller role.",
		}, []string{"method", "route", "status", "role"})

		workflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_workflow_transitions_total",
			Help: "Committed question workflow transitions by action and resulting status.",
		}, []string{"action", "status"})

		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			workflowTransitions,
		)
	})
}

// Registry returns the registry scraped by MetricsHandler.
func Registry() *prometheus.Registry {
	RegisterMetrics()
	return registry
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// WorkflowTransitions exposes the counter for committed question transitions.
func WorkflowTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return workflowTransitions
}
