// Package observability holds the gateway's Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the gateway
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	BreakerOpen        *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec

	// Retry queue metrics
	RetryQueueDepth     prometheus.Gauge
	RetryTasksEnqueued  *prometheus.CounterVec
	RetryTasksSucceeded *prometheus.CounterVec
	RetryTasksDropped   *prometheus.CounterVec

	// Saga metrics
	SagasCompleted   *prometheus.CounterVec
	SagasCompensated *prometheus.CounterVec
}

// NewCollector creates a metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		BreakerOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_open",
				Help:      "Whether the circuit for a downstream service is open (1) or closed (0)",
			},
			[]string{"service"},
		),
		BreakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_transitions_total",
				Help:      "Circuit breaker state transitions",
			},
			[]string{"service", "to"},
		),
		RetryQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "retry_queue_depth",
				Help:      "Number of deferred operations waiting in the retry queue",
			},
		),
		RetryTasksEnqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_tasks_enqueued_total",
				Help:      "Deferred operations handed to the retry queue",
			},
			[]string{"kind"},
		),
		RetryTasksSucceeded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_tasks_succeeded_total",
				Help:      "Deferred operations that eventually succeeded",
			},
			[]string{"kind"},
		),
		RetryTasksDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_tasks_dropped_total",
				Help:      "Deferred operations dropped after exhausting their timeout window",
			},
			[]string{"kind"},
		),
		SagasCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sagas_completed_total",
				Help:      "Workflow sagas that completed successfully",
			},
			[]string{"saga"},
		),
		SagasCompensated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sagas_compensated_total",
				Help:      "Workflow sagas that failed and were compensated",
			},
			[]string{"saga"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.BreakerOpen,
		c.BreakerTransitions,
		c.RetryQueueDepth,
		c.RetryTasksEnqueued,
		c.RetryTasksSucceeded,
		c.RetryTasksDropped,
		c.SagasCompleted,
		c.SagasCompensated,
	)
	return c
}

// Handler serves the collector's registry over HTTP
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request
func (c *Collector) ObserveRequest(method, route, status string, seconds float64) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// BreakerStateChanged records a circuit transition. Satisfies the breaker's
// state-change callback.
func (c *Collector) BreakerStateChanged(service string, open bool) {
	state := "closed"
	value := 0.0
	if open {
		state = "open"
		value = 1.0
	}
	c.BreakerOpen.WithLabelValues(service).Set(value)
	c.BreakerTransitions.WithLabelValues(service, state).Inc()
}

// TaskEnqueued implements the retry queue metrics sink
func (c *Collector) TaskEnqueued(kind string) {
	c.RetryTasksEnqueued.WithLabelValues(kind).Inc()
}

// TaskSucceeded implements the retry queue metrics sink
func (c *Collector) TaskSucceeded(kind string) {
	c.RetryTasksSucceeded.WithLabelValues(kind).Inc()
}

// TaskDropped implements the retry queue metrics sink
func (c *Collector) TaskDropped(kind string) {
	c.RetryTasksDropped.WithLabelValues(kind).Inc()
}

// QueueDepth implements the retry queue metrics sink
func (c *Collector) QueueDepth(depth int) {
	c.RetryQueueDepth.Set(float64(depth))
}

// SagaCompleted implements the saga metrics sink
func (c *Collector) SagaCompleted(saga string) {
	c.SagasCompleted.WithLabelValues(saga).Inc()
}

// SagaCompensated implements the saga metrics sink
func (c *Collector) SagaCompensated(saga string) {
	c.SagasCompensated.WithLabelValues(saga).Inc()
}
