package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roombook/backend/internal/domain/shared"
)

// Outcome label values
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
)

// Metrics owns a private Prometheus registry and the service's collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpInFlight      prometheus.Gauge
	domainEvents      *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	schedulerRuns     *prometheus.CounterVec
	schedulerDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors under namespace
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "roombook"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published by type.",
		}, []string{"event_type"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "webhook_events_total",
			Help:      "Payment provider webhook events by type and outcome.",
		}, []string{"event_type", "outcome"}),
		schedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Background job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		schedulerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Background job run duration.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 30},
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.domainEvents,
		m.webhookEvents,
		m.schedulerRuns,
		m.schedulerDuration,
	)
	return m
}

// Registry exposes the registry, e.g. for additional collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest records one served request. route should be the
// template ("/api/v1/rooms/:id") so label cardinality stays bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RequestStarted increments the in-flight gauge; call the returned func when done
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// RecordWebhookEvent counts one processed webhook delivery
func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// ObserveSchedulerRun records a background job run
func (m *Metrics) ObserveSchedulerRun(job string, d time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.schedulerRuns.WithLabelValues(job, outcome).Inc()
	m.schedulerDuration.WithLabelValues(job).Observe(d.Seconds())
}

// Handle counts domain events; Metrics subscribes to the event bus as a wildcard handler
func (m *Metrics) Handle(_ context.Context, event shared.DomainEvent) error {
	m.domainEvents.WithLabelValues(event.EventType()).Inc()
	return nil
}

// EventTypes returns nil to receive every event
func (m *Metrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*Metrics)(nil)
