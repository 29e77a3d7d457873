package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "complaints"

// Metrics holds the service's Prometheus collectors on a private registry.
// All record methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	errors          *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	created         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	escalations     *prometheus.CounterVec
	duplicateChecks *prometheus.CounterVec
	tickDuration    prometheus.Histogram
	tickComplaints  *prometheus.CounterVec
}

// NewMetrics initializes and registers collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Complaints accepted, by category.",
		}, []string{"category"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Applied status transitions.",
		}, []string{"from", "to"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Complaints escalated, by trigger.",
		}, []string{"trigger"}),
		duplicateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_checks_total",
			Help:      "Duplicate lookups by outcome.",
		}, []string{"outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "escalation_tick_duration_seconds",
			Help:      "Duration of escalation monitor sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		tickComplaints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalation_tick_complaints_total",
			Help:      "Complaints visited by the escalation monitor, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.errors,
		m.requestDuration,
		m.created,
		m.transitions,
		m.escalations,
		m.duplicateChecks,
		m.tickDuration,
		m.tickComplaints,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordCreated counts an accepted complaint.
func (m *Metrics) RecordCreated(category string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(category).Inc()
}

// RecordTransition counts an applied status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// RecordEscalation counts an escalation by trigger (monitor, on_read, manual).
func (m *Metrics) RecordEscalation(trigger string) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(trigger).Inc()
}

// RecordDuplicateCheck counts a lookup as "match" or "none".
func (m *Metrics) RecordDuplicateCheck(found int) {
	if m == nil {
		return
	}
	outcome := "none"
	if found > 0 {
		outcome = "match"
	}
	m.duplicateChecks.WithLabelValues(outcome).Inc()
}

// RecordTick observes one monitor sweep.
func (m *Metrics) RecordTick(duration time.Duration, scanned, escalated, failed int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(duration.Seconds())
	m.tickComplaints.WithLabelValues("scanned").Add(float64(scanned))
	m.tickComplaints.WithLabelValues("escalated").Add(float64(escalated))
	m.tickComplaints.WithLabelValues("failed").Add(float64(failed))
}
