// Package metrics provides Prometheus collectors for identifier allocation and lookups.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pastebin"

// Lookup outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeUnknown = "unknown"
	OutcomeRemoved = "removed"
)

// Metrics holds application collectors registered on a private registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry          *prometheus.Registry
	submissions       *prometheus.CounterVec
	allocationRetries *prometheus.CounterVec
	allocationFailed  *prometheus.CounterVec
	lookups           *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions by entry kind and whether a new identifier was minted.",
		}, []string{"kind", "created"}),
		allocationRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_retries_total",
			Help:      "Drawn identifiers that collided with existing ones.",
		}, []string{"kind"}),
		allocationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_exhausted_total",
			Help:      "Submissions rejected after running out of tries.",
		}, []string{"kind"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Identifier lookups by entry kind and outcome.",
		}, []string{"kind", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency by transport, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "route", "status"}),
	}
	reg.MustRegister(
		m.submissions, m.allocationRetries, m.allocationFailed, m.lookups, m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	// responses are compressed by the HTTP middleware
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry, DisableCompression: true})
}

// ObserveSubmission counts a finished submission.
func (m *Metrics) ObserveSubmission(kind string, created bool) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, strconv.FormatBool(created)).Inc()
}

// ObserveRetry counts an identifier collision.
func (m *Metrics) ObserveRetry(kind string) {
	if m == nil {
		return
	}
	m.allocationRetries.WithLabelValues(kind).Inc()
}

// ObserveExhausted counts a submission that ran out of tries.
func (m *Metrics) ObserveExhausted(kind string) {
	if m == nil {
		return
	}
	m.allocationFailed.WithLabelValues(kind).Inc()
}

// ObserveLookup counts a resolved or failed lookup.
func (m *Metrics) ObserveLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(kind, outcome).Inc()
}

// ObserveRequest records the latency of a served request.
func (m *Metrics) ObserveRequest(transport, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(transport, route, status).Observe(d.Seconds())
}
