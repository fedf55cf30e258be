// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kloza"

// Conflict sources for KollabConflicts.
const (
	ConflictPrecheck   = "precheck"
	ConflictConstraint = "constraint"
)

// Metrics owns its registry so several servers can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts HTTP requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec

	// EntitiesCreated counts persisted entities.
	// Labels: entity (idea, kollab, discussion)
	EntitiesCreated *prometheus.CounterVec

	// KollabConflicts counts rejected kollab creations.
	// Labels: source (precheck, constraint)
	KollabConflicts *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EntitiesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_created_total",
			Help:      "Total entities persisted by type",
		}, []string{"entity"}),
		KollabConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kollab_conflicts_total",
			Help:      "Kollab creations rejected because an active kollab already exists",
		}, []string{"source"}),
	}
}

// Created records a persisted entity. Safe on a nil receiver.
func (m *Metrics) Created(entity string) {
	if m == nil {
		return
	}
	m.EntitiesCreated.WithLabelValues(entity).Inc()
}

// Conflict records a rejected kollab creation. Safe on a nil receiver.
func (m *Metrics) Conflict(source string) {
	if m == nil {
		return
	}
	m.KollabConflicts.WithLabelValues(source).Inc()
}

// ObserveRequest records one finished HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
