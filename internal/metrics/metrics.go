// Package metrics owns the Prometheus registry and the collectors the
// service updates.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "civic"

// Metrics groups every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	issuesSubmitted *prometheus.CounterVec
	duplicates      prometheus.Counter
	statusChanges   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	analysisSeconds *prometheus.HistogramVec
}

// New registers all collectors; withRuntime adds the Go and process collectors
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		issuesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "issues_submitted_total",
			Help: "Accepted issue reports by category and priority level.",
		}, []string{"category", "priority"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "duplicates_detected_total",
			Help: "Submissions flagged as likely duplicates.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "status_changes_total",
			Help: "Status transitions by new status.",
		}, []string{"status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Analytics cache lookups by result.",
		}, []string{"result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "events", Name: "published_total",
			Help: "Issue events by type and outcome.",
		}, []string{"type", "outcome"}),
		analysisSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "analytics", Name: "duration_seconds",
			Help:    "Time spent in analytics passes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
	}

	reg.MustRegister(
		m.requests, m.requestDuration, m.issuesSubmitted, m.duplicates,
		m.statusChanges, m.cacheLookups, m.eventsPublished, m.analysisSeconds,
	)
	return m
}

// Registry exposes the underlying registry for scraping in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by matched route
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()

		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// IssueSubmitted counts an accepted report
func (m *Metrics) IssueSubmitted(category, priority string, duplicate bool) {
	m.issuesSubmitted.WithLabelValues(category, priority).Inc()
	if duplicate {
		m.duplicates.Inc()
	}
}

// StatusChanged counts a transition into status
func (m *Metrics) StatusChanged(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// CacheLookup counts a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// EventPublished counts a publish attempt for eventType
func (m *Metrics) EventPublished(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, outcome).Inc()
}

// ObserveAnalysis records how long an analytics pass took
func (m *Metrics) ObserveAnalysis(pass string, d time.Duration) {
	m.analysisSeconds.WithLabelValues(pass).Observe(d.Seconds())
}
