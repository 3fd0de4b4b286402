// Package metrics exposes Prometheus collectors for the document service.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taxdocs"

// UnknownLabel replaces form and category ids that are not in the catalog.
const UnknownLabel = "unknown"

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	requirementResolutions *prometheus.CounterVec
	requirementCount       *prometheus.HistogramVec
	validationsTotal       *prometheus.CounterVec
	qualityScore           *prometheus.HistogramVec
	transitionsTotal       *prometheus.CounterVec
	checksTotal            *prometheus.CounterVec
	checkDuration          *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		}),
		requirementResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requirements",
			Name:      "resolutions_total",
			Help:      "Requirement resolutions by form type and outcome.",
		}, []string{"form_type", "outcome"}),
		requirementCount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requirements",
			Name:      "documents",
			Help:      "Number of documents in a resolved requirement set.",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 12, 16, 24},
		}, []string{"form_type", "kind"}),
		validationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "results_total",
			Help:      "Document validations by category and validity.",
		}, []string{"category", "valid"}),
		qualityScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "quality_score",
			Help:      "Distribution of document quality scores.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"category"}),
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Lifecycle transition attempts by source, target and result.",
		}, []string{"from", "to", "result"}),
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "checks_total",
			Help:      "Lifecycle check executions by check and result.",
		}, []string{"check", "result"}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "check_duration_seconds",
			Help:      "Lifecycle check duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"check"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency labelled by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordRequirements(formType string, required, optional int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.requirementResolutions.WithLabelValues(formType, "error").Inc()
		return
	}
	m.requirementResolutions.WithLabelValues(formType, "ok").Inc()
	m.requirementCount.WithLabelValues(formType, "required").Observe(float64(required))
	m.requirementCount.WithLabelValues(formType, "optional").Observe(float64(optional))
}

func (m *Metrics) RecordValidation(category string, valid bool, score float64) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(category, strconv.FormatBool(valid)).Inc()
	m.qualityScore.WithLabelValues(category).Observe(score)
}

// RecordTransition counts a transition attempt. result is one of success,
// checks_failed, invalid, conflict or error.
func (m *Metrics) RecordTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *Metrics) RecordCheck(check string, passed bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "passed"
	if !passed {
		result = "failed"
	}
	m.checksTotal.WithLabelValues(check, result).Inc()
	m.checkDuration.WithLabelValues(check).Observe(d.Seconds())
}
