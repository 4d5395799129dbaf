package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as metric labels
const (
	OutcomeSuccess = "success"
)

// MetricsCollector handles Prometheus metrics collection. Each collector owns
// its registry so several can coexist in one process (tests, CLI and server).
type MetricsCollector struct {
	serviceName string
	registry    *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	generationsTotal    *prometheus.CounterVec
	generationDuration  *prometheus.HistogramVec
	rateLimitedTotal    *prometheus.CounterVec
	auditFailuresTotal  prometheus.Counter
	activeWorkspaces    prometheus.Gauge
	speechSegmentsTotal prometheus.Counter
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &MetricsCollector{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "route"},
		),
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "note_generations_total",
				Help:        "Total number of SOAP note generations by mode and outcome",
				ConstLabels: constLabels,
			},
			[]string{"mode", "outcome"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "note_generation_duration_seconds",
				Help:        "Duration of SOAP note generations in seconds",
				Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
				ConstLabels: constLabels,
			},
			[]string{"mode"},
		),
		rateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "rate_limited_requests_total",
				Help:        "Total number of requests rejected by the rate limiter",
				ConstLabels: constLabels,
			},
			[]string{"route"},
		),
		auditFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "generation_audit_failures_total",
			Help:        "Total number of generation audit records that could not be stored",
			ConstLabels: constLabels,
		}),
		activeWorkspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "active_workspaces",
			Help:        "Number of live workspace sessions",
			ConstLabels: constLabels,
		}),
		speechSegmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "speech_segments_total",
			Help:        "Total number of finalized dictation segments appended to transcripts",
			ConstLabels: constLabels,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.generationsTotal,
		m.generationDuration,
		m.rateLimitedTotal,
		m.auditFailuresTotal,
		m.activeWorkspaces,
		m.speechSegmentsTotal,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration records the outcome of one note generation. outcome is
// OutcomeSuccess or the failure class.
func (m *MetricsCollector) RecordGeneration(mode, outcome string, duration time.Duration) {
	m.generationsTotal.WithLabelValues(mode, outcome).Inc()
	m.generationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *MetricsCollector) RecordRateLimited(route string) {
	m.rateLimitedTotal.WithLabelValues(route).Inc()
}

// RecordAuditFailure records a generation audit write that failed
func (m *MetricsCollector) RecordAuditFailure() {
	m.auditFailuresTotal.Inc()
}

// SetActiveWorkspaces records the number of live workspace sessions
func (m *MetricsCollector) SetActiveWorkspaces(n int) {
	m.activeWorkspaces.Set(float64(n))
}

// RecordSpeechSegment records one appended dictation segment
func (m *MetricsCollector) RecordSpeechSegment() {
	m.speechSegmentsTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
