package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attendify/attendify-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// cache operations and the absence sweep.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	sweepsTotal       prometheus.Counter
	sweepErrorsTotal  prometheus.Counter
	sweepDuration     prometheus.Histogram
	absencesMarked    prometheus.Counter
	sessionsReconcile prometheus.Counter
}

// NewMetricsService registers the collectors on a dedicated registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sweepsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sweeps_total",
		Help: "Total absence reconciliation sweeps executed",
	})

	sweepErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sweep_errors_total",
		Help: "Sweeps that encountered at least one failed unit",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_sweep_duration_seconds",
		Help:    "Duration of absence reconciliation sweeps",
		Buckets: prometheus.DefBuckets,
	})

	absencesMarked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_absences_marked_total",
		Help: "Synthetic absence records inserted by the sweep",
	})

	sessionsReconcile := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_sessions_reconciled_total",
		Help: "Ended sessions matched by the sweep",
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		sweepsTotal, sweepErrorsTotal, sweepDuration, absencesMarked, sessionsReconcile)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		sweepsTotal:       sweepsTotal,
		sweepErrorsTotal:  sweepErrorsTotal,
		sweepDuration:     sweepDuration,
		absencesMarked:    absencesMarked,
		sessionsReconcile: sessionsReconcile,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, _ time.Duration) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveSweep records the outcome of one reconciliation sweep.
func (m *MetricsService) ObserveSweep(summary models.SweepSummary, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.sweepsTotal.Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.absencesMarked.Add(float64(summary.StudentsMarkedAbsent))
	m.sessionsReconcile.Add(float64(summary.SessionsMatched))
	if failed {
		m.sweepErrorsTotal.Inc()
	}
}
