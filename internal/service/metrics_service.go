package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and keeps a few
// counters for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	sessionEvents   *prometheus.CounterVec
	sectionFailures *prometheus.CounterVec
	deduplicated    *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	backendCount         uint64
	backendFailures      uint64
	backendDurationTotal uint64
}

// MetricsSnapshot is the aggregate exposed on /health.
type MetricsSnapshot struct {
	Requests         uint64  `json:"requests"`
	AvgRequestMs     float64 `json:"avgRequestMs"`
	BackendCalls     uint64  `json:"backendCalls"`
	BackendFailures  uint64  `json:"backendFailures"`
	AvgBackendCallMs float64 `json:"avgBackendCallMs"`
	Goroutines       int     `json:"goroutines"`
}

// NewMetricsService registers the portal collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of portal HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of portal HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of REST backend calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_session_events_total",
		Help: "Login, logout and registration outcomes",
	}, []string{"event"})

	sectionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_dashboard_section_failures_total",
		Help: "Dashboard sections rendered in an error state",
	}, []string{"dashboard", "section"})

	deduplicated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_inflight_deduplicated_total",
		Help: "Submissions that shared an in-flight backend call",
	}, []string{"action"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, sessionEvents, sectionFailures, deduplicated, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		sessionEvents:   sessionEvents,
		sectionFailures: sectionFailures,
		deduplicated:    deduplicated,
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one served page or partial.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBackendRequest records one gateway round trip.
func (m *MetricsService) ObserveBackendRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(method, endpoint, strconv.Itoa(status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.backendCount, 1)
	atomic.AddUint64(&m.backendDurationTotal, uint64(duration.Nanoseconds()))
	if status >= http.StatusInternalServerError {
		atomic.AddUint64(&m.backendFailures, 1)
	}
}

func (m *MetricsService) RecordSessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}

// RecordSectionFailure counts a dashboard section that could not be loaded.
func (m *MetricsService) RecordSectionFailure(dashboard, section string) {
	if m == nil {
		return
	}
	m.sectionFailures.WithLabelValues(dashboard, section).Inc()
}

func (m *MetricsService) RecordDeduplicated(action string) {
	if m == nil {
		return
	}
	m.deduplicated.WithLabelValues(action).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Goroutines: runtime.NumGoroutine()}
	if m == nil {
		return snapshot
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	calls := atomic.LoadUint64(&m.backendCount)
	callDuration := atomic.LoadUint64(&m.backendDurationTotal)

	snapshot.Requests = requests
	snapshot.BackendCalls = calls
	snapshot.BackendFailures = atomic.LoadUint64(&m.backendFailures)
	if requests > 0 {
		snapshot.AvgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	if calls > 0 {
		snapshot.AvgBackendCallMs = float64(callDuration) / float64(calls) / float64(time.Millisecond)
	}
	return snapshot
}
