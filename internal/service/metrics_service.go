package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors exposed on /metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storagePing     *prometheus.HistogramVec
	reviews         *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	userActions     *prometheus.CounterVec
	logins          *prometheus.CounterVec
	uploadedImages  prometheus.Counter
}

// NewMetricsService registers the HTTP, cache and workflow collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		storagePing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storage_ping_duration_seconds",
			Help:    "Duration of readiness pings against backing services",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sample_reviews_total",
			Help: "Lab reviews recorded, by outcome",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Accounts registered, by role and whether they were auto-approved",
		}, []string{"role", "approved"}),
		userActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_admin_actions_total",
			Help: "Administrator actions applied to accounts",
		}, []string{"action"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts, by result code",
		}, []string{"result"}),
		uploadedImages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sample_images_uploaded_total",
			Help: "Sample images stored",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHits, m.cacheMisses,
		m.storagePing, m.reviews, m.registrations, m.userActions, m.logins, m.uploadedImages,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoragePing records a readiness ping against a backend.
func (m *MetricsService) ObserveStoragePing(backend string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storagePing.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordReview counts a lab review by outcome.
func (m *MetricsService) RecordReview(outcome string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts a new account.
func (m *MetricsService) RecordRegistration(role string, approved bool) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(role, strconv.FormatBool(approved)).Inc()
}

// RecordUserAction counts an administrator action.
func (m *MetricsService) RecordUserAction(action string) {
	if m == nil {
		return
	}
	m.userActions.WithLabelValues(action).Inc()
}

// RecordLogin counts a login attempt by result code.
func (m *MetricsService) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordImageUpload counts a stored sample image.
func (m *MetricsService) RecordImageUpload() {
	if m == nil {
		return
	}
	m.uploadedImages.Inc()
}
