package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordReview("approved")
	m.RecordReview("approved")
	m.RecordReview("rejected")
	m.RecordRegistration("patient", true)
	m.RecordLogin("PENDING_APPROVAL")
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/lab_tech/samples", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reviews.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("patient", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("PENDING_APPROVAL")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sample_reviews_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordReview("approved")
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveStoragePing("mongo", time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
