package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/metrics"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordRequirements("1040", 1, 1, nil)
		m.RecordValidation("W2", true, 1)
		m.RecordTransition("UPLOADED", "PROCESSING", "success")
		m.RecordCheck("virus_scan", true, time.Millisecond)
	})
}

func TestMetricsRecording(t *testing.T) {
	m := metrics.New()
	m.RecordRequirements("1040", 6, 3, nil)
	m.RecordRequirements("1040", 0, 0, errors.New("boom"))
	m.RecordValidation("W2", false, 0.59)
	m.RecordTransition("UPLOADED", "PROCESSING", "checks_failed")
	m.RecordCheck("virus_scan", false, 5*time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(),
		"taxdocs_requirements_resolutions_total",
		"taxdocs_validation_results_total",
		"taxdocs_lifecycle_transitions_total",
		"taxdocs_lifecycle_checks_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/documents/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `taxdocs_http_requests_total{method="GET",route="/documents/:id",status="204"} 1`)
}
