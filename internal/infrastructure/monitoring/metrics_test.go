package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two collectors in one process must not panic on duplicate registration
	a := NewMetrics()
	b := NewMetrics()

	a.RecordSandboxRun(OutcomeSuccess, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SandboxRuns.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SandboxRuns.WithLabelValues(OutcomeSuccess)))
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("GET", "/health", "200", 10*time.Millisecond, 12)
	m.RecordHTTPRequest("GET", "/quizzes/:id", "404", 30*time.Millisecond, 12)
	m.RecordSandboxRun(OutcomeSuccess, time.Millisecond)
	m.RecordSandboxRun(OutcomeError, time.Millisecond)
	m.RecordQuizSubmission("perfect")
	m.SetWidgetsActive(KindSandbox, 3)
	m.SetWidgetsActive(KindQuiz, 2)
	m.IncWSConnections()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	assert.InDelta(t, 20.0, snap.AvgLatencyMS, 0.001)
	assert.Equal(t, int64(2), snap.SandboxRuns)
	assert.Equal(t, int64(1), snap.SandboxFailures)
	assert.Equal(t, int64(1), snap.QuizSubmissions)
	assert.Equal(t, int64(3), snap.ActiveSandboxes)
	assert.Equal(t, int64(2), snap.ActiveQuizzes)
	assert.Equal(t, int64(1), snap.ActiveConnections)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSandboxRun(OutcomeTimeout, time.Second)
		m.RecordCopy(OutcomeError)
		m.SetWidgetsActive(KindQuiz, 1)
		m.IncWSConnections()
		NewTimer(m, "quiz", "submit").Stop("success")
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/sandboxes/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sandboxes/sbx_123", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/sandboxes/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "learnreact_http_requests_total"))
	assert.True(t, strings.Contains(w.Body.String(), "learnreact_uptime_seconds"))
}
