package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
)

// MetricsReport is a JSON view of the counters plus component state.
type MetricsReport struct {
	Timestamp time.Time                  `json:"timestamp"`
	Counters  monitoring.MetricsSnapshot `json:"counters"`
	ErrorRate float64                    `json:"error_rate"`
	RunErrors float64                    `json:"run_error_rate"`
	Widgets   interface{}                `json:"widgets"`
	Clipboard interface{}                `json:"clipboard"`
	Evaluator interface{}                `json:"evaluator,omitempty"`
}

// Metrics serves the Prometheus exposition format
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsSummary returns aggregated metrics as JSON
func (h *Handlers) MetricsSummary(c *gin.Context) {
	counters := h.metrics.Snapshot()
	summary := MetricsReport{
		Timestamp: time.Now(),
		Counters:  counters,
		ErrorRate: ratio(counters.TotalErrors, counters.TotalRequests),
		RunErrors: ratio(counters.SandboxFailures, counters.SandboxRuns),
		Widgets:   h.workspace.Stats(),
		Clipboard: h.clipboard.Stats(),
	}
	if h.evaluator != nil {
		summary.Evaluator = h.evaluator.Stats()
	}
	c.JSON(http.StatusOK, summary)
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
