package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Widget kinds used as label values.
const (
	KindSandbox = "sandbox"
	KindQuiz    = "quiz"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics holds all Prometheus metrics.
// All Record/Set methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Widget metrics
	WidgetsActive  *prometheus.GaugeVec
	WidgetsMounted *prometheus.CounterVec
	WidgetsExpired *prometheus.CounterVec

	// Sandbox metrics
	SandboxRuns        *prometheus.CounterVec
	SandboxRunDuration prometheus.Histogram
	ClipboardCopies    *prometheus.CounterVec

	// Quiz metrics
	QuizSubmissions *prometheus.CounterVec

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec

	// Content metrics
	LessonReloads *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveSandboxes   int64   `json:"active_sandboxes"`
	ActiveQuizzes     int64   `json:"active_quizzes"`
	ActiveConnections int64   `json:"active_connections"`
	SandboxRuns       int64   `json:"sandbox_runs"`
	SandboxFailures   int64   `json:"sandbox_failures"`
	QuizSubmissions   int64   `json:"quiz_submissions"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnreact_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnreact_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Widget metrics
		WidgetsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "learnreact_widgets_active",
				Help: "Number of mounted widget instances",
			},
			[]string{"kind"},
		),
		WidgetsMounted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_widgets_mounted_total",
				Help: "Total number of widget instances mounted",
			},
			[]string{"kind"},
		),
		WidgetsExpired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_widgets_expired_total",
				Help: "Total number of widget instances unmounted for idleness",
			},
			[]string{"kind"},
		),

		// Sandbox metrics
		SandboxRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_sandbox_runs_total",
				Help: "Total number of sandbox runs by outcome",
			},
			[]string{"outcome"},
		),
		SandboxRunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "learnreact_sandbox_run_duration_seconds",
				Help:    "Sandbox evaluation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		ClipboardCopies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_clipboard_copies_total",
				Help: "Total number of sandbox copy attempts by outcome",
			},
			[]string{"outcome"},
		),

		// Quiz metrics
		QuizSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_quiz_submissions_total",
				Help: "Total number of quiz submissions by feedback tier",
			},
			[]string{"tier"},
		),

		// Service metrics
		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_service_calls_total",
				Help: "Total number of service tool calls",
			},
			[]string{"service", "tool", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnreact_service_duration_seconds",
				Help:    "Service tool call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "tool"},
		),

		// Content metrics
		LessonReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_lesson_reloads_total",
				Help: "Total number of lesson catalog reloads",
			},
			[]string{"status"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "learnreact_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnreact_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "learnreact_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordSandboxRun records one evaluation attempt
func (m *Metrics) RecordSandboxRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SandboxRuns.WithLabelValues(outcome).Inc()
	m.SandboxRunDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.SandboxRuns++
	if outcome != OutcomeSuccess {
		m.snapshot.SandboxFailures++
	}
	m.mu.Unlock()
}

// RecordCopy records one copy-to-clipboard attempt
func (m *Metrics) RecordCopy(outcome string) {
	if m == nil {
		return
	}
	m.ClipboardCopies.WithLabelValues(outcome).Inc()
}

// RecordQuizSubmission records a quiz reaching its results phase
func (m *Metrics) RecordQuizSubmission(tier string) {
	if m == nil {
		return
	}
	m.QuizSubmissions.WithLabelValues(tier).Inc()

	m.mu.Lock()
	m.snapshot.QuizSubmissions++
	m.mu.Unlock()
}

// SetWidgetsActive sets the number of mounted widgets of a kind
func (m *Metrics) SetWidgetsActive(kind string, count int) {
	if m == nil {
		return
	}
	m.WidgetsActive.WithLabelValues(kind).Set(float64(count))

	m.mu.Lock()
	switch kind {
	case KindSandbox:
		m.snapshot.ActiveSandboxes = int64(count)
	case KindQuiz:
		m.snapshot.ActiveQuizzes = int64(count)
	}
	m.mu.Unlock()
}

// IncWidgetsMounted increments the mounted counter for a kind
func (m *Metrics) IncWidgetsMounted(kind string) {
	if m == nil {
		return
	}
	m.WidgetsMounted.WithLabelValues(kind).Inc()
}

// IncWidgetsExpired increments the idle-expiry counter for a kind
func (m *Metrics) IncWidgetsExpired(kind string) {
	if m == nil {
		return
	}
	m.WidgetsExpired.WithLabelValues(kind).Inc()
}

// RecordServiceCall records a service tool call
func (m *Metrics) RecordServiceCall(service, tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ServiceCalls.WithLabelValues(service, tool, status).Inc()
	m.ServiceDuration.WithLabelValues(service, tool).Observe(duration.Seconds())
}

// RecordLessonReload records a catalog reload
func (m *Metrics) RecordLessonReload(status string) {
	if m == nil {
		return
	}
	m.LessonReloads.WithLabelValues(status).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AvgLatencyMS = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
