package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/providers/evaluator"
	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
	"github.com/GriffinCanCode/LearnReact/internal/providers/theme"
	"github.com/GriffinCanCode/LearnReact/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// EvaluatorStats reports evaluator pool occupancy.
type EvaluatorStats interface {
	Stats() evaluator.PoolStats
}

// Deps are the components the handlers serve.
type Deps struct {
	Catalog   *content.Catalog
	Workspace *workspace.Manager
	Theme     *theme.Flag
	Store     *storage.Store
	Clipboard *clipboard.Hub
	Registry  *service.Registry
	Evaluator EvaluatorStats
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// Handlers contains HTTP request handlers
type Handlers struct {
	catalog   *content.Catalog
	workspace *workspace.Manager
	theme     *theme.Flag
	store     *storage.Store
	clipboard *clipboard.Hub
	registry  *service.Registry
	evaluator EvaluatorStats
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	started   time.Time
}

// NewHandlers creates HTTP handlers
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog:   deps.Catalog,
		workspace: deps.Workspace,
		theme:     deps.Theme,
		store:     deps.Store,
		clipboard: deps.Clipboard,
		registry:  deps.Registry,
		evaluator: deps.Evaluator,
		metrics:   deps.Metrics,
		logger:    logger,
		started:   time.Now(),
	}
}

// Register mounts every route on the router.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/metrics/summary", h.MetricsSummary)

	r.GET("/lessons", h.ListLessons)
	r.GET("/lessons/:slug", h.GetLesson)
	r.POST("/lessons/reload", h.ReloadLessons)
	r.GET("/search", h.Search)

	r.GET("/widgets", h.ListWidgets)

	r.POST("/sandboxes", h.MountSandbox)
	r.GET("/sandboxes/:id", h.GetSandbox)
	r.DELETE("/sandboxes/:id", h.UnmountSandbox)
	r.PUT("/sandboxes/:id/buffer", h.EditSandbox)
	r.POST("/sandboxes/:id/run", h.RunSandbox)
	r.POST("/sandboxes/:id/reset", h.ResetSandbox)
	r.POST("/sandboxes/:id/copy", h.CopySandbox)

	r.POST("/quizzes", h.MountQuiz)
	r.GET("/quizzes/:id", h.GetQuiz)
	r.DELETE("/quizzes/:id", h.UnmountQuiz)
	r.POST("/quizzes/:id/answer", h.AnswerQuiz)
	r.POST("/quizzes/:id/next", h.NextQuestion)
	r.POST("/quizzes/:id/previous", h.PreviousQuestion)
	r.POST("/quizzes/:id/submit", h.SubmitQuiz)
	r.POST("/quizzes/:id/restart", h.RestartQuiz)
	r.GET("/quizzes/:id/review", h.ReviewQuiz)

	r.GET("/theme", h.GetTheme)
	r.PUT("/theme", h.SetTheme)
	r.POST("/theme/toggle", h.ToggleTheme)
	r.GET("/theme/palettes", h.ListPalettes)

	r.GET("/progress", h.ListProgress)
	r.GET("/progress/summary", h.ProgressSummary)

	r.GET("/clipboard/history", h.ClipboardHistory)

	r.GET("/services", h.ListServices)
	r.GET("/services/discover", h.DiscoverServices)
	r.POST("/services/execute", h.ExecuteService)
}

// Root returns service information
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "learnreact",
		"status":  "running",
		"version": Version,
		"lessons": h.catalog.Len(),
	})
}

// Health returns component status
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"lessons":        h.catalog.Len(),
		"widgets":        h.workspace.Stats(),
		"clipboard":      h.clipboard.Stats(),
		"theme":          h.theme.Current().Mode,
		"services":       h.registry.Stats(),
	}
	if h.evaluator != nil {
		stats := h.evaluator.Stats()
		body["evaluator"] = stats
		if stats.Closed {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}
