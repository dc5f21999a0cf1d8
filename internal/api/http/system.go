package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
	"github.com/GriffinCanCode/LearnReact/internal/providers/theme"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SetThemeRequest sets the dark-mode flag explicitly.
type SetThemeRequest struct {
	Dark *bool `json:"dark" binding:"required"`
}

// GetTheme returns the current theme
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.theme.Current()})
}

// ToggleTheme flips dark mode
func (h *Handlers) ToggleTheme(c *gin.Context) {
	state, err := h.theme.Toggle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": state})
}

// SetTheme sets dark mode on or off
func (h *Handlers) SetTheme(c *gin.Context) {
	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := h.theme.Set(c.Request.Context(), *req.Dark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": state})
}

// ListPalettes returns both palettes
func (h *Handlers) ListPalettes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"palettes": theme.Palettes()})
}

// ListProgress returns recorded quiz completions, newest first
func (h *Handlers) ListProgress(c *gin.Context) {
	filter, ok := progressFilter(c)
	if !ok {
		return
	}
	attempts, err := h.store.Attempts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts, "count": len(attempts)})
}

// ProgressSummary aggregates quiz completions
func (h *Handlers) ProgressSummary(c *gin.Context) {
	filter, ok := progressFilter(c)
	if !ok {
		return
	}
	summary, err := h.store.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ClipboardHistory returns recent copies, newest first
func (h *Handlers) ClipboardHistory(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	entries := h.clipboard.History(limit)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
		"stats":   h.clipboard.Stats(),
	})
}

// ListServices returns all registered services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}

	services := h.registry.List(category)
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices ranks services against an intent
func (h *Handlers) DiscoverServices(c *gin.Context) {
	intent := c.Query("q")
	if err := utils.ValidateQuery(intent); err != nil {
		badRequest(c, err)
		return
	}
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": h.registry.Discover(intent, limit)})
}

// ExecuteService executes a service tool. Tool failures come back as a
// result with success=false.
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		badRequest(c, err)
		return
	}

	appCtx := &types.Context{Lesson: req.Lesson}
	result, _ := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	c.JSON(http.StatusOK, result)
}

func progressFilter(c *gin.Context) (storage.Filter, bool) {
	f := storage.Filter{
		Lesson: c.Query("lesson"),
		QuizID: c.Query("quiz_id"),
	}
	if err := utils.ValidateSlug(f.Lesson, false); err != nil {
		badRequest(c, err)
		return f, false
	}
	if err := utils.ValidateID(f.QuizID, "quiz_id", false); err != nil {
		badRequest(c, err)
		return f, false
	}
	limit, ok := limitParam(c)
	if !ok {
		return f, false
	}
	f.Limit = limit
	return f, true
}

func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		badRequest(c, fmt.Errorf("limit must be between 1 and %d", maxListLimit))
		return 0, false
	}
	return limit, true
}
