package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

// ListLessons returns the catalog in reading order
func (h *Handlers) ListLessons(c *gin.Context) {
	lessons := h.catalog.List()
	c.JSON(http.StatusOK, gin.H{
		"lessons": lessons,
		"count":   len(lessons),
	})
}

// GetLesson returns one rendered lesson
func (h *Handlers) GetLesson(c *gin.Context) {
	slug := c.Param("slug")
	if err := utils.ValidateSlug(slug, true); err != nil {
		badRequest(c, err)
		return
	}

	lesson, err := h.catalog.Get(slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// Search finds lessons whose title or description contains q
func (h *Handlers) Search(c *gin.Context) {
	query := c.Query("q")
	if err := utils.ValidateQuery(query); err != nil {
		badRequest(c, err)
		return
	}

	results := h.catalog.Search(query)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// ReloadLessons re-reads the lesson source
func (h *Handlers) ReloadLessons(c *gin.Context) {
	if err := h.catalog.Reload(); err != nil {
		h.logger.Warn("lesson reload failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reloaded": true, "lessons": h.catalog.Len()})
}
