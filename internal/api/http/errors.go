package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/service"
)

var statusTable = []struct {
	err    error
	status int
}{
	{workspace.ErrNotFound, http.StatusNotFound},
	{content.ErrNotFound, http.StatusNotFound},
	{service.ErrServiceNotFound, http.StatusNotFound},
	{sandbox.ErrClosed, http.StatusNotFound},
	{quiz.ErrClosed, http.StatusNotFound},

	{quiz.ErrOutOfBounds, http.StatusConflict},
	{quiz.ErrNotAnswering, http.StatusConflict},
	{quiz.ErrNotLastQuestion, http.StatusConflict},
	{quiz.ErrNotSubmitted, http.StatusConflict},

	{quiz.ErrInvalidChoice, http.StatusBadRequest},
	{quiz.ErrInvalidBank, http.StatusBadRequest},
	{sandbox.ErrInvalidSource, http.StatusBadRequest},
	{workspace.ErrInvalidRequest, http.StatusBadRequest},
	{content.ErrInvalidLesson, http.StatusBadRequest},
	{service.ErrInvalidToolID, http.StatusBadRequest},

	{clipboard.ErrTooLarge, http.StatusRequestEntityTooLarge},

	{workspace.ErrLimitReached, http.StatusServiceUnavailable},
	{workspace.ErrNoLessons, http.StatusServiceUnavailable},
	{sandbox.ErrNoClipboard, http.StatusServiceUnavailable},
	{clipboard.ErrClosed, http.StatusServiceUnavailable},
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	for _, e := range statusTable {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
