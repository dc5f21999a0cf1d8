package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

// MountSandboxRequest mounts a sandbox from code or a lesson block.
type MountSandboxRequest struct {
	InitialCode  *string `json:"initial_code"`
	Language     string  `json:"language"`
	FileName     string  `json:"file_name"`
	Instructions string  `json:"instructions"`
	Lesson       string  `json:"lesson"`
	Block        string  `json:"block"`
}

// EditRequest replaces a sandbox buffer.
type EditRequest struct {
	Code *string `json:"code" binding:"required"`
}

// MountQuizRequest mounts a quiz from a question bank or a lesson block.
type MountQuizRequest struct {
	Questions []quiz.BankEntry `json:"questions"`
	Lesson    string           `json:"lesson"`
	Block     string           `json:"block"`
	Shuffle   bool             `json:"shuffle"`
	Limit     int              `json:"limit"`
}

// AnswerRequest selects a choice on the current question.
type AnswerRequest struct {
	Choice *int `json:"choice" binding:"required"`
}

// ListWidgets returns every mounted widget
func (h *Handlers) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"widgets": h.workspace.List(),
		"stats":   h.workspace.Stats(),
	})
}

// UnmountSandbox destroys a sandbox
func (h *Handlers) UnmountSandbox(c *gin.Context) {
	h.unmount(c, workspace.KindSandbox)
}

// UnmountQuiz destroys a quiz
func (h *Handlers) UnmountQuiz(c *gin.Context) {
	h.unmount(c, workspace.KindQuiz)
}

func (h *Handlers) unmount(c *gin.Context, kind string) {
	widgetID, ok := widgetParam(c)
	if !ok {
		return
	}
	if got, err := h.workspace.Kind(widgetID); err != nil || got != kind {
		c.JSON(http.StatusNotFound, gin.H{"error": workspace.ErrNotFound.Error()})
		return
	}
	if err := h.workspace.Unmount(widgetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmounted": true, "id": widgetID})
}

// MountSandbox creates a sandbox
func (h *Handlers) MountSandbox(c *gin.Context) {
	var req MountSandboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mount := workspace.SandboxRequest{Lesson: req.Lesson, Block: req.Block}
	if req.InitialCode != nil {
		mount.Seed = &sandbox.Seed{
			InitialCode:  *req.InitialCode,
			Language:     req.Language,
			FileName:     req.FileName,
			Instructions: req.Instructions,
		}
	}

	w, err := h.workspace.MountSandbox(mount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sandbox": w.Snapshot()})
}

// GetSandbox returns a sandbox snapshot
func (h *Handlers) GetSandbox(c *gin.Context) {
	w, ok := h.sandbox(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sandbox": w.Snapshot()})
}

// EditSandbox replaces the buffer
func (h *Handlers) EditSandbox(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, ok := h.sandbox(c)
	if !ok {
		return
	}
	snap, err := w.OnEdit(*req.Code)
	respondSandbox(c, snap, err)
}

// RunSandbox evaluates the buffer. Evaluation failures are part of the
// snapshot, not an HTTP error.
func (h *Handlers) RunSandbox(c *gin.Context) {
	w, ok := h.sandbox(c)
	if !ok {
		return
	}
	snap, err := w.Run(c.Request.Context())
	respondSandbox(c, snap, err)
}

// ResetSandbox restores the initial code
func (h *Handlers) ResetSandbox(c *gin.Context) {
	w, ok := h.sandbox(c)
	if !ok {
		return
	}
	snap, err := w.Reset()
	respondSandbox(c, snap, err)
}

// CopySandbox copies the buffer to the clipboard
func (h *Handlers) CopySandbox(c *gin.Context) {
	w, ok := h.sandbox(c)
	if !ok {
		return
	}

	snap, err := w.Copy(clipboard.WithSource(c.Request.Context(), w.ID().String()))
	if err != nil {
		body := gin.H{"error": err.Error()}
		if snap.ID != "" {
			body["sandbox"] = snap
		}
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sandbox": snap})
}

// MountQuiz creates a quiz
func (h *Handlers) MountQuiz(c *gin.Context) {
	var req MountQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mount := workspace.QuizRequest{
		Lesson:  req.Lesson,
		Block:   req.Block,
		Shuffle: req.Shuffle,
		Limit:   req.Limit,
	}
	if req.Questions != nil {
		questions, err := quiz.ResolveBank(req.Questions)
		if err != nil {
			respondError(c, err)
			return
		}
		mount.Questions = questions
	}

	w, err := h.workspace.MountQuiz(mount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": w.Snapshot()})
}

// GetQuiz returns a quiz snapshot
func (h *Handlers) GetQuiz(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": w.Snapshot()})
}

// AnswerQuiz records a choice for the current question
func (h *Handlers) AnswerQuiz(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	snap, err := w.SelectAnswer(*req.Choice)
	respondQuiz(c, snap, err)
}

// NextQuestion advances the quiz
func (h *Handlers) NextQuestion(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	snap, err := w.GoNext()
	respondQuiz(c, snap, err)
}

// PreviousQuestion steps the quiz back
func (h *Handlers) PreviousQuestion(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	snap, err := w.GoPrevious()
	respondQuiz(c, snap, err)
}

// SubmitQuiz scores the quiz
func (h *Handlers) SubmitQuiz(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	snap, err := w.Submit()
	respondQuiz(c, snap, err)
}

// RestartQuiz starts the quiz over
func (h *Handlers) RestartQuiz(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	snap, err := w.Restart()
	respondQuiz(c, snap, err)
}

// ReviewQuiz returns per-question results after submit
func (h *Handlers) ReviewQuiz(c *gin.Context) {
	w, ok := h.quiz(c)
	if !ok {
		return
	}
	review, err := w.Review()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func widgetParam(c *gin.Context) (id.WidgetID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return id.WidgetID(raw), true
}

func (h *Handlers) sandbox(c *gin.Context) (*sandbox.Widget, bool) {
	widgetID, ok := widgetParam(c)
	if !ok {
		return nil, false
	}
	w, err := h.workspace.Sandbox(widgetID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return w, true
}

func (h *Handlers) quiz(c *gin.Context) (*quiz.Widget, bool) {
	widgetID, ok := widgetParam(c)
	if !ok {
		return nil, false
	}
	w, err := h.workspace.Quiz(widgetID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return w, true
}

func respondSandbox(c *gin.Context, snap sandbox.Snapshot, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sandbox": snap})
}

func respondQuiz(c *gin.Context, snap quiz.Snapshot, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": snap})
}
