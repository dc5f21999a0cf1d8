package widgets

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/providers"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

// QuizProvider exposes quiz operations
type QuizProvider struct {
	workspace *workspace.Manager
}

// NewQuizProvider creates a quiz provider
func NewQuizProvider(ws *workspace.Manager) *QuizProvider {
	return &QuizProvider{workspace: ws}
}

// Definition returns service metadata
func (p *QuizProvider) Definition() types.Service {
	return types.Service{
		ID:           "quiz",
		Name:         "Quiz",
		Description:  "Multiple-choice quizzes with scored results",
		Category:     types.CategoryWidget,
		Capabilities: []string{"mount", "answer", "navigate", "submit", "review"},
		Tools: []types.Tool{
			{
				ID:          "quiz.mount",
				Name:        "Mount Quiz",
				Description: "Create a quiz from questions or a lesson block",
				Parameters: []types.Parameter{
					{Name: "questions", Type: "array", Description: "Question bank (question, answers, correct or answer)", Required: false},
					{Name: "lesson", Type: "string", Description: "Lesson slug", Required: false},
					{Name: "block", Type: "string", Description: "Quiz block ID in the lesson", Required: false},
					{Name: "shuffle", Type: "boolean", Description: "Shuffle question order", Required: false},
					{Name: "limit", Type: "number", Description: "Play at most this many questions", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "quiz.select",
				Name:        "Select Answer",
				Description: "Record a choice for the current question",
				Parameters: []types.Parameter{
					idParam,
					{Name: "choice", Type: "number", Description: "Choice index", Required: true},
				},
				Returns: "object",
			},
			{ID: "quiz.next", Name: "Next", Description: "Go to the next question", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.previous", Name: "Previous", Description: "Go to the previous question", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.submit", Name: "Submit", Description: "Score the quiz", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.restart", Name: "Restart", Description: "Start over", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.review", Name: "Review", Description: "Per-question results after submit", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.get", Name: "Get", Description: "Current quiz state", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "quiz.unmount", Name: "Unmount", Description: "Destroy the quiz", Parameters: []types.Parameter{idParam}, Returns: "boolean"},
		},
	}
}

// Execute runs a quiz operation
func (p *QuizProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if toolID == "quiz.mount" {
		return p.mount(params, appCtx)
	}

	widgetID, err := providers.String(params, "id")
	if err != nil {
		return types.Failure(err)
	}

	if toolID == "quiz.unmount" {
		if err := p.workspace.Unmount(id.WidgetID(widgetID)); err != nil {
			return types.Failure(err)
		}
		return types.Success(map[string]interface{}{"unmounted": true})
	}

	w, err := p.workspace.Quiz(id.WidgetID(widgetID))
	if err != nil {
		return types.Failure(err)
	}

	var snap quiz.Snapshot
	switch toolID {
	case "quiz.select":
		choice, cerr := providers.Int(params, "choice")
		if cerr != nil {
			return types.Failure(cerr)
		}
		snap, err = w.SelectAnswer(choice)
	case "quiz.next":
		snap, err = w.GoNext()
	case "quiz.previous":
		snap, err = w.GoPrevious()
	case "quiz.submit":
		snap, err = w.Submit()
	case "quiz.restart":
		snap, err = w.Restart()
	case "quiz.review":
		review, rerr := w.Review()
		if rerr != nil {
			return types.Failure(rerr)
		}
		return types.Success(map[string]interface{}{"review": review})
	case "quiz.get":
		snap = w.Snapshot()
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"quiz": snap})
}

func (p *QuizProvider) mount(params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	limit, err := providers.OptionalInt(params, "limit", 0)
	if err != nil {
		return types.Failure(err)
	}

	req := workspace.QuizRequest{
		Lesson:  providers.OptionalString(params, "lesson"),
		Block:   providers.OptionalString(params, "block"),
		Shuffle: providers.OptionalBool(params, "shuffle"),
		Limit:   limit,
	}
	if req.Lesson == "" && appCtx != nil && appCtx.Lesson != nil {
		req.Lesson = *appCtx.Lesson
	}

	if raw, ok := params["questions"]; ok && raw != nil {
		questions, err := DecodeBank(raw)
		if err != nil {
			return types.Failure(err)
		}
		req.Questions = questions
	}

	w, err := p.workspace.MountQuiz(req)
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"quiz": w.Snapshot()})
}

// DecodeBank converts a loosely typed question list, as decoded from JSON,
// into questions.
func DecodeBank(raw interface{}) ([]quiz.Question, error) {
	data, err := sonic.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrInvalidBank, err)
	}
	var entries []quiz.BankEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrInvalidBank, err)
	}
	return quiz.ResolveBank(entries)
}
