package storage

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

// Provider exposes settings and quiz progress as a service
type Provider struct {
	store *Store
}

// NewProvider creates a storage provider
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "progress",
		Name:        "Progress Service",
		Description: "Learner settings and quiz completion history",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"settings",
			"history",
			"statistics",
		},
		Tools: []types.Tool{
			{
				ID:          "progress.get_setting",
				Name:        "Get Setting",
				Description: "Get a stored setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "progress.set_setting",
				Name:        "Set Setting",
				Description: "Store a setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
					{Name: "value", Type: "string", Description: "Setting value", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "progress.list",
				Name:        "List Attempts",
				Description: "List completed quizzes, newest first",
				Parameters: []types.Parameter{
					{Name: "lesson", Type: "string", Description: "Lesson slug filter", Required: false},
					{Name: "quiz_id", Type: "string", Description: "Quiz block filter", Required: false},
					{Name: "limit", Type: "number", Description: "Maximum number of attempts", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "progress.summary",
				Name:        "Summarize Attempts",
				Description: "Score statistics over completed quizzes",
				Parameters: []types.Parameter{
					{Name: "lesson", Type: "string", Description: "Lesson slug filter", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a storage operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "progress.get_setting":
		return p.getSetting(ctx, params)
	case "progress.set_setting":
		return p.setSetting(ctx, params)
	case "progress.list":
		return p.list(ctx, params, appCtx)
	case "progress.summary":
		return p.summary(ctx, params, appCtx)
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
}

func (p *Provider) getSetting(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return types.Failure(fmt.Errorf("key parameter required"))
	}

	value, found, err := p.store.GetSetting(ctx, key)
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"key": key, "value": value, "found": found})
}

func (p *Provider) setSetting(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return types.Failure(fmt.Errorf("key parameter required"))
	}
	value, ok := params["value"].(string)
	if !ok {
		return types.Failure(fmt.Errorf("value parameter must be a string"))
	}

	if err := p.store.SetSetting(ctx, key, value); err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"stored": true})
}

func (p *Provider) list(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f := filterFrom(params, appCtx)
	if l, ok := params["limit"].(float64); ok {
		f.Limit = int(l)
	}

	attempts, err := p.store.Attempts(ctx, f)
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"attempts": attempts, "count": len(attempts)})
}

func (p *Provider) summary(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	sum, err := p.store.Summary(ctx, filterFrom(params, appCtx))
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"summary": sum})
}

// filterFrom prefers explicit params over the caller's lesson context.
func filterFrom(params map[string]interface{}, appCtx *types.Context) Filter {
	var f Filter
	if appCtx != nil && appCtx.Lesson != nil {
		f.Lesson = *appCtx.Lesson
	}
	if lesson, ok := params["lesson"].(string); ok && lesson != "" {
		f.Lesson = lesson
	}
	if quizID, ok := params["quiz_id"].(string); ok {
		f.QuizID = quizID
	}
	return f
}
