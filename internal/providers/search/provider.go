package search

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/providers"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

// DefaultLimit caps search results when no limit is given.
const DefaultLimit = 20

// Catalog is the lesson lookup the provider needs.
type Catalog interface {
	List() []content.Summary
	Get(slug string) (*content.Lesson, error)
	Search(query string) []content.Summary
}

// Provider implements lesson search
type Provider struct {
	catalog Catalog
}

// NewProvider creates a new search provider
func NewProvider(catalog Catalog) *Provider {
	return &Provider{catalog: catalog}
}

// Definition returns the search service definition
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "search",
		Name:         "Lesson Search",
		Description:  "Find tutorial lessons by title or description",
		Category:     types.CategoryContent,
		Capabilities: []string{"search_lessons", "list_lessons", "get_lesson"},
		Tools: []types.Tool{
			{
				ID:          "search.lessons",
				Name:        "Search Lessons",
				Description: "Case-insensitive match over lesson titles and descriptions",
				Parameters: []types.Parameter{
					{Name: "query", Type: "string", Description: "Search text", Required: true},
					{Name: "limit", Type: "number", Description: "Maximum results", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "search.list",
				Name:        "List Lessons",
				Description: "All lessons in reading order",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "search.get",
				Name:        "Get Lesson",
				Description: "A lesson's rendered content and widget blocks",
				Parameters: []types.Parameter{
					{Name: "slug", Type: "string", Description: "Lesson slug", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a search tool
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "search.lessons":
		return p.searchLessons(params)
	case "search.list":
		return types.Success(map[string]interface{}{"lessons": p.catalog.List()})
	case "search.get":
		slug, err := providers.String(params, "slug")
		if err != nil {
			return types.Failure(err)
		}
		lesson, err := p.catalog.Get(slug)
		if err != nil {
			return types.Failure(err)
		}
		return types.Success(map[string]interface{}{"lesson": lesson})
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
}

// searchLessons treats a missing or blank query as matching nothing
func (p *Provider) searchLessons(params map[string]interface{}) (*types.Result, error) {
	query := providers.OptionalString(params, "query")
	if err := utils.ValidateQuery(query); err != nil {
		return types.Failure(err)
	}

	limit, err := providers.OptionalInt(params, "limit", DefaultLimit)
	if err != nil {
		return types.Failure(err)
	}

	results := p.catalog.Search(query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return types.Success(map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
