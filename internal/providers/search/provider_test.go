package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	catalog, err := content.Open("", nil, nil)
	require.NoError(t, err)
	return NewProvider(catalog)
}

func TestProviderDefinition(t *testing.T) {
	def := newProvider(t).Definition()

	assert.Equal(t, "search", def.ID)
	assert.Equal(t, types.CategoryContent, def.Category)
	assert.Len(t, def.Tools, 3)
}

func TestSearchLessons(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	result, err := p.Execute(ctx, "search.lessons", map[string]interface{}{"query": "state"}, nil)
	require.NoError(t, err)
	results := result.Data["results"].([]content.Summary)
	require.NotEmpty(t, results)
	assert.Equal(t, "state", results[0].Slug)

	result, err = p.Execute(ctx, "search.lessons", map[string]interface{}{"query": "react", "limit": 2.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data["count"])
}

func TestSearchBlankQuery(t *testing.T) {
	p := newProvider(t)

	for _, params := range []map[string]interface{}{{}, {"query": ""}, {"query": "   "}} {
		result, err := p.Execute(context.Background(), "search.lessons", params, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Data["count"])
	}
}

func TestGetLesson(t *testing.T) {
	p := newProvider(t)

	result, err := p.Execute(context.Background(), "search.get", map[string]interface{}{"slug": "props"}, nil)
	require.NoError(t, err)
	lesson := result.Data["lesson"].(*content.Lesson)
	assert.Equal(t, "Props", lesson.Title)

	_, err = p.Execute(context.Background(), "search.get", map[string]interface{}{"slug": "nope"}, nil)
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = p.Execute(context.Background(), "search.get", nil, nil)
	assert.Error(t, err)
}

func TestUnknownTool(t *testing.T) {
	_, err := newProvider(t).Execute(context.Background(), "search.files", nil, nil)
	assert.Error(t, err)
}
