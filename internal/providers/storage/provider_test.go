package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

func TestProviderDefinition(t *testing.T) {
	p := NewProvider(openTestStore(t))
	def := p.Definition()

	assert.Equal(t, "progress", def.ID)
	assert.Len(t, def.Tools, 4)
}

func TestProviderSettings(t *testing.T) {
	p := NewProvider(openTestStore(t))
	ctx := context.Background()

	result, err := p.Execute(ctx, "progress.set_setting", map[string]interface{}{"key": "theme.dark", "value": "true"}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	result, err = p.Execute(ctx, "progress.get_setting", map[string]interface{}{"key": "theme.dark"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "true", result.Data["value"])
	assert.Equal(t, true, result.Data["found"])

	result, err = p.Execute(ctx, "progress.set_setting", map[string]interface{}{"key": "theme.dark", "value": 1.0}, nil)
	assert.Error(t, err)
	assert.False(t, result.Success)
}

func TestProviderProgressUsesLessonContext(t *testing.T) {
	store := openTestStore(t)
	p := NewProvider(store)
	ctx := context.Background()

	for _, lesson := range []string{"props", "props", "hooks"} {
		_, err := store.RecordAttempt(ctx, Attempt{WidgetID: "quiz_x", Lesson: lesson, Score: 1, Total: 1, Tier: "perfect"})
		require.NoError(t, err)
	}

	lesson := "props"
	result, err := p.Execute(ctx, "progress.list", map[string]interface{}{}, &types.Context{Lesson: &lesson})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data["count"])

	result, err = p.Execute(ctx, "progress.summary", map[string]interface{}{"lesson": "hooks"}, &types.Context{Lesson: &lesson})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Data["summary"].(Summary).Attempts)

	_, err = p.Execute(ctx, "progress.unknown", nil, nil)
	assert.Error(t, err)
}
