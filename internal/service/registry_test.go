package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

type mockProvider struct {
	id       string
	category types.Category
	fail     bool
}

func (m *mockProvider) Definition() types.Service {
	category := m.category
	if category == "" {
		category = types.CategoryWidget
	}
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for testing",
		Category:     category,
		Capabilities: []string{"read", "write"},
		Tools: []types.Tool{
			{ID: m.id + ".test", Name: "Test Tool", Description: "A test tool", Returns: "string"},
		},
	}
}

func (m *mockProvider) Execute(_ context.Context, toolID string, params map[string]interface{}, _ *types.Context) (*types.Result, error) {
	if m.fail {
		return types.Failure(errors.New("tool failed"))
	}
	return types.Success(map[string]interface{}{"tool": toolID, "params": len(params)})
}

func TestRegister(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&mockProvider{id: "sandbox"}))
	_, ok := r.Get("sandbox")
	assert.True(t, ok)

	assert.Error(t, r.Register(&mockProvider{id: "sandbox"}), "duplicate")
	assert.Error(t, r.Register(&mockProvider{id: ""}))
	assert.Error(t, r.Register(&mockProvider{id: "bad id"}))

	r.Unregister("sandbox")
	_, ok = r.Get("sandbox")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "quiz"}))
	require.NoError(t, r.Register(&mockProvider{id: "sandbox"}))
	require.NoError(t, r.Register(&mockProvider{id: "theme", category: types.CategorySystem}))

	services := r.List(nil)
	require.Len(t, services, 3)
	assert.Equal(t, "quiz", services[0].ID)
	assert.Equal(t, "theme", services[2].ID)

	cat := types.CategoryWidget
	assert.Len(t, r.List(&cat), 2)
}

func TestDiscover(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "sandbox"}))
	require.NoError(t, r.Register(&mockProvider{id: "quiz"}))

	results := r.Discover("run the sandbox", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "sandbox", results[0].ID)

	assert.Len(t, r.Discover("mock", 1), 1)
	assert.Empty(t, r.Discover("zzz", 5))
}

func TestExecute(t *testing.T) {
	metrics := monitoring.NewMetrics()
	r := NewRegistry(nil).WithMetrics(metrics)
	require.NoError(t, r.Register(&mockProvider{id: "sandbox"}))
	require.NoError(t, r.Register(&mockProvider{id: "broken", fail: true}))

	ctx := context.Background()
	result, err := r.Execute(ctx, "sandbox.test", nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "sandbox.test", result.Data["tool"])

	result, err = r.Execute(ctx, "broken.test", nil, nil)
	assert.Error(t, err)
	assert.False(t, result.Success)

	_, err = r.Execute(ctx, "missing.test", nil, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = r.Execute(ctx, "nodot", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidToolID)

	_, err = r.Execute(ctx, "bad tool!", nil, nil)
	assert.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.Registry(), "learnreact_service_calls_total"))
}

func TestStats(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "test1"}))
	require.NoError(t, r.Register(&mockProvider{id: "test2", category: types.CategorySystem}))

	stats := r.Stats()
	assert.Equal(t, 2, stats["total_services"])
	assert.Equal(t, 2, stats["total_tools"])
	assert.Equal(t, map[string]int{"widget": 1, "system": 1}, stats["categories"])
}
