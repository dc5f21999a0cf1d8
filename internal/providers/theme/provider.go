package theme

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

// Provider exposes the dark-mode flag as a service
type Provider struct {
	flag *Flag
}

// NewProvider creates a theme provider
func NewProvider(flag *Flag) *Provider {
	return &Provider{flag: flag}
}

// Definition returns service metadata
func (t *Provider) Definition() types.Service {
	return types.Service{
		ID:          "theme",
		Name:        "Theme Manager",
		Description: "Dark mode toggle and palettes",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"current",
			"toggle",
			"set",
			"palettes",
		},
		Tools: []types.Tool{
			{
				ID:          "theme.current",
				Name:        "Current Theme",
				Description: "Get the current mode and palette",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "theme.toggle",
				Name:        "Toggle Dark Mode",
				Description: "Switch between dark and light mode",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "theme.set",
				Name:        "Set Dark Mode",
				Description: "Turn dark mode on or off",
				Parameters: []types.Parameter{
					{Name: "dark", Type: "boolean", Description: "Whether dark mode is on", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "theme.palettes",
				Name:        "List Palettes",
				Description: "List the light and dark palettes",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
		},
	}
}

// Execute runs a theme operation
func (t *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "theme.current":
		return types.Success(map[string]interface{}{"theme": t.flag.Current()})
	case "theme.toggle":
		state, err := t.flag.Toggle(ctx)
		if err != nil {
			return types.Failure(err)
		}
		return types.Success(map[string]interface{}{"theme": state})
	case "theme.set":
		dark, ok := params["dark"].(bool)
		if !ok {
			return types.Failure(fmt.Errorf("dark parameter must be a boolean"))
		}
		state, err := t.flag.Set(ctx, dark)
		if err != nil {
			return types.Failure(err)
		}
		return types.Success(map[string]interface{}{"theme": state})
	case "theme.palettes":
		return types.Success(map[string]interface{}{"palettes": Palettes()})
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
}
