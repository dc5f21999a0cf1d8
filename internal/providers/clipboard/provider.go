package clipboard

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

// Provider exposes the clipboard hub as a service
type Provider struct {
	hub *Hub
}

// NewProvider creates a clipboard provider
func NewProvider(hub *Hub) *Provider {
	return &Provider{hub: hub}
}

// Definition returns service metadata
func (c *Provider) Definition() types.Service {
	return types.Service{
		ID:          "clipboard",
		Name:        "Clipboard Service",
		Description: "Copied sandbox code with history and change notifications",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"copy",
			"paste",
			"history",
			"statistics",
		},
		Tools: []types.Tool{
			{
				ID:          "clipboard.copy",
				Name:        "Copy to Clipboard",
				Description: "Copy text to the clipboard",
				Parameters: []types.Parameter{
					{Name: "data", Type: "string", Description: "Text to copy", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "clipboard.paste",
				Name:        "Paste from Clipboard",
				Description: "Retrieve the most recent clipboard entry",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "clipboard.history",
				Name:        "Get Clipboard History",
				Description: "Retrieve clipboard history entries, newest first",
				Parameters: []types.Parameter{
					{Name: "limit", Type: "number", Description: "Maximum number of entries", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "clipboard.clear",
				Name:        "Clear Clipboard",
				Description: "Clear clipboard history",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
			{
				ID:          "clipboard.stats",
				Name:        "Get Clipboard Statistics",
				Description: "Retrieve clipboard usage statistics",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a clipboard operation
func (c *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "clipboard.copy":
		return c.copy(ctx, params, appCtx)
	case "clipboard.paste":
		return c.paste()
	case "clipboard.history":
		return c.history(params)
	case "clipboard.clear":
		c.hub.Clear()
		return types.Success(map[string]interface{}{"cleared": true})
	case "clipboard.stats":
		return types.Success(map[string]interface{}{"stats": c.hub.Stats()})
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
}

func (c *Provider) copy(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	data, ok := params["data"].(string)
	if !ok || data == "" {
		return types.Failure(fmt.Errorf("data parameter required"))
	}

	if appCtx != nil && appCtx.ClientID != nil {
		ctx = WithSource(ctx, *appCtx.ClientID)
	}
	if err := c.hub.WriteText(ctx, data); err != nil {
		return types.Failure(fmt.Errorf("copy failed: %w", err))
	}

	entry, _ := c.hub.Latest()
	return types.Success(map[string]interface{}{
		"copied":   true,
		"entry_id": entry.ID,
		"size":     entry.Size,
	})
}

func (c *Provider) paste() (*types.Result, error) {
	entry, ok := c.hub.Latest()
	if !ok {
		return types.Failure(fmt.Errorf("clipboard is empty"))
	}
	return types.Success(map[string]interface{}{"entry": entry})
}

func (c *Provider) history(params map[string]interface{}) (*types.Result, error) {
	limit := 0
	if l, ok := params["limit"].(float64); ok {
		limit = int(l)
	}

	entries := c.hub.History(limit)
	return types.Success(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
