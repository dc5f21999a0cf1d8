package widgets

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/providers"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

var idParam = types.Parameter{Name: "id", Type: "string", Description: "Widget ID", Required: true}

// SandboxProvider exposes code sandbox operations
type SandboxProvider struct {
	workspace *workspace.Manager
}

// NewSandboxProvider creates a sandbox provider
func NewSandboxProvider(ws *workspace.Manager) *SandboxProvider {
	return &SandboxProvider{workspace: ws}
}

// Definition returns service metadata
func (p *SandboxProvider) Definition() types.Service {
	return types.Service{
		ID:           "sandbox",
		Name:         "Code Sandbox",
		Description:  "Editable code snippets that run in an isolated evaluator",
		Category:     types.CategoryWidget,
		Capabilities: []string{"mount", "edit", "run", "reset", "copy"},
		Tools: []types.Tool{
			{
				ID:          "sandbox.mount",
				Name:        "Mount Sandbox",
				Description: "Create a sandbox from initial code or a lesson block",
				Parameters: []types.Parameter{
					{Name: "initial_code", Type: "string", Description: "Seed source", Required: false},
					{Name: "language", Type: "string", Description: "Display language", Required: false},
					{Name: "file_name", Type: "string", Description: "Display file name", Required: false},
					{Name: "instructions", Type: "string", Description: "Exercise text", Required: false},
					{Name: "lesson", Type: "string", Description: "Lesson slug", Required: false},
					{Name: "block", Type: "string", Description: "Sandbox block ID in the lesson", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "sandbox.edit",
				Name:        "Edit Buffer",
				Description: "Replace the editor contents",
				Parameters: []types.Parameter{
					idParam,
					{Name: "code", Type: "string", Description: "New buffer text", Required: true},
				},
				Returns: "object",
			},
			{ID: "sandbox.run", Name: "Run", Description: "Evaluate the buffer", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "sandbox.reset", Name: "Reset", Description: "Restore the initial code", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "sandbox.copy", Name: "Copy", Description: "Copy the buffer to the clipboard", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "sandbox.get", Name: "Get", Description: "Current sandbox state", Parameters: []types.Parameter{idParam}, Returns: "object"},
			{ID: "sandbox.unmount", Name: "Unmount", Description: "Destroy the sandbox", Parameters: []types.Parameter{idParam}, Returns: "boolean"},
		},
	}
}

// Execute runs a sandbox operation
func (p *SandboxProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if toolID == "sandbox.mount" {
		return p.mount(params, appCtx)
	}

	widgetID, err := providers.String(params, "id")
	if err != nil {
		return types.Failure(err)
	}

	if toolID == "sandbox.unmount" {
		if err := p.workspace.Unmount(id.WidgetID(widgetID)); err != nil {
			return types.Failure(err)
		}
		return types.Success(map[string]interface{}{"unmounted": true})
	}

	w, err := p.workspace.Sandbox(id.WidgetID(widgetID))
	if err != nil {
		return types.Failure(err)
	}

	var snap sandbox.Snapshot
	switch toolID {
	case "sandbox.edit":
		code, ok := params["code"].(string)
		if !ok {
			return types.Failure(fmt.Errorf("code parameter required"))
		}
		snap, err = w.OnEdit(code)
	case "sandbox.run":
		snap, err = w.Run(ctx)
	case "sandbox.reset":
		snap, err = w.Reset()
	case "sandbox.copy":
		snap, err = w.Copy(clipboard.WithSource(ctx, widgetID))
	case "sandbox.get":
		snap = w.Snapshot()
	default:
		return types.Failure(fmt.Errorf("unknown tool: %s", toolID))
	}
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"sandbox": snap})
}

func (p *SandboxProvider) mount(params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	req := workspace.SandboxRequest{
		Lesson: providers.OptionalString(params, "lesson"),
		Block:  providers.OptionalString(params, "block"),
	}
	if req.Lesson == "" && appCtx != nil && appCtx.Lesson != nil {
		req.Lesson = *appCtx.Lesson
	}

	if code, ok := params["initial_code"].(string); ok {
		req.Seed = &sandbox.Seed{
			InitialCode:  code,
			Language:     providers.OptionalString(params, "language"),
			FileName:     providers.OptionalString(params, "file_name"),
			Instructions: providers.OptionalString(params, "instructions"),
		}
	}

	w, err := p.workspace.MountSandbox(req)
	if err != nil {
		return types.Failure(err)
	}
	return types.Success(map[string]interface{}{"sandbox": w.Snapshot()})
}
