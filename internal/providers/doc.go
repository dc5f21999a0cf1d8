// Package providers holds the service providers and the parameter helpers
// they share.
//
// A provider exposes one service through a tool interface:
//   - Definition(): service metadata and tool definitions
//   - Execute(): runs a tool with parameters and context
//
// Providers:
//   - widgets: sandbox.* and quiz.* operations on mounted widgets
//   - search: lesson catalog lookup
//   - theme: dark-mode flag
//   - storage: settings and quiz progress
//   - clipboard: server-side clipboard history
//
// Example Usage:
//
//	p := widgets.NewSandboxProvider(workspace)
//	result, err := p.Execute(ctx, "sandbox.run", map[string]interface{}{"id": id}, appCtx)
package providers
