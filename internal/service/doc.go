// Package service provides the service registry.
//
// Each provider publishes a Definition (its tools and their parameters) and
// executes tools addressed as "service.tool". The registry dispatches on the
// service prefix, records call metrics, and supports keyword discovery.
//
//	registry := service.NewRegistry(logger).WithMetrics(metrics)
//	registry.Register(widgets.NewSandboxProvider(workspace))
//	result, err := registry.Execute(ctx, "sandbox.run", params, appCtx)
package service
