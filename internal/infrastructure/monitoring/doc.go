/*
Package monitoring provides metrics collection for the tutorial backend.

# Overview

Metrics live on a dedicated Prometheus registry owned by Metrics, so several
servers (or tests) in one process never collide on registration.

# Metrics

- HTTP requests (count, latency, response size), labelled by route template
- Mounted widgets by kind, mounts and idle expiries
- Sandbox runs by outcome and evaluation latency
- Copy attempts by outcome
- Quiz submissions by feedback tier
- Service tool calls
- Lesson catalog reloads
- WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "sandbox", "run")
	// ... perform operation ...
	timer.Stop("success")

A nil *Metrics is valid and records nothing.
*/
package monitoring
