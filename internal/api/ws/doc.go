// Package ws streams widget state over WebSocket.
//
// Each connection can drive any mounted widget and watch it for changes.
// Watching a sandbox also delivers the copy confirmation reverting on its
// own, which no request/response call can observe.
//
// Message Types (Client → Server):
//   - edit, run, reset, copy: sandbox operations (widget_id, code)
//   - select, next, previous, submit, restart, review: quiz operations (widget_id, choice)
//   - watch, unwatch: start or stop streaming a widget's snapshots
//   - theme: set dark mode (dark) or toggle it when dark is omitted
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - snapshot: widget state after a change
//   - review: quiz results
//   - clipboard: a copy landed on the clipboard
//   - theme: current theme, sent on connect and on every change
//   - pong, unwatched, error
//
// Example Usage:
//
//	handler := ws.NewHandler(ws.Config{}, workspace, hub, flag, logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
