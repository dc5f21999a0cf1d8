// Package clipboard is the server-side clipboard facility used by sandbox
// copy actions. Writes are size-checked, kept in a bounded history and
// relayed to subscribers such as WebSocket connections.
package clipboard
