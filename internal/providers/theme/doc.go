// Package theme holds the site's dark-mode flag: one observable value that
// is loaded from settings at startup, persisted on every change and pushed
// to subscribers.
package theme
