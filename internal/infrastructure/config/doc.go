// Package config provides 12-factor configuration management for the tutorial backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override the listen address for development.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, allowed CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Sandbox: evaluation timeout, runtime pool size, copy feedback window
//   - Clipboard: history size and payload limit
//   - Widgets: idle expiry and instance cap
//   - Content: lesson directory and hot reload
//   - Storage: sqlite database path
//   - Theme: default dark mode
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Addr())
package config
