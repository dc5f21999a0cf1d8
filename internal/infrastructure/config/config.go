package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Sandbox   SandboxConfig
	Clipboard ClipboardConfig
	Widgets   WidgetConfig
	Content   ContentConfig
	Storage   StorageConfig
	Theme     ThemeConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SandboxConfig holds code evaluation configuration.
type SandboxConfig struct {
	Timeout            time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"2s"`
	PoolSize           int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	MaxSourceBytes     int           `envconfig:"SANDBOX_MAX_SOURCE_BYTES" default:"65536"`
	CopyFeedbackWindow time.Duration `envconfig:"COPY_FEEDBACK_WINDOW" default:"2s"`
}

// ClipboardConfig holds clipboard hub configuration.
type ClipboardConfig struct {
	History  int `envconfig:"CLIPBOARD_HISTORY" default:"50"`
	MaxBytes int `envconfig:"CLIPBOARD_MAX_BYTES" default:"1048576"`
}

// WidgetConfig holds workspace limits.
type WidgetConfig struct {
	IdleTTL      time.Duration `envconfig:"WIDGET_IDLE_TTL" default:"30m"`
	MaxInstances int           `envconfig:"WIDGET_MAX_INSTANCES" default:"1000"`
}

// ContentConfig holds lesson catalog configuration.
type ContentConfig struct {
	Dir   string `envconfig:"CONTENT_DIR" default:""`
	Watch bool   `envconfig:"CONTENT_WATCH" default:"false"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	Path string `envconfig:"STORAGE_PATH" default:"learnreact.db"`
}

// ThemeConfig holds theme defaults.
type ThemeConfig struct {
	DefaultDark bool `envconfig:"THEME_DEFAULT_DARK" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			Timeout:            2 * time.Second,
			PoolSize:           4,
			MaxSourceBytes:     64 * 1024,
			CopyFeedbackWindow: 2 * time.Second,
		},
		Clipboard: ClipboardConfig{
			History:  50,
			MaxBytes: 1024 * 1024,
		},
		Widgets: WidgetConfig{
			IdleTTL:      30 * time.Minute,
			MaxInstances: 1000,
		},
		Storage: StorageConfig{
			Path: "learnreact.db",
		},
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Sandbox.Timeout <= 0 {
		problems = append(problems, "SANDBOX_TIMEOUT must be positive")
	}
	if c.Sandbox.PoolSize < 1 {
		problems = append(problems, "SANDBOX_POOL_SIZE must be at least 1")
	}
	if c.Sandbox.MaxSourceBytes < 1 {
		problems = append(problems, "SANDBOX_MAX_SOURCE_BYTES must be positive")
	}
	if c.Sandbox.CopyFeedbackWindow <= 0 {
		problems = append(problems, "COPY_FEEDBACK_WINDOW must be positive")
	}
	if c.Widgets.MaxInstances < 1 {
		problems = append(problems, "WIDGET_MAX_INSTANCES must be at least 1")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond < 1 {
		problems = append(problems, "RATE_LIMIT_RPS must be at least 1 when rate limiting is enabled")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
