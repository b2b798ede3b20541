// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and EEAT_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds how many batches may wait for analysis.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchURLs caps the URLs accepted per batch.
	MaxBatchURLs int `koanf:"max_batch_urls"`

	// Anthropic classifier settings.
	AnthropicAPIKey    string `koanf:"anthropic_api_key"`
	AnthropicBaseURL   string `koanf:"anthropic_base_url"`
	AnthropicModel     string `koanf:"anthropic_model"`
	AnthropicMaxTokens int    `koanf:"anthropic_max_tokens"`

	// ClassifyTimeoutMS bounds one classifier call.
	ClassifyTimeoutMS int `koanf:"classify_timeout_ms"`

	// ClassifyRatePerSec paces classifier calls; 0 means unlimited.
	ClassifyRatePerSec float64 `koanf:"classify_rate_per_sec"`

	// Store selects the batch store: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used by the sqlite store.
	SQLitePath string `koanf:"sqlite_path"`

	// CatalogPath optionally points at a YAML signal catalog.
	CatalogPath string `koanf:"catalog_path"`

	// CORSAllowOrigin is sent as Access-Control-Allow-Origin.
	CORSAllowOrigin string `koanf:"cors_allow_origin"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          FormatText,
		Addr:               ":9080",
		QueueSize:          64,
		MaxBatchURLs:       50,
		AnthropicBaseURL:   "https://api.anthropic.com",
		AnthropicModel:     "claude-sonnet-4-20250514",
		AnthropicMaxTokens: 2000,
		ClassifyTimeoutMS:  120_000,
		Store:              StoreMemory,
		SQLitePath:         "eeat.db",
		CORSAllowOrigin:    "*",
	}
}

// ClassifyTimeout returns the classifier timeout as a duration.
func (c *Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutMS) * time.Millisecond
}

// Validate checks the values a service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{StoreMemory, StoreSQLite}, c.Store):
		return fmt.Errorf("%w: store must be %q or %q, got %q", ErrInvalidConfig, StoreMemory, StoreSQLite, c.Store)
	case c.Store == StoreSQLite && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path must be set for the sqlite store", ErrInvalidConfig)
	case c.MaxBatchURLs <= 0:
		return fmt.Errorf("%w: max_batch_urls must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.ClassifyRatePerSec < 0:
		return fmt.Errorf("%w: classify_rate_per_sec must not be negative", ErrInvalidConfig)
	case c.LogFormat != FormatText && c.LogFormat != FormatJSON:
		return fmt.Errorf("%w: log_format must be %q or %q", ErrInvalidConfig, FormatText, FormatJSON)
	}
	return nil
}
