package config

import "time"

// Config is the root configuration structure for Relay.
// It contains all configuration sections for provider integrations, routing
// behavior, usage recording, and telemetry settings.
type Config struct {
	// Providers contains configuration for all text-generation provider
	// integrations. Keys are provider names (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing contains configuration for the routing engine including
	// strategy selection and the cost reporting window.
	Routing RoutingConfig `yaml:"routing"`

	// Usage contains configuration for usage metric recording and retention.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig contains configuration for a single provider.
//
// The enabled flag, priority, and the two ceilings are runtime-tunable: they
// can be changed by an administrator (or a config reload) while the router is
// serving traffic.
type ProviderConfig struct {
	// Type is the provider adapter type.
	// Options: "openai", "anthropic", "mock"
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint.
	// Example: "https://api.openai.com/v1"
	// Defaults to the adapter's canonical endpoint when empty.
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider. Values of the form
	// "${VAR}" are expanded from the environment at load time.
	// Required for non-mock providers.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for requests to this provider.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Enabled controls whether the router may select this provider.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Priority orders providers for the primary-failover and least-cost
	// strategies. Lower values are tried first.
	// Default: 100
	Priority int `yaml:"priority"`

	// MaxRequestsPerMinute is the sliding-window request ceiling for this
	// provider. Zero rejects every request; negative values are invalid.
	// Default: 60
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`

	// MaxCostPerHour is the sliding-window cost ceiling in USD for this
	// provider. Zero rejects every request; negative values are invalid.
	// Default: 10.0
	MaxCostPerHour float64 `yaml:"max_cost_per_hour"`

	// PreferredModels is the ordered list of models to try when the caller
	// does not request a model present in the provider's catalog.
	PreferredModels []string `yaml:"preferred_models"`

	// FallbackModels is the ordered list of models to fall back to when a
	// preferred model is unavailable.
	FallbackModels []string `yaml:"fallback_models"`

	// Models overrides the adapter's built-in model catalog. Useful for
	// proxies and self-hosted deployments with custom model names or
	// pricing. Empty keeps the adapter's defaults.
	Models []ModelConfig `yaml:"models"`

	// DefaultModel names the catalog entry used when the caller does not
	// request a model. Only meaningful together with Models; empty falls
	// back to the first entry.
	DefaultModel string `yaml:"default_model"`
}

// ModelConfig describes one model catalog entry in the configuration file.
type ModelConfig struct {
	// Name is the model identifier used on the wire.
	Name string `yaml:"name"`

	// DisplayName is a human-readable model name.
	DisplayName string `yaml:"display_name"`

	// MaxOutputTokens is the largest completion the model can produce.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// InputCostPer1K is the cost in USD per 1000 input tokens.
	InputCostPer1K float64 `yaml:"input_cost_per_1k"`

	// OutputCostPer1K is the cost in USD per 1000 output tokens.
	OutputCostPer1K float64 `yaml:"output_cost_per_1k"`

	// ContextWindow is the model's total context size in tokens.
	ContextWindow int `yaml:"context_window"`
}

// RoutingConfig contains configuration for the routing engine.
type RoutingConfig struct {
	// Strategy selects the provider ordering policy.
	// Options: "primary-failover", "round-robin", "fastest", "least-cost"
	// Default: "primary-failover"
	Strategy string `yaml:"strategy"`

	// CostWindowHours controls how long cost samples are retained for
	// reporting. The 1-hour limiter window is unaffected; this only bounds
	// the horizon CostSummary can be asked about.
	// Default: 24
	CostWindowHours int `yaml:"cost_window_hours"`
}

// UsageConfig contains configuration for usage metric persistence.
type UsageConfig struct {
	// Sink selects the usage metric store.
	// Options: "memory", "sqlite", "none"
	// Default: "memory"
	Sink string `yaml:"sink"`

	// SQLitePath is the database file path when Sink is "sqlite".
	// Default: "data/usage.db"
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long usage metrics are kept before pruning.
	// Zero disables pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for the retention pruner.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics endpoint.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the Prometheus metric namespace.
	// Default: "relay"
	Namespace string `yaml:"namespace"`
}

// IsEnabled reports whether the provider is enabled, treating an unset flag
// as enabled.
func (p *ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// MetricsEnabled reports whether metrics collection is enabled, treating an
// unset flag as enabled.
func (m *MetricsConfig) MetricsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}
