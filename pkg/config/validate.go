package config

import (
	"fmt"
	"net/url"
	"strings"
)

// knownStrategies lists the routing strategies accepted by validation.
var knownStrategies = map[string]bool{
	"primary-failover": true,
	"round-robin":      true,
	"fastest":          true,
	"least-cost":       true,
}

// knownProviderTypes lists the provider adapter types accepted by validation.
var knownProviderTypes = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"mock":      true,
}

// knownUsageSinks lists the usage sink backends accepted by validation.
var knownUsageSinks = map[string]bool{
	"memory": true,
	"sqlite": true,
	"none":   true,
}

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "providers.openai.api_key").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if len(cfg.Providers) == 0 {
		errs = append(errs, FieldError{
			Field:   "providers",
			Message: "at least one provider must be configured",
		})
	}

	for name, p := range cfg.Providers {
		errs = append(errs, validateProvider(name, &p)...)
	}

	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateUsage(&cfg.Usage)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProvider(name string, p *ProviderConfig) []FieldError {
	var errs []FieldError
	prefix := "providers." + name

	if !knownProviderTypes[p.Type] {
		errs = append(errs, FieldError{
			Field:   prefix + ".type",
			Message: fmt.Sprintf("unknown provider type %q (expected openai, anthropic, or mock)", p.Type),
		})
	}

	if p.Type != "mock" && p.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".api_key",
			Message: "api_key is required for non-mock providers",
		})
	}

	if p.BaseURL != "" {
		if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".base_url",
				Message: fmt.Sprintf("invalid URL %q", p.BaseURL),
			})
		}
	}

	if p.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".timeout",
			Message: "timeout must not be negative",
		})
	}

	if p.MaxRequestsPerMinute < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_requests_per_minute",
			Message: "must not be negative",
		})
	}

	if p.MaxCostPerHour < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_cost_per_hour",
			Message: "must not be negative",
		})
	}

	names := make(map[string]bool, len(p.Models))
	for i, m := range p.Models {
		field := fmt.Sprintf("%s.models[%d]", prefix, i)
		if m.Name == "" {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: "name is required",
			})
			continue
		}
		names[m.Name] = true
		if m.InputCostPer1K < 0 || m.OutputCostPer1K < 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "costs must not be negative",
			})
		}
	}

	if p.DefaultModel != "" && len(p.Models) > 0 && !names[p.DefaultModel] {
		errs = append(errs, FieldError{
			Field:   prefix + ".default_model",
			Message: fmt.Sprintf("%q is not in the models list", p.DefaultModel),
		})
	}

	return errs
}

func validateRouting(r *RoutingConfig) []FieldError {
	var errs []FieldError

	if !knownStrategies[r.Strategy] {
		errs = append(errs, FieldError{
			Field: "routing.strategy",
			Message: fmt.Sprintf("unknown strategy %q (expected primary-failover, round-robin, fastest, or least-cost)",
				r.Strategy),
		})
	}

	if r.CostWindowHours < 1 {
		errs = append(errs, FieldError{
			Field:   "routing.cost_window_hours",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateUsage(u *UsageConfig) []FieldError {
	var errs []FieldError

	if !knownUsageSinks[u.Sink] {
		errs = append(errs, FieldError{
			Field:   "usage.sink",
			Message: fmt.Sprintf("unknown sink %q (expected memory, sqlite, or none)", u.Sink),
		})
	}

	if u.Sink == "sqlite" && u.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "usage.sqlite_path",
			Message: "required when sink is sqlite",
		})
	}

	if u.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.retention_days",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", t.Logging.Level),
		})
	}

	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", t.Logging.Format),
		})
	}

	return errs
}
