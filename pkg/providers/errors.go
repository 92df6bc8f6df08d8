package providers

import (
	"fmt"
	"net/http"
	"time"
)

// The error taxonomy is fixed and provider-independent: every adapter must
// map backend failures onto exactly these four types. The router's failover
// loop dispatches on them with errors.As and treats anything else as a
// programming error.

// RateLimitError means the provider rejected the request for rate limiting
// (HTTP 429). It is transient: the router cools the provider down and fails
// over to the next candidate.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request.
	Provider string

	// RetryAfter is the cool-down duration advertised by the provider,
	// zero if it did not advertise one.
	RetryAfter time.Duration

	// Message is the error message from the provider.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// QuotaError means the provider account has exhausted its quota or credit.
// It is not transient: the router disables the provider until an operator
// re-enables it.
type QuotaError struct {
	// Provider is the name of the provider whose quota is exhausted.
	Provider string

	// Message is the error message from the provider.
	Message string
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("provider %q quota exceeded: %s", e.Provider, e.Message)
}

// CredentialsError means the provider rejected the configured API key
// (HTTP 401 or 403).
type CredentialsError struct {
	// Provider is the name of the provider that rejected authentication.
	Provider string

	// Message is the error message from the provider.
	Message string
}

// Error implements the error interface.
func (e *CredentialsError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// ProviderError is the generic variant: any classified-but-uncategorized
// provider failure (5xx, malformed responses, network errors).
type ProviderError struct {
	// Provider is the name of the provider that returned the error.
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid provider configuration detected at
// construction time.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration.
	Provider string

	// Field is the configuration field that is invalid.
	Field string

	// Message describes the configuration error.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// ParseRetryAfter parses a Retry-After header value into a duration.
// It supports both delay-seconds and HTTP-date formats; unparseable values
// yield zero.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
