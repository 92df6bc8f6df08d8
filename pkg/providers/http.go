package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient is the shared HTTP transport for provider adapters. It handles
// connection pooling, timeouts, JSON encoding, and the taxonomy-independent
// parts of error classification (auth and rate-limit status codes).
//
// There is deliberately no retry loop here: retries belong to the layer
// above the router, and retrying inside an adapter would make a single
// failover attempt take multiple provider calls.
type HTTPClient struct {
	name    string
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an HTTP client for the named provider.
func NewHTTPClient(name, baseURL string, timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		name:    name,
		baseURL: baseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the configured endpoint base URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// APIResponse is the raw outcome of one provider HTTP call, handed to the
// adapter for provider-specific classification.
type APIResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the full response body.
	Body []byte

	// RetryAfter is the parsed Retry-After header, zero if absent.
	RetryAfter time.Duration
}

// Do performs one HTTP request and returns the raw response. Auth failures
// (401/403) are classified here because they mean the same thing for every
// provider; everything else is handed back for adapter-specific
// classification.
func (c *HTTPClient) Do(ctx context.Context, method, path string, reqBody any, headers map[string]string) (*APIResponse, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return nil, &ProviderError{
				Provider: c.name,
				Message:  "failed to encode request",
				Cause:    err,
			}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, &ProviderError{
			Provider: c.name,
			Message:  "failed to create request",
			Cause:    err,
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending provider request",
		"provider", c.name,
		"method", method,
		"path", path,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		// Context errors pass through untouched so the router can tell a
		// caller cancellation apart from a provider failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{
			Provider: c.name,
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Provider: c.name,
			Message:  "failed to read response",
			Cause:    err,
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &CredentialsError{
			Provider: c.name,
			Message:  truncateBody(body),
		}
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
	}, nil
}

// DecodeJSON unmarshals a response body, wrapping failures as generic
// provider errors.
func (c *HTTPClient) DecodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{
			Provider: c.name,
			Message:  fmt.Sprintf("failed to decode response: %s", truncateBody(body)),
			Cause:    err,
		}
	}
	return nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}

// truncateBody bounds provider error bodies embedded in error messages.
func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
