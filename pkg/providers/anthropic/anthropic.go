// Package anthropic implements the providers.Provider interface for
// Anthropic's Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"arclight/relay/pkg/providers"
)

const (
	// DefaultBaseURL is the canonical Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// apiVersion is the Messages API version header value.
	apiVersion = "2023-06-01"

	// defaultMaxTokens is used when the caller does not cap the completion;
	// the Messages API requires max_tokens on every request.
	defaultMaxTokens = 4096
)

// Provider is the Anthropic provider adapter.
type Provider struct {
	*providers.State

	client  *providers.HTTPClient
	catalog *providers.Catalog
	apiKey  string
}

// Config contains the settings needed to construct an Anthropic provider.
type Config struct {
	// Name is the provider identifier used in routing and metrics.
	Name string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is the x-api-key value. Required.
	APIKey string

	// Timeout is the per-request timeout. Defaults to 60s.
	Timeout time.Duration

	// Models overrides the built-in model catalog. Empty keeps the
	// defaults.
	Models []providers.ModelInfo

	// DefaultModel names the catalog entry used when the caller does not
	// request a model. Only meaningful together with Models.
	DefaultModel string
}

// New creates a new Anthropic provider instance.
func New(cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	catalog := defaultCatalog()
	if len(cfg.Models) > 0 {
		catalog = providers.NewCatalog(cfg.Models, cfg.DefaultModel)
	}

	p := &Provider{
		State:   providers.NewState(cfg.Name),
		client:  providers.NewHTTPClient(cfg.Name, cfg.BaseURL, cfg.Timeout),
		catalog: catalog,
		apiKey:  cfg.APIKey,
	}

	slog.Info("anthropic provider initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
	)

	return p, nil
}

// Models returns the provider's model catalog.
func (p *Provider) Models() []providers.ModelInfo {
	return p.catalog.Models()
}

// DefaultModel returns the default model name.
func (p *Provider) DefaultModel() string {
	return p.catalog.DefaultModel()
}

// EstimateCost returns the USD cost for the given token counts.
func (p *Provider) EstimateCost(inputTokens, outputTokens int, model string) float64 {
	return p.catalog.EstimateCost(inputTokens, outputTokens, model)
}

// Generate sends a messages request.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	wireReq := messagesRequest{
		Model: req.Model,
		Messages: []message{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if wireReq.Model == "" {
		wireReq.Model = p.catalog.DefaultModel()
	}
	if wireReq.MaxTokens == 0 {
		wireReq.MaxTokens = defaultMaxTokens
	}

	resp, err := p.client.Do(ctx, http.MethodPost, "/messages", wireReq, p.headers())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyError(resp)
	}

	var wireResp messagesResponse
	if err := p.client.DecodeJSON(resp.Body, &wireResp); err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, block := range wireResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &providers.GenerationResponse{
		Content:      content.String(),
		Model:        wireResp.Model,
		InputTokens:  wireResp.Usage.InputTokens,
		OutputTokens: wireResp.Usage.OutputTokens,
		FinishReason: wireResp.StopReason,
	}, nil
}

// ValidateCredentials sends a minimal one-token request as an authenticated
// probe; the Messages API has no cheap list endpoint that exercises the key.
func (p *Provider) ValidateCredentials(ctx context.Context) error {
	probe := messagesRequest{
		Model:     p.catalog.DefaultModel(),
		Messages:  []message{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}

	resp, err := p.client.Do(ctx, http.MethodPost, "/messages", probe, p.headers())
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return p.classifyError(resp)
	}
	return nil
}

// classifyError maps an Anthropic error response onto the fixed taxonomy.
//
// Anthropic reports exhausted credit as HTTP 400 with a message about the
// credit balance, and rate limiting as HTTP 429 with a retry-after header.
func (p *Provider) classifyError(resp *providers.APIResponse) error {
	var wireErr errorResponse
	_ = p.client.DecodeJSON(resp.Body, &wireErr)
	message := wireErr.Error.Message
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   p.Name(),
			RetryAfter: resp.RetryAfter,
			Message:    message,
		}
	case strings.Contains(message, "credit balance is too low"):
		return &providers.QuotaError{Provider: p.Name(), Message: message}
	default:
		return &providers.ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": apiVersion,
	}
}

// defaultCatalog returns the built-in Anthropic model catalog.
func defaultCatalog() *providers.Catalog {
	models := []providers.ModelInfo{
		{
			Name:              "claude-3-5-sonnet-20241022",
			DisplayName:       "Claude 3.5 Sonnet",
			MaxOutputTokens:   8192,
			InputCostPer1K:    0.003,
			OutputCostPer1K:   0.015,
			ContextWindow:     200000,
			Capabilities:      []string{"chat", "vision"},
			SupportsStreaming: true,
			SupportsFunctions: true,
		},
		{
			Name:              "claude-3-5-haiku-20241022",
			DisplayName:       "Claude 3.5 Haiku",
			MaxOutputTokens:   8192,
			InputCostPer1K:    0.0008,
			OutputCostPer1K:   0.004,
			ContextWindow:     200000,
			Capabilities:      []string{"chat"},
			SupportsStreaming: true,
			SupportsFunctions: true,
		},
	}
	return providers.NewCatalog(models, "claude-3-5-sonnet-20241022")
}
