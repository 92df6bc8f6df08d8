// Package openai implements the providers.Provider interface for
// OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"arclight/relay/pkg/providers"
)

// DefaultBaseURL is the canonical OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider is the OpenAI provider adapter.
type Provider struct {
	*providers.State

	client  *providers.HTTPClient
	catalog *providers.Catalog
	apiKey  string
}

// Config contains the settings needed to construct an OpenAI provider.
type Config struct {
	// Name is the provider identifier used in routing and metrics.
	Name string

	// BaseURL overrides the API endpoint (for proxies and compatible
	// servers). Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is the bearer token. Required.
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

// New creates a new OpenAI provider instance.
func New(cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
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

	slog.Info("openai provider initialized",
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

// Generate sends a chat completion request.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	wireReq := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if wireReq.Model == "" {
		wireReq.Model = p.catalog.DefaultModel()
	}

	resp, err := p.client.Do(ctx, http.MethodPost, "/chat/completions", wireReq, p.headers())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyError(resp)
	}

	var wireResp chatResponse
	if err := p.client.DecodeJSON(resp.Body, &wireResp); err != nil {
		return nil, err
	}
	if len(wireResp.Choices) == 0 {
		return nil, &providers.ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    "response contained no choices",
		}
	}

	choice := wireResp.Choices[0]
	return &providers.GenerationResponse{
		Content:      choice.Message.Content,
		Model:        wireResp.Model,
		InputTokens:  wireResp.Usage.PromptTokens,
		OutputTokens: wireResp.Usage.CompletionTokens,
		FinishReason: choice.FinishReason,
	}, nil
}

// ValidateCredentials lists models as a lightweight authenticated probe.
func (p *Provider) ValidateCredentials(ctx context.Context) error {
	resp, err := p.client.Do(ctx, http.MethodGet, "/models", nil, p.headers())
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return p.classifyError(resp)
	}
	return nil
}

// classifyError maps an OpenAI error response onto the fixed taxonomy.
//
// OpenAI reports both rate limiting and exhausted quota as HTTP 429; the
// error type field ("insufficient_quota") is the only way to tell them
// apart.
func (p *Provider) classifyError(resp *providers.APIResponse) error {
	var wireErr errorResponse
	_ = p.client.DecodeJSON(resp.Body, &wireErr)
	message := wireErr.Error.Message
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		if wireErr.Error.Type == "insufficient_quota" ||
			strings.Contains(message, "exceeded your current quota") {
			return &providers.QuotaError{Provider: p.Name(), Message: message}
		}
		return &providers.RateLimitError{
			Provider:   p.Name(),
			RetryAfter: resp.RetryAfter,
			Message:    message,
		}
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
		"Authorization": "Bearer " + p.apiKey,
	}
}

// defaultCatalog returns the built-in OpenAI model catalog.
func defaultCatalog() *providers.Catalog {
	models := []providers.ModelInfo{
		{
			Name:              "gpt-4o",
			DisplayName:       "GPT-4o",
			MaxOutputTokens:   16384,
			InputCostPer1K:    0.0025,
			OutputCostPer1K:   0.01,
			ContextWindow:     128000,
			Capabilities:      []string{"chat", "vision"},
			SupportsStreaming: true,
			SupportsFunctions: true,
		},
		{
			Name:              "gpt-4o-mini",
			DisplayName:       "GPT-4o mini",
			MaxOutputTokens:   16384,
			InputCostPer1K:    0.00015,
			OutputCostPer1K:   0.0006,
			ContextWindow:     128000,
			Capabilities:      []string{"chat", "vision"},
			SupportsStreaming: true,
			SupportsFunctions: true,
		},
		{
			Name:              "gpt-3.5-turbo",
			DisplayName:       "GPT-3.5 Turbo",
			MaxOutputTokens:   4096,
			InputCostPer1K:    0.0005,
			OutputCostPer1K:   0.0015,
			ContextWindow:     16385,
			Capabilities:      []string{"chat"},
			SupportsStreaming: true,
			SupportsFunctions: true,
		},
	}
	return providers.NewCatalog(models, "gpt-4o")
}
