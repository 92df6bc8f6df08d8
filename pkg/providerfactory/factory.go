// Package providerfactory assembles the configured provider set from the
// loaded configuration. It is the only place that knows which adapter type
// maps to which concrete implementation, so adding a provider kind touches
// this package and nothing in the router.
package providerfactory

import (
	"fmt"
	"log/slog"

	"arclight/relay/pkg/config"
	"arclight/relay/pkg/providers"
	"arclight/relay/pkg/providers/anthropic"
	"arclight/relay/pkg/providers/mock"
	"arclight/relay/pkg/providers/openai"
)

// New creates a single provider from its configuration.
func New(name string, cfg config.ProviderConfig) (providers.Provider, error) {
	models := catalogFromConfig(cfg.Models)

	switch cfg.Type {
	case "openai":
		return openai.New(openai.Config{
			Name:         name,
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Timeout:      cfg.Timeout,
			Models:       models,
			DefaultModel: cfg.DefaultModel,
		})
	case "anthropic":
		return anthropic.New(anthropic.Config{
			Name:         name,
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Timeout:      cfg.Timeout,
			Models:       models,
			DefaultModel: cfg.DefaultModel,
		})
	case "mock":
		p := mock.New(name)
		if len(models) > 0 {
			p.SetCatalog(models, cfg.DefaultModel)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %q", cfg.Type, name)
	}
}

// catalogFromConfig converts configured catalog entries to provider model
// metadata. Returns nil for an empty override so adapters keep their
// built-in catalogs.
func catalogFromConfig(entries []config.ModelConfig) []providers.ModelInfo {
	if len(entries) == 0 {
		return nil
	}
	models := make([]providers.ModelInfo, len(entries))
	for i, m := range entries {
		models[i] = providers.ModelInfo{
			Name:            m.Name,
			DisplayName:     m.DisplayName,
			MaxOutputTokens: m.MaxOutputTokens,
			InputCostPer1K:  m.InputCostPer1K,
			OutputCostPer1K: m.OutputCostPer1K,
			ContextWindow:   m.ContextWindow,
		}
	}
	return models
}

// NewAll creates every provider in the configuration, keyed by name.
// Construction is all-or-nothing: one bad provider fails the whole set so a
// misconfiguration is caught at startup rather than at first failover.
func NewAll(cfg *config.Config) (map[string]providers.Provider, error) {
	providerMap := make(map[string]providers.Provider, len(cfg.Providers))

	for name, pc := range cfg.Providers {
		p, err := New(name, pc)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %q: %w", name, err)
		}
		providerMap[name] = p
	}

	slog.Info("providers initialized", "count", len(providerMap))
	return providerMap, nil
}
