package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"arclight/relay/pkg/config"
	"arclight/relay/pkg/providerfactory"
	"arclight/relay/pkg/routing"
)

var validateFlags struct {
	skipCredentials bool
	timeout         time.Duration
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and provider credentials",
	Long: `Load and validate the configuration file, then run each configured
provider's lightweight credential check.

Examples:
  # Validate config and credentials
  relay validate

  # Validate the config file only
  relay validate --skip-credentials`,
	RunE: validateSetup,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.skipCredentials, "skip-credentials", false, "skip the provider credential checks")
	validateCmd.Flags().DurationVar(&validateFlags.timeout, "timeout", 30*time.Second, "credential check timeout")
}

func validateSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fmt.Printf("✓ Configuration valid (%d providers)\n", len(cfg.Providers))

	if validateFlags.skipCredentials {
		return nil
	}

	providerSet, err := providerfactory.NewAll(cfg)
	if err != nil {
		return fmt.Errorf("constructing providers: %w", err)
	}

	policies := make(map[string]routing.ProviderPolicy, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		policies[name] = routing.PolicyFromConfig(pc)
	}
	router, err := routing.New(providerSet, policies, routing.Options{
		Strategy: routing.Strategy(cfg.Routing.Strategy),
	})
	if err != nil {
		return fmt.Errorf("constructing router: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), validateFlags.timeout)
	defer cancel()

	results := router.ValidateAllProviders(ctx)

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	failed := 0
	for _, id := range ids {
		if results[id] {
			fmt.Printf("✓ %s: credentials valid\n", id)
		} else {
			fmt.Printf("✗ %s: credential check failed\n", id)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d providers failed the credential check", failed, len(results))
	}
	return nil
}
