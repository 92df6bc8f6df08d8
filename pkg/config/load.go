package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches "${VAR}" references in configuration values.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadConfig loads configuration from a YAML file at the specified path.
// It expands "${VAR}" environment references in API keys, applies default
// values, validates the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration file %q: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig parses raw YAML configuration bytes. It applies environment
// expansion, defaults, and validation exactly as LoadConfig does.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	expandEnv(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnv expands "${VAR}" references in secret-bearing fields.
// Unset variables expand to the empty string so validation can flag the
// missing credential.
func expandEnv(cfg *Config) {
	for name, p := range cfg.Providers {
		p.APIKey = envPattern.ReplaceAllStringFunc(p.APIKey, func(match string) string {
			return os.Getenv(envPattern.FindStringSubmatch(match)[1])
		})
		cfg.Providers[name] = p
	}
}
