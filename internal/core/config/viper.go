package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("keystore_url", "sqlite://chainseal.db")
	v.SetDefault("limits.max_facts", 1000)
	v.SetDefault("limits.max_iterations", 100)
	v.SetDefault("limits.max_duration", "30ms")
	v.SetDefault("limits.max_blocks", 32)

	// Bind environment variables with CS_ prefix
	v.SetEnvPrefix("CS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject private keys in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		KeystoreURL:   v.GetString("keystore_url"),
		MaxFacts:      v.GetInt("limits.max_facts"),
		MaxIterations: v.GetInt("limits.max_iterations"),
		MaxDuration:   v.GetDuration("limits.max_duration"),
		MaxBlocks:     v.GetInt("limits.max_blocks"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the keystore URL is present and limits are positive.
func validateConfig(cfg *Config) error {
	if cfg.KeystoreURL == "" {
		return fmt.Errorf("keystore_url must not be empty")
	}
	if cfg.MaxFacts <= 0 {
		return fmt.Errorf("limits.max_facts must be positive, got %d", cfg.MaxFacts)
	}
	if cfg.MaxIterations <= 0 {
		return fmt.Errorf("limits.max_iterations must be positive, got %d", cfg.MaxIterations)
	}
	if cfg.MaxDuration <= 0 {
		return fmt.Errorf("limits.max_duration must be positive, got %v", cfg.MaxDuration)
	}
	if cfg.MaxBlocks <= 0 {
		return fmt.Errorf("limits.max_blocks must be positive, got %d", cfg.MaxBlocks)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("root_key") || v.IsSet("limits.root_key") {
		return fmt.Errorf("private keys not allowed in config files (use CS_ROOT_KEY environment variable)")
	}
	return nil
}
