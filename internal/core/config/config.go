// Package config provides configuration management for the chainseal CLI.
package config

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/chainseal/chainseal/sig"
)

// Config holds the settings shared by the chainseal commands: where the
// trusted root keys live and how much work a single authorization may do.
type Config struct {
	KeystoreURL   string
	MaxFacts      int
	MaxIterations int
	MaxDuration   time.Duration
	MaxBlocks     int
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		KeystoreURL:   "sqlite://chainseal.db",
		MaxFacts:      1000,
		MaxIterations: 100,
		MaxDuration:   30 * time.Millisecond,
		MaxBlocks:     32,
	}
}

// RootPrivateKey reads the token-signing private key from the
// CS_ROOT_KEY environment variable. Private keys are environment-only;
// keys found in config files are rejected at load time.
func RootPrivateKey() (ed25519.PrivateKey, error) {
	val := os.Getenv("CS_ROOT_KEY")
	if val == "" {
		return nil, fmt.Errorf("CS_ROOT_KEY is not set")
	}

	priv, err := sig.ParsePrivateKey(val)
	if err != nil {
		return nil, fmt.Errorf("CS_ROOT_KEY: %w", err)
	}
	return priv, nil
}
