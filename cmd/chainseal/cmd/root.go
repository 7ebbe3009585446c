package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/chainseal/chainseal/datalog"
	"github.com/chainseal/chainseal/internal/core/config"
	"github.com/chainseal/chainseal/internal/keystore"
)

var (
	configFile  string
	keystoreURL string
)

var rootCmd = &cobra.Command{
	Use:   "chainseal",
	Short: "chainseal authorization token toolkit",
	Long:  `chainseal builds, attenuates, and verifies cryptographically signed authorization tokens carrying datalog facts and checks.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&keystoreURL, "keystore-url", "", "keystore connection URL (sqlite://path or postgres://...)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration with flag overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if keystoreURL != "" {
		cfg.KeystoreURL = keystoreURL
	}
	return cfg, nil
}

// runLimits translates config limits into evaluation limits.
func runLimits(cfg *config.Config) datalog.RunLimits {
	return datalog.RunLimits{
		MaxFacts:      cfg.MaxFacts,
		MaxIterations: cfg.MaxIterations,
		MaxDuration:   cfg.MaxDuration,
	}
}

// openKeystore opens the configured keystore database and wraps it in a
// Store. The caller owns the returned handle.
func openKeystore(cfg *config.Config) (*sqlx.DB, *keystore.Store, error) {
	db, err := keystore.Open(cfg.KeystoreURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keystore: %w", err)
	}
	store, err := keystore.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load keystore queries: %w", err)
	}
	return db, store, nil
}

// readTokenInput returns the base64 token text from a file, or from
// stdin when path is "-".
func readTokenInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read token from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
