package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainseal/chainseal/internal/keystore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply keystore schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := keystore.Open(cfg.KeystoreURL)
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}
	defer db.Close()

	if err := keystore.MigrateUp(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}
