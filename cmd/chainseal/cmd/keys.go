package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainseal/chainseal/sig"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage trusted root keys",
}

var keysTrustCmd = &cobra.Command{
	Use:   "trust <public-key>",
	Short: "Register a root public key as trusted",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysTrust,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke a trusted root key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List root keys, revoked ones included",
	RunE:  runKeysList,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysTrustCmd)
	keysCmd.AddCommand(keysRevokeCmd)
	keysCmd.AddCommand(keysListCmd)
	keysTrustCmd.Flags().String("comment", "", "free-form note stored with the key")
}

func runKeysTrust(cmd *cobra.Command, args []string) error {
	pub, err := sig.ParsePublicKey(args[0])
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, store, err := openKeystore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	comment, _ := cmd.Flags().GetString("comment")
	keyID, err := store.Trust(pub, comment)
	if err != nil {
		return fmt.Errorf("failed to trust key: %w", err)
	}

	fmt.Println(keyID)
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, store, err := openKeystore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Revoke(args[0]); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}

	fmt.Printf("revoked %s\n", args[0])
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, store, err := openKeystore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	keys, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	for _, k := range keys {
		state := "trusted"
		if k.Revoked() {
			state = "revoked"
		}
		fmt.Printf("%s  %s  %s  %s\n", k.KeyID, state, k.PublicKey, k.Comment)
	}
	return nil
}
