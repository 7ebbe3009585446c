package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	chainseal "github.com/chainseal/chainseal"
	"github.com/chainseal/chainseal/sig"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <token-file>",
	Short: "Print a token's blocks without verifying trust",
	Long: `Inspect parses a token, verifies its signature chain, and prints its
blocks. The root key is not checked against the keystore; use authorize
for a full trust decision.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	encoded, err := readTokenInput(args[0])
	if err != nil {
		return err
	}

	token, err := chainseal.ParseBase64(encoded, nil)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	fmt.Printf("root key: %s\n", sig.EncodePublicKey(token.RootKey()))
	fmt.Printf("blocks:   %d\n", token.BlockCount())
	fmt.Printf("sealed:   %t\n", token.Sealed())
	fmt.Println()
	fmt.Print(token.Print())
	return nil
}
