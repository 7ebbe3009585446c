package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	chainseal "github.com/chainseal/chainseal"
)

var sealCmd = &cobra.Command{
	Use:   "seal <token-file>",
	Short: "Seal a token against further attenuation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeal,
}

func init() {
	rootCmd.AddCommand(sealCmd)
}

func runSeal(cmd *cobra.Command, args []string) error {
	encoded, err := readTokenInput(args[0])
	if err != nil {
		return err
	}

	token, err := chainseal.ParseBase64(encoded, nil)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	sealed, err := token.Seal()
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}

	fmt.Println(sealed.Base64())
	return nil
}
