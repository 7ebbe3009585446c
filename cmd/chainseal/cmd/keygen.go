package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainseal/chainseal/sig"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new root keypair",
	RunE:  runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	kp, err := sig.GenerateKeypair(nil)
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}

	fmt.Printf("public:  %s\n", sig.EncodePublicKey(kp.Public))
	fmt.Printf("private: %s\n", sig.EncodePrivateKey(kp.Private))
	fmt.Println()
	fmt.Println("Export the private key as CS_ROOT_KEY to sign tokens.")
	fmt.Println("Register the public key with 'chainseal keys trust'.")
	return nil
}
