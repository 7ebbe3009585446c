package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	chainseal "github.com/chainseal/chainseal"
)

var appendCmd = &cobra.Command{
	Use:   "append <token-file>",
	Short: "Append an attenuation block to a token",
	Long: `Append adds a block of facts, rules, and checks to an existing open
token. No root key is needed: the block is signed with the ephemeral key
carried inside the token. Use '-' to read the token from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAppend,
}

func init() {
	rootCmd.AddCommand(appendCmd)
	appendCmd.Flags().StringArray("fact", nil, "block fact")
	appendCmd.Flags().StringArray("rule", nil, "block rule")
	appendCmd.Flags().StringArray("check", nil, "block check")
}

func runAppend(cmd *cobra.Command, args []string) error {
	encoded, err := readTokenInput(args[0])
	if err != nil {
		return err
	}

	token, err := chainseal.ParseBase64(encoded, nil)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	block := token.CreateBlock()

	facts, _ := cmd.Flags().GetStringArray("fact")
	for _, f := range facts {
		if err := block.AddFact(f); err != nil {
			return fmt.Errorf("fact %q: %w", f, err)
		}
	}
	rules, _ := cmd.Flags().GetStringArray("rule")
	for _, r := range rules {
		if err := block.AddRule(r); err != nil {
			return fmt.Errorf("rule %q: %w", r, err)
		}
	}
	checks, _ := cmd.Flags().GetStringArray("check")
	for _, c := range checks {
		if err := block.AddCheck(c); err != nil {
			return fmt.Errorf("check %q: %w", c, err)
		}
	}

	appended, err := token.Append(block, nil)
	if err != nil {
		return fmt.Errorf("failed to append block: %w", err)
	}

	fmt.Println(appended.Base64())
	return nil
}
