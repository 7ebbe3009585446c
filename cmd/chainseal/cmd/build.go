package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	chainseal "github.com/chainseal/chainseal"
	"github.com/chainseal/chainseal/internal/core/config"
	"github.com/chainseal/chainseal/sig"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a new token signed by the root key",
	Long: `Build creates a token whose authority block carries the given facts,
rules, and checks. The signing key is read from CS_ROOT_KEY.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringArray("fact", nil, "authority fact, e.g. 'right(#authority, \"file1\", #read)'")
	buildCmd.Flags().StringArray("rule", nil, "authority rule")
	buildCmd.Flags().StringArray("check", nil, "authority check")
}

func runBuild(cmd *cobra.Command, args []string) error {
	priv, err := config.RootPrivateKey()
	if err != nil {
		return err
	}
	kp, err := sig.KeypairFromPrivate(priv)
	if err != nil {
		return fmt.Errorf("invalid root key: %w", err)
	}

	builder := chainseal.NewBuilder(kp, nil)

	facts, _ := cmd.Flags().GetStringArray("fact")
	for _, f := range facts {
		if err := builder.AddAuthorityFact(f); err != nil {
			return fmt.Errorf("fact %q: %w", f, err)
		}
	}
	rules, _ := cmd.Flags().GetStringArray("rule")
	for _, r := range rules {
		if err := builder.AddAuthorityRule(r); err != nil {
			return fmt.Errorf("rule %q: %w", r, err)
		}
	}
	checks, _ := cmd.Flags().GetStringArray("check")
	for _, c := range checks {
		if err := builder.AddAuthorityCheck(c); err != nil {
			return fmt.Errorf("check %q: %w", c, err)
		}
	}

	token, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build token: %w", err)
	}

	fmt.Println(token.Base64())
	return nil
}
