package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	chainseal "github.com/chainseal/chainseal"
	"github.com/chainseal/chainseal/datalog"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize <token-file>",
	Short: "Authorize a token against ambient facts and policies",
	Long: `Authorize parses a token, checks its root key against the keystore,
evaluates all facts and checks, and resolves the given policies in
order. Exits non-zero when authorization is refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorize,
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
	authorizeCmd.Flags().StringArray("ambient", nil, "ambient fact, e.g. 'resource(#ambient, \"file1\")'")
	authorizeCmd.Flags().StringArray("check", nil, "authorizer check")
	authorizeCmd.Flags().StringArray("policy", nil, "policy, in order, e.g. 'allow if right(#authority, \"file1\", #read)'")
	authorizeCmd.Flags().StringArray("query", nil, "rule to query after a successful authorization")
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, store, err := openKeystore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	roots, err := store.TrustedRoots()
	if err != nil {
		return fmt.Errorf("failed to load trusted roots: %w", err)
	}

	encoded, err := readTokenInput(args[0])
	if err != nil {
		return err
	}

	token, err := chainseal.ParseBase64(encoded, chainseal.RootSet(roots))
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}
	if token.BlockCount() > cfg.MaxBlocks {
		return fmt.Errorf("token rejected: %d blocks exceeds the limit of %d", token.BlockCount(), cfg.MaxBlocks)
	}

	authorizer := chainseal.NewAuthorizer(token)
	authorizer.SetRunLimits(runLimits(cfg))

	ambient, _ := cmd.Flags().GetStringArray("ambient")
	for _, f := range ambient {
		authorizer.AddFact(f)
	}
	checks, _ := cmd.Flags().GetStringArray("check")
	for _, c := range checks {
		authorizer.AddCheck(c)
	}
	policies, _ := cmd.Flags().GetStringArray("policy")
	if len(policies) == 0 {
		policies = []string{"allow"}
	}
	for _, p := range policies {
		if err := authorizer.AddPolicy(p); err != nil {
			return fmt.Errorf("policy %q: %w", p, err)
		}
	}

	matched, err := authorizer.Authorize()
	if err != nil {
		var failed datalog.FailedChecksError
		if errors.As(err, &failed) {
			for _, f := range failed {
				fmt.Printf("failed: %s\n", f.Error())
			}
		}
		return fmt.Errorf("authorization refused: %w", err)
	}
	fmt.Printf("authorized by policy %d\n", matched)

	queries, _ := cmd.Flags().GetStringArray("query")
	for _, q := range queries {
		facts, err := authorizer.Query(q)
		if err != nil {
			return fmt.Errorf("query %q: %w", q, err)
		}
		for _, f := range facts {
			fmt.Println(authorizer.Symbols().PrintFact(f))
		}
	}
	return nil
}
