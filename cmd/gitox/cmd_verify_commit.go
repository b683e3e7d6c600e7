package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit [commit]",
		Short: "Check the SSH signature of a commit (default HEAD)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			rev := "HEAD"
			if len(args) > 0 {
				rev = args[0]
			}
			h, err := r.ResolveOID(rev)
			if err != nil {
				return err
			}
			info, err := r.VerifyCommit(h)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good %s signature on %s with key %s\n", info.Format, shortHash(h), info.Fingerprint)
			return nil
		},
	}
}
