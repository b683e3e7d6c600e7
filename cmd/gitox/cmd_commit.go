package main

import (
	"fmt"

	"github.com/odvcencio/gitox/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a snapshot of the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			var signer repo.CommitSigner
			if sign || signKey != "" {
				keyPath := signKey
				if keyPath == "" {
					keyPath = r.Config.User.SigningKey
				}
				resolved, err := resolveSigningKeyPath(keyPath)
				if err != nil {
					return err
				}
				signer, err = repo.NewSSHSigner(resolved)
				if err != nil {
					return err
				}
			}

			h, err := r.CommitWithSigner(message, signer)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[HEAD %s] %s\n", shortHash(h), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key (user.signing_key or ~/.ssh default)")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "SSH private key used to sign (implies --sign)")

	return cmd
}
