package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHashFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-file <path>",
		Short: "Store a file as a blob and print its object id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := r.HashFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
