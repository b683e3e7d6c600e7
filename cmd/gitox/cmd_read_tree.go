package main

import (
	"github.com/spf13/cobra"
)

func newReadTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-tree <tree-ish>",
		Short: "Write the files of a tree into the working directory",
		Long: "Write the files of a tree (or of a commit's tree) into the working directory.\n" +
			"Tracked files are overwritten; files the tree does not name are left alone.\n" +
			"HEAD is not moved.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			tree, err := resolveTreeish(r, args[0])
			if err != nil {
				return err
			}
			return r.ReadTree(tree, r.RootDir)
		},
	}
}
