package main

import (
	"github.com/odvcencio/gitox/pkg/object"
	"github.com/spf13/cobra"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [tree-ish]",
		Short: "List the entries of a tree (default HEAD)",
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
			tree, err := resolveTreeish(r, rev)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "Type", "Object", "Path")
			if recursive {
				files, err := r.FlattenTree(tree)
				if err != nil {
					return err
				}
				for _, f := range files {
					table.Append([]string{string(object.TypeBlob), string(f.BlobHash), f.Path})
				}
			} else {
				tr, err := r.Store.ReadTree(tree)
				if err != nil {
					return err
				}
				for _, e := range tr.Entries {
					name := e.Name
					if e.IsDir() {
						name += "/"
					}
					table.Append([]string{string(e.Type), string(e.Hash), name})
				}
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list files in all subtrees with full paths")

	return cmd
}
