package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var force bool
	var showHash bool

	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "List or create tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				tags, err := r.ListTagsWithHashes()
				if err != nil {
					return err
				}
				names, err := r.ListTags()
				if err != nil {
					return err
				}

				if !showHash {
					for _, name := range names {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				}
				table := newTable(cmd.OutOrStdout(), "Tag", "Object", "Type")
				for _, name := range names {
					objType := "missing"
					if t, _, err := r.Store.Read(tags[name]); err == nil {
						objType = string(t)
					}
					table.Append([]string{name, string(tags[name]), objType})
				}
				table.Render()
				return nil
			}

			name := args[0]
			var target object.Hash
			if len(args) == 2 {
				target, err = r.ResolveOID(strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}
			} else {
				target, err = requireHead(r)
				if err != nil {
					return err
				}
			}

			return r.CreateTag(name, target, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")

	return cmd
}
