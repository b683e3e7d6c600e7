package main

import (
	"fmt"
	"sort"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/spf13/cobra"
)

func newFsckCmd() *cobra.Command {
	var showDangling bool

	cmd := &cobra.Command{
		Use:   "fsck",
		Short: "Verify object integrity and reachability from HEAD and tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			var roots []object.Hash
			head, err := r.Head()
			if err != nil {
				return err
			}
			if head != "" {
				roots = append(roots, head)
			}
			tags, err := r.ListTagsWithHashes()
			if err != nil {
				return err
			}
			for _, h := range tags {
				roots = append(roots, h)
			}

			report, err := r.Store.Fsck(roots)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range report.Missing {
				fmt.Fprintf(out, "missing %s\n", h)
			}
			corrupt := make([]object.Hash, 0, len(report.Corrupt))
			for h := range report.Corrupt {
				corrupt = append(corrupt, h)
			}
			sort.Slice(corrupt, func(i, j int) bool { return corrupt[i] < corrupt[j] })
			for _, h := range corrupt {
				fmt.Fprintf(out, "corrupt %s: %v\n", h, report.Corrupt[h])
			}
			if showDangling {
				for _, h := range report.Dangling {
					fmt.Fprintf(out, "dangling %s\n", h)
				}
			}
			fmt.Fprintf(out, "checked %d object(s): %d reachable, %d dangling, %d missing, %d corrupt\n",
				report.Objects, report.Reachable, len(report.Dangling), len(report.Missing), len(report.Corrupt))

			if !report.OK() {
				return fmt.Errorf("fsck: repository has %d missing and %d corrupt object(s)", len(report.Missing), len(report.Corrupt))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDangling, "dangling", false, "list unreachable objects")

	return cmd
}
