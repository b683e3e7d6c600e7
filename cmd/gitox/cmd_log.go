package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/odvcencio/gitox/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [commit]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			headHash, err := r.Head()
			if err != nil {
				return err
			}
			start := headHash
			if len(args) > 0 {
				start, err = r.ResolveOID(args[0])
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if start == "" {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			tags, err := r.ListTagsWithHashes()
			if err != nil {
				return err
			}
			tagsByHash := make(map[object.Hash][]string)
			for name, h := range tags {
				tagsByHash[h] = append(tagsByHash[h], name)
			}

			it := r.Log(start)
			for n := 0; (limit <= 0 || n < limit) && it.Next(); n++ {
				h, c := it.Hash(), it.Commit()
				decoration := buildDecoration(h, headHash, tagsByHash[h])

				if oneline {
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", shortHash(h), decoration, firstLine(c.Message))
					} else {
						fmt.Fprintf(out, "%s %s\n", shortHash(h), firstLine(c.Message))
					}
					continue
				}

				if decoration != "" {
					fmt.Fprintf(out, "commit %s %s\n", h, decoration)
				} else {
					fmt.Fprintf(out, "commit %s\n", h)
				}
				if c.Signature != "" {
					fmt.Fprintln(out, "Signed: yes")
				}
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return it.Err()
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 = all)")

	return cmd
}

// buildDecoration returns a string like "(HEAD, tag: v1)" naming the refs
// that point at commitHash, or "" when none do.
func buildDecoration(commitHash, headHash object.Hash, tags []string) string {
	var parts []string
	if commitHash == headHash {
		parts = append(parts, repo.HeadRef)
	}
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	for _, t := range sorted {
		parts = append(parts, "tag: "+t)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
