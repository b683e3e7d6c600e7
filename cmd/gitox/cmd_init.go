package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/odvcencio/gitox/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty gitox repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			// Ensure the target directory exists.
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			r, err := repo.Init(abs)
			if err != nil {
				return err
			}

			if compression != "" {
				if _, err := object.ParseCompression(compression); err != nil {
					return err
				}
				cfg := repo.DefaultConfig()
				cfg.Core.Compression = compression
				if err := r.WriteConfig(cfg); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty gitox repository in %s\n", r.GitoxDir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "", "object compression (none, zstd) written to config.toml")

	return cmd
}
