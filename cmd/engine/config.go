package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewhunt-engine/internal/config"
)

func newConfigCmd(rf *rootFlags, _ deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Report configuration errors and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(rf)
			if err != nil {
				return err
			}
			_, v := config.NormalizeAndValidate(cfg)

			out := cmd.OutOrStdout()
			for _, w := range v.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if !v.OK() {
				return fmt.Errorf("%s: %w", path, v.Err())
			}
			fmt.Fprintf(out, "%s: ok\n", path)
			return nil
		},
	})
	return cmd
}
