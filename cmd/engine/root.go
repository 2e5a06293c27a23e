package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	dataDir    string
	configPath string
	debug      bool
}

func newRootCmd(d deps) *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "engine",
		Short:         "Collect product listings and their reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&rf.dataDir, "data-dir", "", "data directory (default $REVIEWHUNT_DATA_DIR or .)")
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "config file (default <data-dir>/config.yml)")
	root.PersistentFlags().BoolVar(&rf.debug, "debug", false, "debug logging")

	root.AddCommand(
		newScrapeCmd(&rf, d),
		newResultsCmd(&rf, d),
		newCacheCmd(&rf, d),
		newSessionCmd(&rf, d),
		newConfigCmd(&rf, d),
	)
	return root
}
