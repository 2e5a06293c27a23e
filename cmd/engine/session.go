package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd(rf *rootFlags, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Check or forget the saved login",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Probe whether the saved login still works",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(rf, d, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer a.close()

				ok, err := a.sessions(a.launcher()).Check(cmd.Context())
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(a.out, "session valid (%s)\n", a.backend())
				} else {
					fmt.Fprintf(a.out, "no valid session (%s); the next scrape will ask you to log in\n", a.backend())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the saved login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(rf, d, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer a.close()

				if err := a.backend().Delete(); err != nil {
					return fmt.Errorf("reset session: %w", err)
				}
				fmt.Fprintf(a.out, "session removed (%s)\n", a.backend())
				return nil
			},
		},
	)
	return cmd
}
