package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"reviewhunt-engine/internal/cache"
)

func newCacheCmd(rf *rootFlags, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the search and review caches",
	}

	withCache := func(fn func(a *app, c *cache.Cache) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(rf, d, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			return fn(a, a.cache())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show entry counts per namespace",
			Args:  cobra.NoArgs,
			RunE: withCache(func(a *app, c *cache.Cache) error {
				renderStats(a, c)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired entries",
			Args:  cobra.NoArgs,
			RunE: withCache(func(a *app, c *cache.Cache) error {
				n, err := c.EvictExpired()
				if err != nil {
					return fmt.Errorf("prune cache: %w", err)
				}
				fmt.Fprintf(a.out, "removed %d expired entries\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached entry",
			Args:  cobra.NoArgs,
			RunE: withCache(func(a *app, c *cache.Cache) error {
				if err := c.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(a.out, "cache cleared")
				return nil
			}),
		},
	)
	return cmd
}

func renderStats(a *app, c *cache.Cache) {
	s := c.Stats()
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Namespace", "Total", "Valid", "Expired", "File"})
	t.AppendRow(table.Row{"search", s.Search.Total, s.Search.Valid, s.Search.Expired, c.Search.Path()})
	t.AppendRow(table.Row{"collections", s.Collections.Total, s.Collections.Valid, s.Collections.Expired, c.Collections.Path()})
	t.AppendFooter(table.Row{"all", s.Combined.Total, s.Combined.Valid, s.Combined.Expired, fmt.Sprintf("ttl %s", a.cfg.CacheTTL())})
	t.Render()
}
