package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/scrape/util"
	"reviewhunt-engine/internal/store"
)

func newResultsCmd(rf *rootFlags, d deps) *cobra.Command {
	var showReviews bool
	cmd := &cobra.Command{
		Use:   "results <query>",
		Short: "Show the products and reviews stored for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rf, d, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			return runResults(cmd, a, strings.Join(args, " "), showReviews)
		},
	}
	cmd.Flags().BoolVar(&showReviews, "reviews", false, "list every stored review")
	return cmd
}

func runResults(cmd *cobra.Command, a *app, query string, showReviews bool) error {
	if !a.cfg.Output.SQLite {
		return errors.New("results: sqlite output is disabled (output.sqlite)")
	}
	path := a.cfg.Path(a.cfg.Output.SQLitePath)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(a.out, "No stored results for %q.\n", query)
		return nil
	}

	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open sqlite output: %w", err)
	}
	defer db.Close()
	sink := store.NewSink(db)

	ctx := cmd.Context()
	items, err := sink.Candidates(ctx, query)
	if err != nil {
		return fmt.Errorf("load candidates: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "No stored results for %q.\n", query)
		return nil
	}

	cols := make(map[string]domain.RecordCollection, len(items))
	for _, it := range items {
		col, ok, err := sink.Collection(ctx, it.Key())
		if err != nil {
			return fmt.Errorf("load reviews %s: %w", it.Key(), err)
		}
		if ok {
			cols[it.Key()] = col
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%q", query))
	t.AppendHeader(table.Row{"#", "Product", "Title", "Reviews"})
	for _, it := range items {
		reviews := "-"
		if col, ok := cols[it.Key()]; ok {
			reviews = fmt.Sprint(len(col.Records))
		}
		t.AppendRow(table.Row{it.Rank, it.Key(), util.Truncate(it.Title, 48), reviews})
	}
	t.Render()

	if !showReviews {
		return nil
	}
	r := table.NewWriter()
	r.SetOutputMirror(a.out)
	r.SetStyle(table.StyleRounded)
	r.AppendHeader(table.Row{"Product", "Stars", "Author", "Review"})
	for _, it := range items {
		for _, rec := range cols[it.Key()].Records {
			r.AppendRow(table.Row{it.Key(), rec.Score, rec.Author, util.Truncate(rec.Body, 72)})
		}
	}
	r.Render()
	return nil
}
