package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/events"
	"reviewhunt-engine/internal/scrape"
)

type itemProgress struct {
	Identifier string `json:"identifier"`
	Succeeded  bool   `json:"succeeded"`
	FromCache  bool   `json:"from_cache"`
	Records    int    `json:"records"`
	Error      string `json:"error"`
	Done       int    `json:"done"`
	Total      int    `json:"total"`
}

// watchProgress prints item completions until the hub closes. The returned
// channel closes when printing stops.
func watchProgress(hub *events.Hub, w io.Writer) <-chan struct{} {
	sub := hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range sub {
			e, err := events.Parse(line)
			if err != nil {
				continue
			}
			switch e.Type {
			case events.SearchDone:
				var d map[string]int
				if e.Into(&d) == nil {
					fmt.Fprintf(w, "found %d products\n", d["candidates"])
				}
			case events.ItemDone:
				var p itemProgress
				if e.Into(&p) != nil {
					continue
				}
				switch {
				case !p.Succeeded:
					fmt.Fprintf(w, "[%d/%d] %s failed: %s\n", p.Done, p.Total, p.Identifier, p.Error)
				case p.FromCache:
					fmt.Fprintf(w, "[%d/%d] %s %d reviews (cached)\n", p.Done, p.Total, p.Identifier, p.Records)
				default:
					fmt.Fprintf(w, "[%d/%d] %s %d reviews\n", p.Done, p.Total, p.Identifier, p.Records)
				}
			}
		}
	}()
	return done
}

func printSummary(w io.Writer, s scrape.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%q  run %s", s.Query, s.RunID))
	t.AppendHeader(table.Row{"#", "Product", "Reviews", "Status"})
	rows := slices.Clone(s.Results)
	slices.SortFunc(rows, func(a, b domain.WorkResult) int { return cmp.Compare(a.Item.Rank, b.Item.Rank) })
	for _, r := range rows {
		status := "ok"
		switch {
		case !r.Succeeded:
			status = "failed"
		case r.FromCache:
			status = "cached"
		}
		t.AppendRow(table.Row{r.Item.Rank, r.Item.Key(), len(r.Collection.Records), status})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d processed", s.Processed, s.Submitted), s.Records, s.Duration.Round(time.Millisecond)})
	t.Render()

	for _, f := range s.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Item.Key(), f.Error)
	}
	if s.PersistFailures > 0 {
		fmt.Fprintf(w, "warning: %d artifacts could not be saved\n", s.PersistFailures)
	}
}
