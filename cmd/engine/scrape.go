package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reviewhunt-engine/internal/config"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/events"
	"reviewhunt-engine/internal/scrape"
	"reviewhunt-engine/internal/scrape/extract"
	"reviewhunt-engine/internal/scrape/orchestrator"
	"reviewhunt-engine/internal/scrape/search"
)

type scrapeFlags struct {
	rating     int
	pages      int
	limit      int
	workers    int
	sequential bool
	headless   bool
	driver     string
}

func newScrapeCmd(rf *rootFlags, d deps) *cobra.Command {
	var f scrapeFlags
	cmd := &cobra.Command{
		Use:   "scrape <query>",
		Short: "Search for a query and collect reviews of the top results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.validate(cmd); err != nil {
				return err
			}
			a, err := newApp(rf, d, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			f.apply(cmd, &a.cfg)
			return runScrape(cmd, a, strings.Join(args, " "), domain.StarFilter(f.rating))
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.rating, "rating", 0, "only collect reviews with this star rating (1-5)")
	fl.IntVar(&f.pages, "pages", 0, "review pages per product (1-10, default from config)")
	fl.IntVar(&f.limit, "limit", 0, "products to collect (1-50, default from config)")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers (1-10, default from config)")
	fl.BoolVar(&f.sequential, "sequential", false, "process products one at a time")
	fl.BoolVar(&f.headless, "headless", true, "run the browser without a window")
	fl.StringVar(&f.driver, "driver", "", "browser driver: rod or static")
	return cmd
}

// validate checks explicitly set flags before any work starts.
func (f scrapeFlags) validate(cmd *cobra.Command) error {
	fl := cmd.Flags()
	check := func(name string, v, lo, hi int) error {
		if fl.Changed(name) && (v < lo || v > hi) {
			return fmt.Errorf("--%s must be between %d and %d, got %d", name, lo, hi, v)
		}
		return nil
	}
	return errors.Join(
		check("rating", f.rating, 1, 5),
		check("pages", f.pages, 1, config.MaxPages),
		check("limit", f.limit, 1, config.MaxLimit),
		check("workers", f.workers, 1, config.MaxWorkersCeiling),
		f.checkDriver(fl.Changed("driver")),
	)
}

func (f scrapeFlags) checkDriver(set bool) error {
	if !set || f.driver == "rod" || f.driver == "static" {
		return nil
	}
	return fmt.Errorf("--driver must be rod or static, got %q", f.driver)
}

func (f scrapeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("pages") {
		cfg.Scrape.Pages = f.pages
	}
	if fl.Changed("limit") {
		cfg.Scrape.Limit = f.limit
	}
	if fl.Changed("workers") {
		cfg.Scrape.Workers = f.workers
	}
	if fl.Changed("sequential") {
		cfg.Scrape.Parallel = !f.sequential
	}
	if fl.Changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if fl.Changed("driver") {
		cfg.Browser.Driver = f.driver
	}
}

func runScrape(cmd *cobra.Command, a *app, query string, filter domain.StarFilter) error {
	ctx := cmd.Context()
	cfg := a.cfg

	hub := events.NewHub(64)
	done := watchProgress(hub, cmd.ErrOrStderr())
	defer func() {
		hub.Close()
		<-done
	}()

	persist, closeOut, err := a.persisters()
	if err != nil {
		return err
	}
	defer closeOut()

	c := a.cache()
	launcher := a.launcher()
	pipeline := extract.New(extract.Options{
		BaseURL:         cfg.Site.BaseURL,
		PageTimeout:     cfg.PageLoadTimeout(),
		SelectorTimeout: cfg.SelectorTimeout(),
		Pacer:           a.pacer(),
		Log:             a.log,
	})
	s := scrape.New(scrape.Options{
		Sessions: a.sessions(launcher),
		Search:   search.New(pipeline, c.Search, a.log),
		Orchestrator: orchestrator.New(orchestrator.Options{
			Launcher:   launcher,
			Pipeline:   pipeline,
			Cache:      c.Collections,
			Browser:    a.browserOptions(),
			MaxWorkers: cfg.Scrape.MaxWorkers,
			Events:     hub,
			Log:        a.log,
		}),
		Output: persist,
		Events: hub,
		Log:    a.log,
	})

	sum, err := s.Run(ctx, scrape.Request{
		Query:    query,
		Filter:   filter,
		Pages:    cfg.Scrape.Pages,
		Limit:    cfg.Scrape.Limit,
		Workers:  cfg.Scrape.Workers,
		Parallel: cfg.Scrape.Parallel,
	})
	switch {
	case errors.Is(err, domain.ErrDiscoveryEmpty):
		fmt.Fprintf(a.out, "No products found for %q.\n", query)
		return nil
	case err != nil:
		return err
	}
	printSummary(a.out, sum)
	return nil
}
