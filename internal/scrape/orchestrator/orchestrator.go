// Package orchestrator fans per-item extraction out over a bounded pool, one
// isolated browser session per item.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/cache"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/events"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/extract"
)

const DefaultMaxWorkers = 10

// Publisher receives one event per finished item.
type Publisher interface {
	Publish(evt string)
}

type Options struct {
	Launcher   browser.Launcher
	Pipeline   *extract.Pipeline
	Cache      *cache.Store[domain.RecordCollection]
	Browser    browser.Options
	MaxWorkers int
	Events     Publisher
	Log        logger.Logger
}

type Orchestrator struct {
	opts  Options
	runID string
	log   logger.Logger
}

func New(opts Options) *Orchestrator {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	return &Orchestrator{opts: opts, log: opts.Log.With(logger.String("component", "orchestrator"))}
}

// WithSession returns a copy whose worker sessions start from cookies and
// whose events carry runID.
func (o *Orchestrator) WithSession(cookies []browser.Cookie, runID string) *Orchestrator {
	cp := *o
	cp.opts.Browser.Cookies = append([]browser.Cookie(nil), cookies...)
	cp.runID = runID
	cp.log = o.log.With(logger.String("run_id", runID))
	return &cp
}

// ClampWorkers bounds n to [1, limit].
func ClampWorkers(n, limit int) int {
	if n < 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	return n
}

// Run processes every item and returns exactly one result per item, in
// completion order. A failing item never cancels its siblings; items not yet
// started when ctx ends are reported as failed.
func (o *Orchestrator) Run(ctx context.Context, items []domain.CandidateItem, filter domain.StarFilter, pageBudget, workers int) []domain.WorkResult {
	workers = ClampWorkers(workers, o.opts.MaxWorkers)
	start := time.Now()

	var (
		mu      sync.Mutex
		results = make([]domain.WorkResult, 0, len(items))
	)

	// Plain group, no derived context: goroutines always return nil so one
	// item's failure never cancels the rest.
	var g errgroup.Group
	g.SetLimit(workers)

	for _, item := range items {
		g.Go(func() error {
			res := o.process(ctx, item, filter, pageBudget)

			mu.Lock()
			results = append(results, res)
			done := len(results)
			mu.Unlock()

			o.publish(res, done, len(items))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Succeeded {
			failed++
		}
	}
	o.log.Info("batch finished",
		logger.Int("submitted", len(items)),
		logger.Int("failed", failed),
		logger.Int("workers", workers),
		logger.Duration("took", time.Since(start)),
	)
	return results
}

func (o *Orchestrator) process(ctx context.Context, item domain.CandidateItem, filter domain.StarFilter, pageBudget int) (res domain.WorkResult) {
	res = domain.WorkResult{Item: item, Collection: domain.RecordCollection{FilterDimension: filter}}
	log := o.log.With(logger.String("item", item.Key()))

	defer func() {
		if r := recover(); r != nil {
			err := &domain.UnitError{Identifier: item.Key(), Err: fmt.Errorf("panic: %v", r)}
			log.Error("item panicked", logger.Error(err))
			res.Succeeded = false
			res.Error = err.Error()
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Error = (&domain.UnitError{Identifier: item.Key(), Err: err}).Error()
		return res
	}

	key := cache.CollectionKey(item.Key(), filter, pageBudget)
	cacheable := item.Identifier != "" && o.opts.Cache != nil
	if cacheable {
		if col, ok := o.opts.Cache.Get(key); ok {
			log.Info("collection cache hit", logger.Int("records", len(col.Records)))
			res.Collection, res.Succeeded, res.FromCache = col, true, true
			return res
		}
	}

	col, err := o.collect(ctx, item, filter, pageBudget)
	if err != nil {
		log.Warn("item failed", logger.Error(err))
		res.Error = err.Error()
		return res
	}

	if cacheable {
		meta := map[string]any{"record_count": len(col.Records), "source_url": col.SourceURL}
		if err := o.opts.Cache.Put(key, col, meta); err != nil {
			log.Warn("collection cache write failed", logger.Error(&domain.PersistError{Target: "collections cache", Err: err}))
		}
	}
	res.Collection, res.Succeeded = col, true
	return res
}

// collect owns one browser session for exactly one item.
func (o *Orchestrator) collect(ctx context.Context, item domain.CandidateItem, filter domain.StarFilter, pageBudget int) (domain.RecordCollection, error) {
	sess, err := o.opts.Launcher.Launch(ctx, o.opts.Browser)
	if err != nil {
		return domain.RecordCollection{}, &domain.UnitError{Identifier: item.Key(), Err: fmt.Errorf("launch: %w", err)}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			o.log.Debug("session close failed", logger.String("item", item.Key()), logger.Error(err))
		}
	}()
	return o.opts.Pipeline.Collect(ctx, sess, item, filter, pageBudget)
}

type itemDone struct {
	Identifier string `json:"identifier"`
	Rank       int    `json:"rank"`
	Succeeded  bool   `json:"succeeded"`
	FromCache  bool   `json:"from_cache"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
	Done       int    `json:"done"`
	Total      int    `json:"total"`
}

func (o *Orchestrator) publish(r domain.WorkResult, done, total int) {
	if o.opts.Events == nil {
		return
	}
	o.opts.Events.Publish(events.MakeEvent(o.runID, events.ItemDone, 1, itemDone{
		Identifier: r.Item.Key(),
		Rank:       r.Item.Rank,
		Succeeded:  r.Succeeded,
		FromCache:  r.FromCache,
		Records:    len(r.Collection.Records),
		Error:      r.Error,
		Done:       done,
		Total:      total,
	}))
}
