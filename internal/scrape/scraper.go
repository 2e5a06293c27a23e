// Package scrape runs one end-to-end scrape: authenticate, discover
// candidates, collect their records in parallel and persist the artifacts.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/events"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/output"
	"reviewhunt-engine/internal/scrape/orchestrator"
	"reviewhunt-engine/internal/scrape/search"
	"reviewhunt-engine/internal/session"
)

// Sessions hands out the run's authenticated session.
type Sessions interface {
	Acquire(ctx context.Context) (*session.Session, error)
	Close() error
}

type Request struct {
	Query    string
	Filter   domain.StarFilter
	Pages    int
	Limit    int
	Workers  int
	Parallel bool
}

type Summary struct {
	RunID           string                 `json:"run_id"`
	Query           string                 `json:"query"`
	Submitted       int                    `json:"submitted"`
	Processed       int                    `json:"processed"`
	Failed          int                    `json:"failed"`
	CacheHits       int                    `json:"cache_hits"`
	Records         int                    `json:"records"`
	Failures        []domain.WorkResult    `json:"failures,omitempty"`
	PersistFailures int                    `json:"persist_failures"`
	Duration        time.Duration          `json:"duration"`
	Results         []domain.WorkResult    `json:"-"`
	Candidates      []domain.CandidateItem `json:"-"`
}

type Options struct {
	Sessions     Sessions
	Search       *search.Stage
	Orchestrator *orchestrator.Orchestrator
	Output       output.Persister
	Events       orchestrator.Publisher
	Log          logger.Logger
}

type Scraper struct {
	opts Options
	log  logger.Logger
}

func New(opts Options) *Scraper {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.Output == nil {
		opts.Output = output.Discard{}
	}
	return &Scraper{opts: opts, log: opts.Log.With(logger.String("component", "scraper"))}
}

// Run executes req. Only an authentication failure or an empty discovery
// returns an error; per-item and persistence failures land in the Summary.
func (s *Scraper) Run(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.log.With(logger.String("run_id", runID), logger.String("query", req.Query))
	s.publish(runID, events.RunStarted, req)

	sess, err := s.opts.Sessions.Acquire(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrAuth) {
			err = fmt.Errorf("%w: %w", domain.ErrAuth, err)
		}
		log.Error("no session", logger.Error(err))
		return Summary{}, err
	}
	log.Info("session ready",
		logger.String("origin", sess.Origin.String()),
		logger.Bool("validated", sess.Validated))

	items, err := s.opts.Search.Resolve(ctx, sess.Page, req.Query, req.Filter, req.Limit)
	cookies := sess.Cookies
	if cerr := s.opts.Sessions.Close(); cerr != nil {
		log.Debug("login session close failed", logger.Error(cerr))
	}
	if err != nil {
		log.Warn("search failed", logger.Error(err))
		return Summary{}, fmt.Errorf("%w: %w", domain.ErrDiscoveryEmpty, err)
	}
	s.publish(runID, events.SearchDone, map[string]int{"candidates": len(items)})
	if len(items) == 0 {
		log.Warn("no candidates")
		return Summary{}, domain.ErrDiscoveryEmpty
	}

	// Artifacts are written even after ctx ends so a cancelled run keeps
	// what it already collected.
	octx := context.WithoutCancel(ctx)

	sum := Summary{RunID: runID, Query: req.Query, Submitted: len(items), Candidates: items}
	if err := s.opts.Output.SaveCandidates(octx, runID, req.Query, items); err != nil {
		sum.PersistFailures++
		log.Warn("candidate list not saved", logger.Error(&domain.PersistError{Target: "candidates", Err: err}))
	}

	workers := req.Workers
	if !req.Parallel {
		workers = 1
	}
	results := s.opts.Orchestrator.WithSession(cookies, runID).Run(ctx, items, req.Filter, req.Pages, workers)
	sum.Results = results

	for _, r := range results {
		if !r.Succeeded {
			sum.Failed++
			sum.Failures = append(sum.Failures, r)
			continue
		}
		sum.Processed++
		sum.Records += len(r.Collection.Records)
		if r.FromCache {
			sum.CacheHits++
		}
		if err := s.opts.Output.SaveCollection(octx, runID, r.Item.Key(), r.Collection); err != nil {
			sum.PersistFailures++
			log.Warn("collection not saved", logger.Error(&domain.PersistError{Target: r.Item.Key(), Err: err}))
		}
	}

	sum.Duration = time.Since(start)
	s.publish(runID, events.RunFinished, sum)
	log.Info("run finished",
		logger.Int("processed", sum.Processed),
		logger.Int("submitted", sum.Submitted),
		logger.Int("failed", sum.Failed),
		logger.Int("cache_hits", sum.CacheHits),
		logger.Int("records", sum.Records),
		logger.Duration("took", sum.Duration),
	)
	return sum, nil
}

func (s *Scraper) publish(runID, typ string, data any) {
	if s.opts.Events == nil {
		return
	}
	s.opts.Events.Publish(events.MakeEvent(runID, typ, 1, data))
}
