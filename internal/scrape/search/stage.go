// Package search resolves a free-text query to a ranked list of organic
// candidates.
package search

import (
	"context"
	"fmt"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/cache"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/extract"
)

type Stage struct {
	pipeline *extract.Pipeline
	cache    *cache.Store[[]domain.CandidateItem]
	log      logger.Logger
}

func New(p *extract.Pipeline, c *cache.Store[[]domain.CandidateItem], log logger.Logger) *Stage {
	if log == nil {
		log = logger.NewNop()
	}
	return &Stage{pipeline: p, cache: c, log: log.With(logger.String("component", "search"))}
}

// Resolve returns at most limit organic candidates for query, ranked 1..k in
// page order. Sponsored entries are skipped and do not consume a rank. A
// non-positive limit asks for nothing and loads nothing. A
// page without results is an empty slice, not an error; a failed navigation
// is an error. Non-empty results are cached under SearchKey(query, filter).
func (s *Stage) Resolve(ctx context.Context, page browser.Page, query string, filter domain.StarFilter, limit int) ([]domain.CandidateItem, error) {
	if limit <= 0 {
		return []domain.CandidateItem{}, nil
	}
	key := cache.SearchKey(query, filter)
	if s.cache != nil {
		if items, ok := s.cache.Get(key); ok {
			s.log.Info("search cache hit", logger.String("query", query), logger.Int("items", len(items)))
			return truncate(items, limit), nil
		}
	}

	target := s.pipeline.SearchURL(query)
	s.log.Info("searching", logger.String("query", query), logger.String("url", target))
	if err := s.pipeline.Navigate(ctx, page, target); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if !s.pipeline.WaitResults(ctx, page) {
		s.log.Warn("no result containers", logger.String("query", query))
		return []domain.CandidateItem{}, nil
	}

	items := make([]domain.CandidateItem, 0, limit)
	skipped := 0
	for _, el := range s.pipeline.ResultContainers(ctx, page) {
		if len(items) >= limit {
			break
		}
		if s.pipeline.IsSponsored(ctx, el) {
			skipped++
			continue
		}
		item, ok := s.pipeline.Candidate(ctx, el, len(items)+1)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	s.log.Info("search resolved",
		logger.String("query", query),
		logger.Int("items", len(items)),
		logger.Int("sponsored_skipped", skipped),
	)

	if len(items) > 0 && s.cache != nil {
		meta := map[string]any{"query": query, "filter": filter.String(), "limit": limit}
		if err := s.cache.Put(key, items, meta); err != nil {
			s.log.Warn("search cache write failed", logger.Error(&domain.PersistError{Target: "search cache", Err: err}))
		}
	}
	return items, nil
}

func truncate(items []domain.CandidateItem, limit int) []domain.CandidateItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
