// Package cache memoizes search results and per-item record collections on
// disk with a fixed time to live.
package cache

import (
	"errors"
	"path/filepath"
	"time"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/logger"
)

const (
	SearchFile      = "search_cache.json"
	CollectionsFile = "collections_cache.json"
)

// Cache bundles the two namespaces used by a run.
type Cache struct {
	Search      *Store[[]domain.CandidateItem]
	Collections *Store[domain.RecordCollection]
}

type Options struct {
	Dir string
	TTL time.Duration
	Now func() time.Time
	Log logger.Logger
}

func New(opts Options) *Cache {
	return &Cache{
		Search:      Open[[]domain.CandidateItem](filepath.Join(opts.Dir, SearchFile), opts.TTL, opts.Now, opts.Log),
		Collections: Open[domain.RecordCollection](filepath.Join(opts.Dir, CollectionsFile), opts.TTL, opts.Now, opts.Log),
	}
}

type Summary struct {
	Search      Stats `json:"search"`
	Collections Stats `json:"collections"`
	Combined    Stats `json:"combined"`
}

func (c *Cache) Stats() Summary {
	s, r := c.Search.Stats(), c.Collections.Stats()
	return Summary{Search: s, Collections: r, Combined: s.Add(r)}
}

func (c *Cache) EvictExpired() (int, error) {
	a, errA := c.Search.EvictExpired()
	b, errB := c.Collections.EvictExpired()
	return a + b, errors.Join(errA, errB)
}

func (c *Cache) Clear() error {
	return errors.Join(c.Search.Clear(), c.Collections.Clear())
}
