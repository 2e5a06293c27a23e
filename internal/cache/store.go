package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"reviewhunt-engine/internal/fsutil"
	"reviewhunt-engine/internal/logger"
)

// Entry is one cached value with its creation time.
type Entry[T any] struct {
	Key       string         `json:"key"`
	Payload   T              `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type Stats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{Total: s.Total + o.Total, Valid: s.Valid + o.Valid, Expired: s.Expired + o.Expired}
}

// Store is a keyed TTL cache persisted as one JSON object per file. The file is
// read once at open and rewritten whole on every mutation. Validity is decided
// at read time; nothing runs in the background.
type Store[T any] struct {
	path string
	ttl  time.Duration
	now  func() time.Time
	log  logger.Logger

	mu      sync.Mutex
	entries map[string]Entry[T]
}

// Open loads path. A missing file is an empty cache; an unreadable or corrupt
// file is logged and treated as empty so a bad cache never blocks a run.
func Open[T any](path string, ttl time.Duration, now func() time.Time, log logger.Logger) *Store[T] {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store[T]{path: path, ttl: ttl, now: now, log: log, entries: map[string]Entry[T]{}}

	b, err := fsutil.ReadLocked(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		log.Warn("cache unreadable, starting empty", logger.String("path", path), logger.Error(err))
	default:
		if err := json.Unmarshal(b, &s.entries); err != nil {
			log.Warn("cache corrupt, starting empty", logger.String("path", path), logger.Error(err))
			s.entries = map[string]Entry[T]{}
		}
	}
	return s
}

func (s *Store[T]) valid(e Entry[T]) bool {
	return s.now().Sub(e.CreatedAt) < s.ttl
}

// Get returns the payload for key when present and still valid. Reading an
// expired entry removes it and rewrites storage.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if !s.valid(e) {
		delete(s.entries, key)
		if err := s.flushLocked(); err != nil {
			s.log.Warn("cache rewrite failed", logger.String("path", s.path), logger.Error(err))
		}
		s.log.Debug("cache expired", logger.String("key", key))
		return zero, false
	}
	return e.Payload, true
}

// Put stores value under key with CreatedAt = now, replacing any prior entry.
func (s *Store[T]) Put(key string, value T, meta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry[T]{Key: key, Payload: value, CreatedAt: s.now(), Metadata: meta}
	return s.flushLocked()
}

// ExpiresIn reports how long key stays valid; false when absent or expired.
func (s *Store[T]) ExpiresIn(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.valid(e) {
		return 0, false
	}
	return s.ttl - s.now().Sub(e.CreatedAt), true
}

func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.entries)}
	for _, e := range s.entries {
		if s.valid(e) {
			st.Valid++
		} else {
			st.Expired++
		}
	}
	return st
}

// EvictExpired drops every expired entry and returns how many were removed.
func (s *Store[T]) EvictExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !s.valid(e) {
			delete(s.entries, k)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.flushLocked()
}

// Clear empties the cache and deletes its file.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = map[string]Entry[T]{}
	return fsutil.Remove(s.path)
}

func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) flushLocked() error {
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := fsutil.WriteAtomic(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	return nil
}
