// Package session obtains an authenticated browser session, reusing persisted
// cookies when they still work and falling back to a manual login otherwise.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/logger"
)

type Origin int

const (
	OriginStored Origin = iota
	OriginInteractive
)

func (o Origin) String() string {
	if o == OriginInteractive {
		return "interactive"
	}
	return "stored"
}

// Session is the authenticated state handed to the rest of a run. Validated
// is true only when a live probe confirmed it; interactive sessions are
// trusted without one.
type Session struct {
	Cookies   []browser.Cookie
	Page      browser.Session
	Origin    Origin
	Validated bool
}

type Options struct {
	Probe       ProbeConfig
	EntryURL    string
	UserAgent   string
	Headless    bool
	PageTimeout time.Duration
}

type Store struct {
	backend  Backend
	launcher browser.Launcher
	signal   Signal
	opts     Options
	log      logger.Logger

	mu   sync.Mutex
	live *Session
}

func NewStore(backend Backend, launcher browser.Launcher, signal Signal, opts Options, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		backend:  backend,
		launcher: launcher,
		signal:   signal,
		opts:     opts,
		log:      log.With(logger.String("component", "session")),
	}
}

// Acquire returns the run's authenticated session, establishing it on the
// first call. Later calls return the same session until Close.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live != nil {
		return s.live, nil
	}

	if sess, ok := s.tryStored(ctx); ok {
		s.live = sess
		s.persist(ctx, sess)
		return sess, nil
	}

	sess, err := s.interactive(ctx)
	if err != nil {
		return nil, err
	}
	s.live = sess
	s.persist(ctx, sess)
	return sess, nil
}

func (s *Store) load() []browser.Cookie {
	cookies, err := s.backend.Load()
	if err != nil {
		s.log.Warn("stored session unreadable, ignoring",
			logger.String("backend", s.backend.String()), logger.Error(err))
		return nil
	}
	return cookies
}

func (s *Store) tryStored(ctx context.Context) (*Session, bool) {
	cookies := s.load()
	if len(cookies) == 0 {
		s.log.Info("no stored session")
		return nil, false
	}

	page, err := s.launcher.Launch(ctx, browser.Options{
		Headless:    s.opts.Headless,
		UserAgent:   s.opts.UserAgent,
		PageTimeout: s.opts.PageTimeout,
		Cookies:     cookies,
	})
	if err != nil {
		s.log.Warn("probe session launch failed", logger.Error(err))
		return nil, false
	}

	if !Probe(ctx, page, s.opts.Probe, s.log) {
		s.log.Info("stored session is no longer valid")
		_ = page.Close()
		return nil, false
	}

	s.log.Info("stored session valid", logger.Int("cookies", len(cookies)))
	return &Session{Cookies: cookies, Page: page, Origin: OriginStored, Validated: true}, true
}

func (s *Store) interactive(ctx context.Context) (*Session, error) {
	if s.signal == nil || !s.signal.Interactive() {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, domain.ErrNotInteractive)
	}

	page, err := s.launcher.Launch(ctx, browser.Options{
		Headless:    false,
		UserAgent:   s.opts.UserAgent,
		PageTimeout: s.opts.PageTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: launch login browser: %w", domain.ErrAuth, err)
	}

	if err := page.Navigate(ctx, s.opts.EntryURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: open entry page: %w", domain.ErrAuth, err)
	}

	s.log.Info("waiting for manual login", logger.String("url", s.opts.EntryURL))
	if err := s.signal.Wait(ctx); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: login wait: %w", domain.ErrAuth, err)
	}

	cookies, err := page.Cookies(ctx)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: capture cookies: %w", domain.ErrAuth, err)
	}
	s.log.Info("manual login captured", logger.Int("cookies", len(cookies)))
	return &Session{Cookies: cookies, Page: page, Origin: OriginInteractive}, nil
}

// persist refreshes the jar from the live page and saves it. Failures are
// logged; the session is still usable.
func (s *Store) persist(ctx context.Context, sess *Session) {
	if sess.Page != nil {
		if fresh, err := sess.Page.Cookies(ctx); err == nil && len(fresh) > 0 {
			sess.Cookies = fresh
		}
	}
	if err := s.backend.Save(sess.Cookies); err != nil {
		pe := &domain.PersistError{Target: s.backend.String(), Err: err}
		s.log.Warn("session save failed", logger.Error(pe))
	}
}

// Check probes the stored session without falling back to a manual login.
func (s *Store) Check(ctx context.Context) (bool, error) {
	cookies := s.load()
	if len(cookies) == 0 {
		return false, nil
	}
	page, err := s.launcher.Launch(ctx, browser.Options{
		Headless:    true,
		UserAgent:   s.opts.UserAgent,
		PageTimeout: s.opts.PageTimeout,
		Cookies:     cookies,
	})
	if err != nil {
		return false, fmt.Errorf("launch probe: %w", err)
	}
	defer func() { _ = page.Close() }()
	return Probe(ctx, page, s.opts.Probe, s.log), nil
}

// Reset forgets the persisted session.
func (s *Store) Reset() error {
	return s.backend.Delete()
}

// Close tears down the live page. Cookies already handed out stay usable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live == nil || s.live.Page == nil {
		s.live = nil
		return nil
	}
	err := s.live.Page.Close()
	s.live = nil
	return err
}
