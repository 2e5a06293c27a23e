package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/cache"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/events"
	"reviewhunt-engine/internal/scrape/extract"
	"reviewhunt-engine/internal/scrape/orchestrator"
)

const base = "https://shop.test"

func reviewsPage(id string) string {
	return fmt.Sprintf(`<html><body>
<div data-hook="review"><i data-hook="review-star-rating" aria-label="5.0 out of 5 stars"></i>
<span data-hook="review-body">Great product %s, would buy again.</span></div>
<div data-hook="review"><i data-hook="review-star-rating" aria-label="2.0 out of 5 stars"></i></div>
</body></html>`, id)
}

func reviewsURL(id string) string { return base + "/product-reviews/" + id }

type trackingLauncher struct {
	inner browser.Launcher

	mu       sync.Mutex
	launched int
	closed   int
	cookies  [][]browser.Cookie
}

type trackedSession struct {
	browser.Session
	l *trackingLauncher
}

func (s trackedSession) Close() error {
	s.l.mu.Lock()
	s.l.closed++
	s.l.mu.Unlock()
	return s.Session.Close()
}

func (l *trackingLauncher) Launch(ctx context.Context, opts browser.Options) (browser.Session, error) {
	s, err := l.inner.Launch(ctx, opts)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.launched++
	l.cookies = append(l.cookies, opts.Cookies)
	l.mu.Unlock()
	return trackedSession{Session: s, l: l}, nil
}

func (l *trackingLauncher) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launched, l.closed
}

type fixture struct {
	fetcher  *browser.MemoryFetcher
	launcher *trackingLauncher
	cache    *cache.Store[domain.RecordCollection]
	orch     *orchestrator.Orchestrator
}

func newFixture(t *testing.T, f browser.Fetcher, now func() time.Time) fixture {
	t.Helper()
	l := &trackingLauncher{inner: &browser.StaticLauncher{Fetcher: f}}
	c := cache.Open[domain.RecordCollection](filepath.Join(t.TempDir(), cache.CollectionsFile), 24*time.Hour, now, nil)
	o := orchestrator.New(orchestrator.Options{
		Launcher: l,
		Pipeline: extract.New(extract.Options{BaseURL: base}),
		Cache:    c,
	})
	mf, _ := f.(*browser.MemoryFetcher)
	return fixture{fetcher: mf, launcher: l, cache: c, orch: o}
}

func items(ids ...string) []domain.CandidateItem {
	out := make([]domain.CandidateItem, len(ids))
	for i, id := range ids {
		out[i] = domain.CandidateItem{Rank: i + 1, Identifier: id, URL: base + "/dp/" + id}
	}
	return out
}

func byID(rs []domain.WorkResult) map[string]domain.WorkResult {
	m := make(map[string]domain.WorkResult, len(rs))
	for _, r := range rs {
		m[r.Item.Key()] = r
	}
	return m
}

func TestRunFaultIsolation(t *testing.T) {
	f := &browser.MemoryFetcher{
		Pages: map[string]string{
			reviewsURL("A1"): reviewsPage("A1"),
			reviewsURL("C3"): reviewsPage("C3"),
			reviewsURL("D4"): reviewsPage("D4"),
		},
		Errors: map[string]error{reviewsURL("B2"): errors.New("http 503")},
	}
	fx := newFixture(t, f, nil)

	results := fx.orch.Run(context.Background(), items("A1", "B2", "C3", "D4"), domain.NoFilter, 1, 3)
	require.Len(t, results, 4)

	m := byID(results)
	for _, id := range []string{"A1", "C3", "D4"} {
		assert.True(t, m[id].Succeeded, id)
		assert.Len(t, m[id].Collection.Records, 2, id)
	}
	assert.False(t, m["B2"].Succeeded)
	assert.Contains(t, m["B2"].Error, "B2")
	assert.Contains(t, m["B2"].Error, "http 503")

	launched, closed := fx.launcher.counts()
	assert.Equal(t, 4, launched)
	assert.Equal(t, 4, closed, "every session torn down")

	assert.Equal(t, 3, fx.cache.Stats().Total, "only successes are cached")
}

func TestRunCachedItemNeedsNoNavigation(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := &browser.MemoryFetcher{}
	fx := newFixture(t, f, clock)

	cached := domain.RecordCollection{
		SourceURL:       reviewsURL("X1") + "?filterByStar=five_star",
		FilterDimension: 5,
		Records:         []domain.Record{{Author: "Ana", Score: 5, Timestamp: "Unknown", Body: "Lovely warm light."}},
	}
	require.NoError(t, fx.cache.Put(cache.CollectionKey("X1", 5, 2), cached, nil))
	now = now.Add(10 * time.Minute)

	results := fx.orch.Run(context.Background(), items("X1"), 5, 2, 2)
	require.Len(t, results, 1)
	assert.True(t, results[0].Succeeded)
	assert.True(t, results[0].FromCache)
	assert.Equal(t, cached, results[0].Collection)

	assert.Equal(t, 0, f.Total(), "no navigation")
	launched, _ := fx.launcher.counts()
	assert.Equal(t, 0, launched, "no session launched")
}

type panicFetcher struct {
	browser.MemoryFetcher
	panicOn string
}

func (p *panicFetcher) Fetch(ctx context.Context, url string, c []browser.Cookie) (browser.Response, error) {
	if url == p.panicOn {
		panic("selector engine exploded")
	}
	return p.MemoryFetcher.Fetch(ctx, url, c)
}

func TestRunRecoversFromPanics(t *testing.T) {
	f := &panicFetcher{
		MemoryFetcher: browser.MemoryFetcher{Pages: map[string]string{reviewsURL("OK"): reviewsPage("OK")}},
		panicOn:       reviewsURL("BAD"),
	}
	fx := newFixture(t, f, nil)

	results := fx.orch.Run(context.Background(), items("OK", "BAD"), domain.NoFilter, 1, 2)
	require.Len(t, results, 2)
	m := byID(results)
	assert.True(t, m["OK"].Succeeded)
	assert.False(t, m["BAD"].Succeeded)
	assert.Contains(t, m["BAD"].Error, "panic")

	launched, closed := fx.launcher.counts()
	assert.Equal(t, launched, closed)
}

func TestRunCancelledReportsEveryItem(t *testing.T) {
	fx := newFixture(t, &browser.MemoryFetcher{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := fx.orch.Run(ctx, items("A1", "B2", "C3"), domain.NoFilter, 1, 2)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.Succeeded)
		assert.Contains(t, r.Error, context.Canceled.Error())
	}
}

type slowFetcher struct {
	inflight, peak atomic.Int32
}

func (s *slowFetcher) Fetch(ctx context.Context, url string, _ []browser.Cookie) (browser.Response, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return browser.Response{URL: url, Body: []byte(reviewsPage("x"))}, nil
}

func TestRunBoundsConcurrency(t *testing.T) {
	sf := &slowFetcher{}
	fx := newFixture(t, sf, nil)

	results := fx.orch.Run(context.Background(), items("A1", "B2", "C3", "D4", "E5", "F6"), domain.NoFilter, 1, 2)
	require.Len(t, results, 6)
	assert.LessOrEqual(t, sf.peak.Load(), int32(2))

	assert.Equal(t, 1, orchestrator.ClampWorkers(0, 10))
	assert.Equal(t, 10, orchestrator.ClampWorkers(50, 10))
	assert.Equal(t, 4, orchestrator.ClampWorkers(4, 10))
}

func TestRunPublishesEventsAndPassesCookies(t *testing.T) {
	f := &browser.MemoryFetcher{Pages: map[string]string{reviewsURL("A1"): reviewsPage("A1")}}
	l := &trackingLauncher{inner: &browser.StaticLauncher{Fetcher: f}}
	hub := events.NewHub(10)
	sub := hub.Subscribe()

	o := orchestrator.New(orchestrator.Options{
		Launcher: l,
		Pipeline: extract.New(extract.Options{BaseURL: base}),
		Events:   hub,
	})
	jar := []browser.Cookie{{Name: "session-id", Value: "abc"}}
	results := o.WithSession(jar, "run-42").Run(context.Background(), items("A1", ""), domain.NoFilter, 1, 1)
	require.Len(t, results, 2)

	for i := 0; i < 2; i++ {
		e, err := events.Parse(<-sub)
		require.NoError(t, err)
		assert.Equal(t, events.ItemDone, e.Type)
		assert.Equal(t, "run-42", e.RequestID)
	}
	assert.Equal(t, [][]browser.Cookie{jar, jar}, l.cookies)

	m := byID(results)
	assert.True(t, m["A1"].Succeeded)
	assert.False(t, m["unknown-2"].Succeeded, "no identifier and no product link to rewrite")
}
