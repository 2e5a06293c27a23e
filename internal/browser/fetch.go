package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"reviewhunt-engine/internal/scrape/util"
)

// Response is one fetched document. URL is the final URL after redirects.
type Response struct {
	URL     string
	Body    []byte
	Cookies []Cookie
}

type Fetcher interface {
	Fetch(ctx context.Context, url string, cookies []Cookie) (Response, error)
}

// CollyFetcher fetches with a fresh colly collector per request so concurrent
// sessions never share a cookie jar.
type CollyFetcher struct {
	UserAgent string
	Timeout   time.Duration
}

const maxRedirects = 10

func (f *CollyFetcher) Fetch(ctx context.Context, raw string, cookies []Cookie) (Response, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	}
	if f.UserAgent != "" {
		opts = append(opts, colly.UserAgent(f.UserAgent))
	}
	c := colly.NewCollector(opts...)
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	final := raw
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		final = req.URL.String()
		return nil
	})

	if len(cookies) > 0 {
		if err := c.SetCookies(raw, toHTTP(cookies)); err != nil {
			return Response{}, fmt.Errorf("set cookies: %w", err)
		}
	}

	var (
		res  Response
		ferr error
	)
	c.OnResponse(func(r *colly.Response) {
		res.Body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			ferr = fmt.Errorf("fetch %s: status %d: %w", raw, r.StatusCode, err)
			return
		}
		ferr = fmt.Errorf("fetch %s: %w", raw, err)
	})

	if err := c.Visit(raw); err != nil && ferr == nil {
		ferr = fmt.Errorf("fetch %s: %w", raw, err)
	}
	if ferr != nil {
		if ctx.Err() != nil && !errors.Is(ferr, ctx.Err()) {
			ferr = fmt.Errorf("%w: %w", ctx.Err(), ferr)
		}
		return Response{}, ferr
	}

	res.URL = final
	res.Cookies = fromHTTP(c.Cookies(final), util.Host(final))
	return res, nil
}

// MemoryFetcher serves canned pages by URL and counts requests.
type MemoryFetcher struct {
	Pages     map[string]string
	Redirects map[string]string
	Errors    map[string]error
	SetCookie map[string][]Cookie

	mu    sync.Mutex
	calls map[string]int
	total int
}

func (m *MemoryFetcher) Fetch(ctx context.Context, raw string, cookies []Cookie) (Response, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[raw]++
	m.total++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if err, ok := m.Errors[raw]; ok {
		return Response{}, err
	}
	final := raw
	for i := 0; i < maxRedirects; i++ {
		to, ok := m.Redirects[final]
		if !ok {
			break
		}
		final = to
	}
	body, ok := m.Pages[final]
	if !ok {
		return Response{}, fmt.Errorf("fetch %s: status 404", final)
	}
	return Response{URL: final, Body: []byte(body), Cookies: m.SetCookie[final]}, nil
}

// Calls returns how many times url was fetched.
func (m *MemoryFetcher) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// Total returns the number of fetches across all URLs.
func (m *MemoryFetcher) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}
