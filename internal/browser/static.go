package browser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"reviewhunt-engine/internal/scrape/util"
)

// StaticLauncher builds sessions that fetch HTML through a Fetcher and query
// it with goquery. No script runs, so clicks only follow links.
type StaticLauncher struct {
	Fetcher Fetcher
}

func (l *StaticLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if l.Fetcher == nil {
		return nil, fmt.Errorf("static launcher: no fetcher")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticPage{
		fetcher: l.Fetcher,
		cookies: append([]Cookie(nil), opts.Cookies...),
	}, nil
}

type staticPage struct {
	fetcher Fetcher

	mu      sync.Mutex
	url     string
	doc     *goquery.Document
	cookies []Cookie
}

func (p *staticPage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	jar := append([]Cookie(nil), p.cookies...)
	p.mu.Unlock()

	res, err := p.fetcher.Fetch(ctx, url, jar)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}

	final := res.URL
	if final == "" {
		final = url
	}

	p.mu.Lock()
	p.url = final
	p.doc = doc
	p.cookies = mergeCookies(p.cookies, res.Cookies)
	p.mu.Unlock()
	return nil
}

func (p *staticPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *staticPage) document() *goquery.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

func (p *staticPage) HTML(ctx context.Context) (string, error) {
	doc := p.document()
	if doc == nil {
		return "", nil
	}
	return goquery.OuterHtml(doc.Selection)
}

func (p *staticPage) Find(ctx context.Context, selector string) ([]Element, error) {
	doc := p.document()
	if doc == nil {
		return nil, nil
	}
	return p.wrap(doc, doc.Find(selector)), nil
}

func (p *staticPage) WaitVisible(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("wait %q: %w: %w", selector, ErrNotFound, err)
	}
	els, _ := p.Find(ctx, selector)
	for _, el := range els {
		if ok, _ := el.Visible(ctx); ok {
			return nil
		}
	}
	return fmt.Errorf("wait %q: %w", selector, ErrNotFound)
}

// WaitReplaced succeeds once a navigation has swapped the document old was
// found in. Nothing changes a static document behind the caller's back, so it
// does not poll.
func (p *staticPage) WaitReplaced(ctx context.Context, old Element) error {
	el, ok := old.(staticElement)
	if !ok {
		return fmt.Errorf("wait replaced: %T: %w", old, ErrNotClickable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("wait replaced: %w: %w", ErrNotFound, err)
	}
	if el.doc == p.document() {
		return fmt.Errorf("wait replaced: document unchanged: %w", ErrNotFound)
	}
	return nil
}

func (p *staticPage) Scripted() bool { return false }

func (p *staticPage) Cookies(ctx context.Context) ([]Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Cookie(nil), p.cookies...), nil
}

func (p *staticPage) SetCookies(ctx context.Context, cookies []Cookie) error {
	p.mu.Lock()
	p.cookies = mergeCookies(p.cookies, cookies)
	p.mu.Unlock()
	return nil
}

func (p *staticPage) Close() error { return nil }

func (p *staticPage) wrap(doc *goquery.Document, sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, staticElement{page: p, doc: doc, sel: s})
	})
	return out
}

type staticElement struct {
	page *staticPage
	doc  *goquery.Document
	sel  *goquery.Selection
}

func (e staticElement) Find(ctx context.Context, selector string) ([]Element, error) {
	return e.page.wrap(e.doc, e.sel.Find(selector)), nil
}

func (e staticElement) Text(ctx context.Context) (string, error) {
	return util.CleanText(e.sel.Text()), nil
}

func (e staticElement) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// Visible treats the hidden attribute and inline display/visibility styles on
// the node or any ancestor as hidden.
func (e staticElement) Visible(ctx context.Context) (bool, error) {
	for s := e.sel; s.Length() > 0; s = s.Parent() {
		if _, ok := s.Attr("hidden"); ok {
			return false, nil
		}
		style, _ := s.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false, nil
		}
	}
	return true, nil
}

// Click follows the element's link: its own href, the closest enclosing
// anchor, or the first anchor inside it.
func (e staticElement) Click(ctx context.Context) error {
	href, ok := e.sel.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		href, ok = e.sel.Closest("a[href]").Attr("href")
	}
	if !ok || strings.TrimSpace(href) == "" {
		href, ok = e.sel.Find("a[href]").First().Attr("href")
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
		return ErrNotClickable
	}
	return e.page.Navigate(ctx, util.AbsoluteURL(e.page.URL(), href))
}
