// Package browser abstracts the page automation the scraper needs so the
// extraction code runs unchanged over a real Chromium (rod) or over fetched
// HTML (static).
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a waited-for selector never became visible.
	ErrNotFound = errors.New("browser: selector not matched")
	// ErrNotClickable is returned by drivers that cannot act on an element.
	ErrNotClickable = errors.New("browser: element not clickable")
)

// Element is a node inside a loaded page.
type Element interface {
	Find(ctx context.Context, selector string) ([]Element, error)
	Text(ctx context.Context) (string, error)
	// Attr returns the attribute value and whether it was present.
	Attr(ctx context.Context, name string) (string, bool, error)
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
}

// Page is one navigable browsing context.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	HTML(ctx context.Context) (string, error)
	Find(ctx context.Context, selector string) ([]Element, error)
	// WaitVisible blocks until selector matches a visible element or ctx ends.
	WaitVisible(ctx context.Context, selector string) error
	// WaitReplaced blocks until old, an element found before a click, has
	// left the document and the replacement document has loaded.
	WaitReplaced(ctx context.Context, old Element) error
	// Scripted reports whether the page runs script. Without script, clicks
	// on in-page controls turn into navigations.
	Scripted() bool
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
}

// Session is a page that owns its browser and must be closed.
type Session interface {
	Page
	Close() error
}

type Options struct {
	Headless    bool
	UserAgent   string
	PageTimeout time.Duration
	Cookies     []Cookie
}

type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// FirstVisible returns the first visible element matching any of selectors,
// tried in order.
func FirstVisible(ctx context.Context, root interface {
	Find(context.Context, string) ([]Element, error)
}, selectors ...string) (Element, bool) {
	for _, sel := range selectors {
		els, err := root.Find(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if ok, err := el.Visible(ctx); err == nil && ok {
				return el, true
			}
		}
	}
	return nil, false
}
