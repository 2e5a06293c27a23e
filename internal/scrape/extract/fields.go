package extract

import (
	"context"
	"unicode/utf8"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/scrape/util"
)

const (
	defaultAuthor    = "Anonymous"
	defaultTimestamp = "Unknown"

	minBodyLen = 10
)

var (
	authorSelectors = []string{`[data-hook="review-author"]`, `.a-profile-name`}
	dateSelectors   = []string{`[data-hook="review-date"]`, `.review-date`}
	bodySelectors   = []string{`[data-hook="review-body"] span`, `[data-hook="review-body"]`}
	expandSelectors = []string{`[data-hook="expand-review"]`}
)

// firstText returns the trimmed text of the first element matched by the
// first selector that yields non-empty text, or def.
func firstText(ctx context.Context, el browser.Element, selectors []string, def string) string {
	for _, sel := range selectors {
		if t, ok := textOf(ctx, el, sel); ok {
			return t
		}
	}
	return def
}

func textOf(ctx context.Context, el browser.Element, sel string) (string, bool) {
	found, err := el.Find(ctx, sel)
	if err != nil || len(found) == 0 {
		return "", false
	}
	t, err := found[0].Text(ctx)
	if err != nil {
		return "", false
	}
	t = util.CleanText(t)
	return t, t != ""
}

// body expands truncated text when expand is set and a visible expand
// control exists, then takes the first body candidate longer than minBodyLen.
// Pages without script must not expand: the click would navigate away from
// the listing.
func (p *Pipeline) body(ctx context.Context, el browser.Element, expand bool) string {
	if expand {
		if btn, ok := browser.FirstVisible(ctx, el, expandSelectors...); ok {
			_ = btn.Click(ctx)
		}
	}
	for _, sel := range bodySelectors {
		t, ok := textOf(ctx, el, sel)
		if ok && utf8.RuneCountInString(t) > minBodyLen {
			return t
		}
	}
	return ""
}
