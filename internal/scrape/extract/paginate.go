package extract

import (
	"context"
	"strings"
	"time"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/util"
)

type nextProbe func(ctx context.Context, page browser.Page) (browser.Element, bool)

func selectorProbe(sel string) nextProbe {
	return func(ctx context.Context, page browser.Page) (browser.Element, bool) {
		els, err := page.Find(ctx, sel)
		if err != nil || len(els) == 0 {
			return nil, false
		}
		return els[0], true
	}
}

// textProbe matches the first anchor whose text contains "Next".
func textProbe(ctx context.Context, page browser.Page) (browser.Element, bool) {
	els, err := page.Find(ctx, "a")
	if err != nil {
		return nil, false
	}
	for _, el := range els {
		t, err := el.Text(ctx)
		if err == nil && strings.Contains(t, "Next") {
			return el, true
		}
	}
	return nil, false
}

var nextProbes = []nextProbe{
	selectorProbe(`a[aria-label="Next Page"]`),
	selectorProbe(`[data-hook="pagination-next-link"]`),
	selectorProbe(`.a-pagination .a-last a`),
	textProbe,
	selectorProbe(`[aria-label*="Next"]`),
}

func enabled(ctx context.Context, el browser.Element) bool {
	if ok, err := el.Visible(ctx); err != nil || !ok {
		return false
	}
	if class, _, err := el.Attr(ctx, "class"); err != nil || strings.Contains(strings.ToLower(class), "disabled") {
		return false
	}
	if v, _, err := el.Attr(ctx, "aria-disabled"); err != nil || strings.EqualFold(strings.TrimSpace(v), "true") {
		return false
	}
	return true
}

// AdvancePage clicks the first visible, enabled "next" control, waits for the
// current records to be replaced and then for record containers on the new
// page. False means there is nothing more to read: no usable control, a
// click that left the page as it was, or no records after the wait.
func (p *Pipeline) AdvancePage(ctx context.Context, page browser.Page) bool {
	var next browser.Element
	for _, probe := range nextProbes {
		el, ok := probe(ctx, page)
		if ok && enabled(ctx, el) {
			next = el
			break
		}
	}
	if next == nil {
		p.log.Debug("no enabled next control", logger.String("url", page.URL()))
		return false
	}

	els := p.recordElements(ctx, page)
	if len(els) == 0 {
		return false
	}
	old := els[0]

	if err := p.pacer.Wait(ctx, page.URL()); err != nil {
		return false
	}
	if err := next.Click(ctx); err != nil {
		p.log.Debug("next click failed", logger.Error(err))
		return false
	}

	wctx, cancel := withTimeout(ctx, p.selectorTimeout)
	defer cancel()
	if err := page.WaitReplaced(wctx, old); err != nil {
		p.log.Debug("page not replaced after next click", logger.String("url", util.Truncate(page.URL(), 120)), logger.Error(err))
		return false
	}
	if err := page.WaitVisible(wctx, recordSelectors[0]); err != nil {
		p.log.Debug("records did not reappear", logger.String("url", util.Truncate(page.URL(), 120)), logger.Error(err))
	}
	return p.HasRecordBoundary(ctx, page)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
