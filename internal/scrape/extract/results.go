package extract

import (
	"context"
	"fmt"
	"strings"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/scrape/util"
)

var resultSelectors = []string{
	`[data-component-type="s-search-result"]`,
	`[data-index]`,
	`.s-result-item`,
}

// ResultContainers returns the search result nodes in document order using
// the first selector that matches anything.
func (p *Pipeline) ResultContainers(ctx context.Context, page browser.Page) []browser.Element {
	for _, sel := range resultSelectors {
		els, err := page.Find(ctx, sel)
		if err == nil && len(els) > 0 {
			return els
		}
	}
	return nil
}

// WaitResults waits up to the selector timeout for any result container.
func (p *Pipeline) WaitResults(ctx context.Context, page browser.Page) bool {
	wctx, cancel := withTimeout(ctx, p.selectorTimeout)
	defer cancel()
	for _, sel := range resultSelectors {
		if page.WaitVisible(wctx, sel) == nil {
			return true
		}
		if wctx.Err() != nil {
			break
		}
	}
	return len(p.ResultContainers(ctx, page)) > 0
}

type linkProbe func(ctx context.Context, el browser.Element) (string, bool)

func hrefOf(sel string, needle string) linkProbe {
	return func(ctx context.Context, el browser.Element) (string, bool) {
		found, err := el.Find(ctx, sel)
		if err != nil {
			return "", false
		}
		for _, a := range found {
			h, ok, err := a.Attr(ctx, "href")
			if err != nil || !ok || strings.TrimSpace(h) == "" {
				continue
			}
			if needle == "" || strings.Contains(h, needle) {
				return h, true
			}
		}
		return "", false
	}
}

var linkProbes = []linkProbe{
	hrefOf(`h2 a`, ""),
	hrefOf(`a[href*="/dp/"], a[href*="/gp/product/"]`, ""),
	hrefOf(`a`, "/dp/"),
}

var titleSelectors = []string{`h2`, `h2 span`, `.a-text-normal`, `[data-cy="title-recipe"]`}

// Candidate reads link, title and identifier from one result container. ok is
// false when no product link is present. rank is only used for the title
// fallback "Product <rank>".
func (p *Pipeline) Candidate(ctx context.Context, el browser.Element, rank int) (domain.CandidateItem, bool) {
	var href string
	for _, probe := range linkProbes {
		if h, ok := probe(ctx, el); ok {
			href = h
			break
		}
	}
	if href == "" {
		return domain.CandidateItem{}, false
	}

	abs := util.AbsoluteURL(p.base, href)
	return domain.CandidateItem{
		Rank:       rank,
		Title:      firstText(ctx, el, titleSelectors, fmt.Sprintf("Product %d", rank)),
		URL:        abs,
		Identifier: util.ExtractIdentifier(abs),
	}, true
}

// SearchURL is the listing URL for query.
func (p *Pipeline) SearchURL(query string) string {
	return util.SearchURL(p.base, query)
}
