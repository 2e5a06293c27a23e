package extract

import (
	"context"
	"net/url"
	"strings"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/util"
)

// ReviewsURL builds the record listing for item: by identifier when known,
// otherwise by rewriting the product URL.
func (p *Pipeline) ReviewsURL(item domain.CandidateItem, filter domain.StarFilter) string {
	id := item.Identifier
	if id == "" {
		id = util.ExtractIdentifier(item.URL)
	}
	if id != "" {
		return util.ReviewsURL(p.base, id, filter)
	}

	raw := strings.Replace(item.URL, "/dp/", "/product-reviews/", 1)
	v := filter.QueryValue()
	if v == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("filterByStar", v)
	u.RawQuery = q.Encode()
	return u.String()
}

// Collect reads up to pageBudget pages of records for item on page. A failed
// first load is an error; anything after that ends traversal with what was
// gathered so far.
func (p *Pipeline) Collect(ctx context.Context, page browser.Page, item domain.CandidateItem, filter domain.StarFilter, pageBudget int) (domain.RecordCollection, error) {
	target := p.ReviewsURL(item, filter)
	col := domain.RecordCollection{SourceURL: target, FilterDimension: filter}
	log := p.log.With(logger.String("item", item.Key()))

	if err := p.Navigate(ctx, page, target); err != nil {
		return col, &domain.UnitError{Identifier: item.Key(), Err: err}
	}

	if p.DeclaresEmpty(ctx, page) && !p.HasRecordBoundary(ctx, page) {
		log.Info("item declares no records")
		return col, nil
	}

	wctx, wcancel := withTimeout(ctx, p.selectorTimeout)
	if err := page.WaitVisible(wctx, recordSelectors[0]); err != nil {
		log.Debug("record boundary not visible, extracting anyway", logger.Error(err))
	}
	wcancel()

	if pageBudget < 1 {
		pageBudget = 1
	}
	for n := 1; n <= pageBudget; n++ {
		recs := p.ListRecords(ctx, page)
		if len(recs) == 0 {
			log.Debug("page has no records", logger.Int("page", n))
			break
		}
		col.Records = append(col.Records, recs...)
		log.Debug("page collected", logger.Int("page", n), logger.Int("records", len(recs)))

		if n == pageBudget || ctx.Err() != nil || !p.AdvancePage(ctx, page) {
			break
		}
	}

	log.Info("item collected", logger.Int("records", len(col.Records)), logger.String("filter", filter.String()))
	return col, nil
}
