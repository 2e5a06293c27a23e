// Package extract turns rendered review and search pages into records using
// ordered selector fallbacks, and walks review pagination.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/util"
)

type Options struct {
	BaseURL         string
	PageTimeout     time.Duration
	SelectorTimeout time.Duration
	Pacer           *util.Pacer
	Log             logger.Logger
}

type Pipeline struct {
	base            string
	pageTimeout     time.Duration
	selectorTimeout time.Duration
	pacer           *util.Pacer
	log             logger.Logger
}

func New(opts Options) *Pipeline {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.Pacer == nil {
		opts.Pacer = util.NoPacing()
	}
	return &Pipeline{
		base:            opts.BaseURL,
		pageTimeout:     opts.PageTimeout,
		selectorTimeout: opts.SelectorTimeout,
		pacer:           opts.Pacer,
		log:             opts.Log,
	}
}

// Record containers, most reliable first.
var recordSelectors = []string{
	`[data-hook="review"]`,
	`[id*="customer_review"]`,
}

var emptyIndicators = []string{
	"no customer reviews",
	"be the first to review",
	"no reviews yet",
	"this item has no reviews",
}

func (p *Pipeline) recordElements(ctx context.Context, page browser.Page) []browser.Element {
	for _, sel := range recordSelectors {
		els, err := page.Find(ctx, sel)
		if err == nil && len(els) > 0 {
			return els
		}
	}
	return nil
}

// HasRecordBoundary reports whether any record container is on the page.
func (p *Pipeline) HasRecordBoundary(ctx context.Context, page browser.Page) bool {
	return len(p.recordElements(ctx, page)) > 0
}

// DeclaresEmpty reports whether the page states it has no records at all.
func (p *Pipeline) DeclaresEmpty(ctx context.Context, page browser.Page) bool {
	html, err := page.HTML(ctx)
	if err != nil {
		return false
	}
	return util.ContainsAny(html, emptyIndicators...)
}

// ListRecords extracts every meaningful record on the current page. It never
// fails: unreadable records are skipped and an empty page yields nil.
func (p *Pipeline) ListRecords(ctx context.Context, page browser.Page) []domain.Record {
	els := p.recordElements(ctx, page)
	if len(els) == 0 {
		p.log.Debug("no record containers", logger.String("url", page.URL()))
		return nil
	}

	scripted := page.Scripted()
	out := make([]domain.Record, 0, len(els))
	for _, el := range els {
		r := p.record(ctx, el, scripted)
		if !r.Meaningful() {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (p *Pipeline) record(ctx context.Context, el browser.Element, expand bool) domain.Record {
	return domain.Record{
		Author:    firstText(ctx, el, authorSelectors, defaultAuthor),
		Score:     extractScore(ctx, el),
		Timestamp: firstText(ctx, el, dateSelectors, defaultTimestamp),
		Body:      p.body(ctx, el, expand),
	}
}

// Navigate loads target with the page-load budget, pacing first.
func (p *Pipeline) Navigate(ctx context.Context, page browser.Page, target string) error {
	if err := p.pacer.Wait(ctx, target); err != nil {
		return err
	}
	nctx, cancel := withTimeout(ctx, p.pageTimeout)
	defer cancel()
	if err := page.Navigate(nctx, target); err != nil {
		if errors.Is(nctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, err)
		}
		return err
	}
	return nil
}
