package extract

import (
	"context"
	"strings"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/scrape/util"
)

var (
	sponsoredMarkerSelectors = []string{
		`[data-component-type="sp-sponsored-result"]`,
		`[data-component-sub-type="sp-ad-result"]`,
		`.s-sponsored-label`,
		`[class*="sponsored-label"]`,
	}
	sponsoredLabelSelectors = []string{
		`.s-label-popover-default`,
		`[aria-label*="Sponsored"]`,
	}
	sponsoredTextSelector = `span, a, div, label`
)

// maxMarkerChecks bounds how many matches per selector are tested for
// visibility.
const maxMarkerChecks = 2

type sponsoredProbe func(ctx context.Context, el browser.Element) bool

// Any single positive probe marks the entry sponsored.
var sponsoredProbes = []sponsoredProbe{
	componentTypeProbe,
	subTypeProbe,
	visibleAny(sponsoredMarkerSelectors),
	sponsoredTextProbe,
	visibleAny(sponsoredLabelSelectors),
}

// IsSponsored reports whether a search result is a paid placement. Probe
// errors count as "not sponsored" so markup drift never hides organic results.
func (p *Pipeline) IsSponsored(ctx context.Context, el browser.Element) bool {
	for _, probe := range sponsoredProbes {
		if probe(ctx, el) {
			return true
		}
	}
	return false
}

func componentTypeProbe(ctx context.Context, el browser.Element) bool {
	v, ok, err := el.Attr(ctx, "data-component-type")
	if err != nil || !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), "sp-sponsored")
}

// subTypeProbe looks for an "sp" or "ad" token in the dash-separated sub-type.
func subTypeProbe(ctx context.Context, el browser.Element) bool {
	v, ok, err := el.Attr(ctx, "data-component-sub-type")
	if err != nil || !ok {
		return false
	}
	for _, tok := range strings.Split(strings.ToLower(v), "-") {
		if tok == "sp" || tok == "ad" {
			return true
		}
	}
	return false
}

func visibleAny(selectors []string) sponsoredProbe {
	return func(ctx context.Context, el browser.Element) bool {
		for _, sel := range selectors {
			found, err := el.Find(ctx, sel)
			if err != nil {
				continue
			}
			for i, f := range found {
				if i == maxMarkerChecks {
					break
				}
				if ok, err := f.Visible(ctx); err == nil && ok {
					return true
				}
			}
		}
		return false
	}
}

func sponsoredTextProbe(ctx context.Context, el browser.Element) bool {
	found, err := el.Find(ctx, sponsoredTextSelector)
	if err != nil {
		return false
	}
	checked := 0
	for _, f := range found {
		t, err := f.Text(ctx)
		if err != nil || util.CleanText(t) != "Sponsored" {
			continue
		}
		if ok, err := f.Visible(ctx); err == nil && ok {
			return true
		}
		checked++
		if checked == maxMarkerChecks {
			break
		}
	}
	return false
}
