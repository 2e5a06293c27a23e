package extract

import (
	"context"
	"regexp"
	"strconv"

	"reviewhunt-engine/internal/browser"
)

var (
	outOfFive   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:out of|/)\s*5`)
	bareNumber  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	classStars  = regexp.MustCompile(`a-star-(?:[a-z]+-)?(\d)\b`)
	classNStars = regexp.MustCompile(`\b(\d)-star\b`)
)

// Score carriers inside a record, most specific first.
var scoreSelectors = []string{
	`[data-hook="review-star-rating"]`,
	`i[data-hook="review-star-rating"]`,
	`i.a-icon-star`,
	`[aria-label*="out of 5"]`,
	`[aria-label*="stars"]`,
	`.a-icon-alt`,
	`span.a-icon-alt`,
	`[class*="a-star"]`,
	`.a-icon[class*="star"]`,
}

const labelledScoreSelector = `[aria-label*="out of 5"], [aria-label*="stars"]`

// ParseScore reads a 1..5 rating from text such as "4.0 out of 5 stars",
// "3/5" or "5". Fractions are truncated. Anything outside 1..5 is rejected.
func ParseScore(text string) (int, bool) {
	if m := outOfFive.FindStringSubmatch(text); m != nil {
		return inRange(m[1])
	}
	if m := bareNumber.FindStringSubmatch(text); m != nil {
		return inRange(m[1])
	}
	return 0, false
}

// ParseClassScore reads class tokens like "a-star-4" or "4-star".
func ParseClassScore(class string) (int, bool) {
	if m := classStars.FindStringSubmatch(class); m != nil {
		return inRange(m[1])
	}
	if m := classNStars.FindStringSubmatch(class); m != nil {
		return inRange(m[1])
	}
	return 0, false
}

func inRange(s string) (int, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > 5 {
		return 0, false
	}
	return int(f), true
}

type scoreProbe func(ctx context.Context, el browser.Element) (int, bool)

var scoreProbes = []scoreProbe{
	func(ctx context.Context, el browser.Element) (int, bool) {
		for _, name := range []string{"aria-label", "title"} {
			if v, ok, err := el.Attr(ctx, name); err == nil && ok && v != "" {
				return ParseScore(v)
			}
		}
		return 0, false
	},
	func(ctx context.Context, el browser.Element) (int, bool) {
		t, err := el.Text(ctx)
		if err != nil || t == "" {
			return 0, false
		}
		return ParseScore(t)
	},
	func(ctx context.Context, el browser.Element) (int, bool) {
		v, ok, err := el.Attr(ctx, "class")
		if err != nil || !ok {
			return 0, false
		}
		return ParseClassScore(v)
	},
}

// extractScore walks scoreSelectors and, per first match, the probe chain;
// then scans the first three labelled nodes of the whole record. 0 when
// nothing plausible is found.
func extractScore(ctx context.Context, rec browser.Element) int {
	for _, sel := range scoreSelectors {
		els, err := rec.Find(ctx, sel)
		if err != nil || len(els) == 0 {
			continue
		}
		for _, probe := range scoreProbes {
			if n, ok := probe(ctx, els[0]); ok {
				return n
			}
		}
	}

	els, err := rec.Find(ctx, labelledScoreSelector)
	if err != nil {
		return 0
	}
	for i, el := range els {
		if i == 3 {
			break
		}
		v, ok, err := el.Attr(ctx, "aria-label")
		if err != nil || !ok {
			continue
		}
		if m := outOfFive.FindStringSubmatch(v); m != nil {
			if n, ok := inRange(m[1]); ok {
				return n
			}
		}
	}
	return 0
}
