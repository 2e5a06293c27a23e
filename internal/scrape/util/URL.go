package util

import (
	"net/url"
	"regexp"
	"strings"

	"reviewhunt-engine/internal/domain"
)

var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`[?&]asin=([A-Z0-9]{10})`),
}

// ExtractIdentifier pulls the 10-character catalog id out of a product URL.
// Returns "" when no pattern matches.
func ExtractIdentifier(raw string) string {
	for _, re := range identifierPatterns {
		if m := re.FindStringSubmatch(raw); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// AbsoluteURL resolves href against base. Already absolute hrefs are returned
// unchanged.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	if h.IsAbs() {
		return h.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

func SearchURL(base, query string) string {
	q := url.Values{}
	q.Set("k", CleanText(query))
	return strings.TrimRight(base, "/") + "/s?" + q.Encode()
}

// ReviewsURL is the review listing for id, narrowed to one star rating when
// filter is set.
func ReviewsURL(base, id string, filter domain.StarFilter) string {
	u := strings.TrimRight(base, "/") + "/product-reviews/" + url.PathEscape(id)
	if v := filter.QueryValue(); v != "" {
		u += "?filterByStar=" + v
	}
	return u
}

// Host returns the lower-cased hostname of raw without port, or "" when it
// cannot be parsed.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
