package domain

import "strconv"

// CandidateItem is a search result that has not been visited yet.
// Identifier is parsed from URL and may be empty.
type CandidateItem struct {
	Rank       int    `json:"rank"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Identifier string `json:"identifier"`
}

// Key returns the identifier, or a rank-based placeholder when the
// identifier could not be parsed from the URL.
func (c CandidateItem) Key() string {
	if c.Identifier != "" {
		return c.Identifier
	}
	return "unknown-" + strconv.Itoa(c.Rank)
}
