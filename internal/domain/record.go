package domain

// Record is a single review extracted from a detail page.
// Score 0 means the rating could not be read.
type Record struct {
	Author    string `json:"author"`
	Score     int    `json:"score"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body"`
}

// Meaningful reports whether the record carries a body or a score.
// Records that carry neither are noise and are dropped by the pipeline.
func (r Record) Meaningful() bool {
	return r.Body != "" || r.Score > 0
}

// RecordCollection is everything extracted for one item.
type RecordCollection struct {
	SourceURL       string     `json:"source_url"`
	FilterDimension StarFilter `json:"filter_dimension,omitempty"`
	Records         []Record   `json:"records"`
}
