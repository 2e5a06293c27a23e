package domain

// WorkResult is produced exactly once per submitted CandidateItem.
type WorkResult struct {
	Item       CandidateItem    `json:"item"`
	Collection RecordCollection `json:"collection"`
	Succeeded  bool             `json:"succeeded"`
	Error      string           `json:"error,omitempty"`
	FromCache  bool             `json:"from_cache"`
}
