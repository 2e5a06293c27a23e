package output

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/fsutil"
)

const CandidatesFile = "products.json"

type candidatesDoc struct {
	Query     string                 `json:"query"`
	Timestamp time.Time              `json:"timestamp"`
	Items     []domain.CandidateItem `json:"items"`
}

type collectionMeta struct {
	RecordCount int       `json:"record_count"`
	ScrapedAt   time.Time `json:"scraped_at"`
	RunID       string    `json:"run_id"`
}

type collectionDoc struct {
	domain.RecordCollection
	Metadata collectionMeta `json:"metadata"`
}

// JSONWriter writes one pretty-printed file per artifact under Dir.
type JSONWriter struct {
	Dir string
	Now func() time.Time
}

func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{Dir: dir, Now: time.Now}
}

func (w *JSONWriter) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

func (w *JSONWriter) SaveCandidates(ctx context.Context, runID, query string, items []domain.CandidateItem) error {
	if items == nil {
		items = []domain.CandidateItem{}
	}
	return w.write(CandidatesFile, candidatesDoc{Query: query, Timestamp: w.now(), Items: items})
}

func (w *JSONWriter) SaveCollection(ctx context.Context, runID, key string, col domain.RecordCollection) error {
	if col.Records == nil {
		col.Records = []domain.Record{}
	}
	doc := collectionDoc{
		RecordCollection: col,
		Metadata: collectionMeta{
			RecordCount: len(col.Records),
			ScrapedAt:   w.now(),
			RunID:       runID,
		},
	}
	return w.write(CollectionFile(key), doc)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// CollectionFile is the file name a collection keyed by key is written to.
func CollectionFile(key string) string {
	return "reviews_" + unsafeName.ReplaceAllString(key, "_") + ".json"
}

func (w *JSONWriter) write(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(w.Dir, name)
	if err := fsutil.WriteAtomic(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
