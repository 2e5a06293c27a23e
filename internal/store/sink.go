package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reviewhunt-engine/internal/domain"
)

// Sink persists run artifacts. Saving a query or collection key again
// replaces its rows in a single transaction.
type Sink struct {
	db  *sql.DB
	now func() time.Time
}

func NewSink(db *DB) *Sink {
	return &Sink{db: db.Pool, now: time.Now}
}

func (s *Sink) stamp() string { return s.now().UTC().Format(time.RFC3339) }

func (s *Sink) SaveCandidates(ctx context.Context, runID, query string, items []domain.CandidateItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE query = ?;`, query); err != nil {
		return fmt.Errorf("clear candidates: %w", err)
	}
	at := s.stamp()
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO candidates(query, rank, title, url, identifier, saved_at, run_id)
VALUES(?,?,?,?,?,?,?);`,
			query, it.Rank, it.Title, it.URL, it.Identifier, at, runID); err != nil {
			return fmt.Errorf("insert candidate %d: %w", it.Rank, err)
		}
	}
	return tx.Commit()
}

func (s *Sink) SaveCollection(ctx context.Context, runID, key string, col domain.RecordCollection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection_key = ?;`, key); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO collections(key, source_url, filter_dimension, record_count, scraped_at, run_id)
VALUES(?,?,?,?,?,?)
ON CONFLICT(key) DO UPDATE SET
  source_url = excluded.source_url,
  filter_dimension = excluded.filter_dimension,
  record_count = excluded.record_count,
  scraped_at = excluded.scraped_at,
  run_id = excluded.run_id;`,
		key, col.SourceURL, int(col.FilterDimension), len(col.Records), s.stamp(), runID); err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}
	for i, r := range col.Records {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO records(collection_key, position, author, score, timestamp, body)
VALUES(?,?,?,?,?,?);`,
			key, i, r.Author, r.Score, r.Timestamp, r.Body); err != nil {
			return fmt.Errorf("insert record %s/%d: %w", key, i, err)
		}
	}
	return tx.Commit()
}

// Candidates returns the stored list for query ordered by rank.
func (s *Sink) Candidates(ctx context.Context, query string) ([]domain.CandidateItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rank, title, url, identifier
FROM candidates
WHERE query = ?
ORDER BY rank;`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CandidateItem
	for rows.Next() {
		var it domain.CandidateItem
		if err := rows.Scan(&it.Rank, &it.Title, &it.URL, &it.Identifier); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Collection loads a stored collection; ok is false when key is unknown.
func (s *Sink) Collection(ctx context.Context, key string) (col domain.RecordCollection, ok bool, err error) {
	var filter int
	err = s.db.QueryRowContext(ctx, `
SELECT source_url, filter_dimension
FROM collections
WHERE key = ?;`, key).Scan(&col.SourceURL, &filter)
	if err == sql.ErrNoRows {
		return col, false, nil
	}
	if err != nil {
		return col, false, err
	}
	col.FilterDimension = domain.StarFilter(filter)

	rows, err := s.db.QueryContext(ctx, `
SELECT author, score, timestamp, body
FROM records
WHERE collection_key = ?
ORDER BY position;`, key)
	if err != nil {
		return col, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(&r.Author, &r.Score, &r.Timestamp, &r.Body); err != nil {
			return col, false, err
		}
		col.Records = append(col.Records, r)
	}
	return col, true, rows.Err()
}
