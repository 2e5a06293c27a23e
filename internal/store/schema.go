package store

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 2

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS candidates (
  query TEXT NOT NULL,
  rank INTEGER NOT NULL,
  title TEXT NOT NULL,
  url TEXT NOT NULL,
  identifier TEXT NOT NULL DEFAULT '',
  saved_at TEXT NOT NULL,
  PRIMARY KEY (query, rank)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS collections (
  key TEXT PRIMARY KEY,
  source_url TEXT NOT NULL,
  filter_dimension INTEGER NOT NULL DEFAULT 0,
  record_count INTEGER NOT NULL DEFAULT 0,
  scraped_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS records (
  collection_key TEXT NOT NULL,
  position INTEGER NOT NULL,
  author TEXT NOT NULL,
  score INTEGER NOT NULL DEFAULT 0,
  timestamp TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (collection_key, position)
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_candidates_identifier
ON candidates(identifier)
WHERE identifier != '';
`); err != nil {
		return err
	}

	// ---- Schema v2: run ids ----

	for _, t := range []string{"candidates", "collections"} {
		if !columnExists(tx, t, "run_id") {
			if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN run_id TEXT NOT NULL DEFAULT '';`, t)); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
