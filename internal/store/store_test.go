package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/output"
	"reviewhunt-engine/internal/store"
)

var _ output.Persister = (*store.Sink)(nil)

func openTemp(t *testing.T) (*store.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviewhunt.db")
	db, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestMigrateSetsVersionAndIsIdempotent(t *testing.T) {
	db, _ := openTemp(t)
	require.NoError(t, store.Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 2, v)
}

func TestSaveCandidatesReplacesQuery(t *testing.T) {
	db, _ := openTemp(t)
	s := store.NewSink(db)
	ctx := context.Background()

	require.NoError(t, s.SaveCandidates(ctx, "r1", "desk lamp", []domain.CandidateItem{
		{Rank: 1, Title: "A", URL: "https://shop.test/dp/A000000001", Identifier: "A000000001"},
		{Rank: 2, Title: "B", URL: "https://shop.test/dp/B000000002", Identifier: "B000000002"},
	}))
	require.NoError(t, s.SaveCandidates(ctx, "r2", "desk lamp", []domain.CandidateItem{
		{Rank: 1, Title: "C", URL: "https://shop.test/dp/C000000003", Identifier: "C000000003"},
	}))
	require.NoError(t, s.SaveCandidates(ctx, "r2", "phone case", []domain.CandidateItem{
		{Rank: 1, Title: "D", URL: "https://shop.test/x"},
	}))

	got, err := s.Candidates(ctx, "desk lamp")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Title)

	other, err := s.Candidates(ctx, "phone case")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSaveCollectionRoundTripAndReplace(t *testing.T) {
	db, path := openTemp(t)
	s := store.NewSink(db)
	ctx := context.Background()

	col := domain.RecordCollection{
		SourceURL:       "https://shop.test/product-reviews/X1?filterByStar=five_star",
		FilterDimension: 5,
		Records: []domain.Record{
			{Author: "Ana", Score: 5, Timestamp: "March 1, 2026", Body: "Bright and sturdy lamp."},
			{Author: "Anonymous", Score: 5, Timestamp: "Unknown"},
		},
	}
	require.NoError(t, s.SaveCollection(ctx, "r1", "X1", col))

	got, ok, err := s.Collection(ctx, "X1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, col, got)

	col.Records = col.Records[:1]
	require.NoError(t, s.SaveCollection(ctx, "r2", "X1", col))

	// reopen to make sure rows were committed
	require.NoError(t, db.Close())
	db2, err := store.Open(path)
	require.NoError(t, err)
	defer db2.Close()

	got, ok, err = store.NewSink(db2).Collection(ctx, "X1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Records, 1)

	_, ok, err = store.NewSink(db2).Collection(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
