// Package output writes the final artifacts of a run.
package output

import (
	"context"
	"errors"

	"reviewhunt-engine/internal/domain"
)

// Persister stores the candidate list and per-item collections of a run.
// Writing the same key twice replaces the earlier artifact.
type Persister interface {
	SaveCandidates(ctx context.Context, runID, query string, items []domain.CandidateItem) error
	SaveCollection(ctx context.Context, runID, key string, col domain.RecordCollection) error
}

// Multi fans every write out to all persisters and joins their errors.
type Multi []Persister

func (m Multi) SaveCandidates(ctx context.Context, runID, query string, items []domain.CandidateItem) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.SaveCandidates(ctx, runID, query, items))
	}
	return errors.Join(errs...)
}

func (m Multi) SaveCollection(ctx context.Context, runID, key string, col domain.RecordCollection) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.SaveCollection(ctx, runID, key, col))
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) SaveCandidates(context.Context, string, string, []domain.CandidateItem) error {
	return nil
}

func (Discard) SaveCollection(context.Context, string, string, domain.RecordCollection) error {
	return nil
}
