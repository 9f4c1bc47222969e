package service

import (
	"context"
	"sort"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
)

// TieBreak reports whether entry a wins over entry b when resolving the
// latest revision. Kept pluggable because peers must agree on a policy but
// deployments may pick their own.
type TieBreak func(a, b domain.IndexEntry) bool

// MaxTimestampThenTarget is the default policy: latest timestamp wins, and
// identical timestamps fall back to the lexically greatest target id so
// any two peers holding the same entry set resolve the same winner.
func MaxTimestampThenTarget(a, b domain.IndexEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Target > b.Target
}

// Resolver walks revision index entries to find the latest visible revision
// of an entity. The chain is flat: every revision links from the original
// id, so a single pass over the snapshot suffices.
type Resolver struct {
	store    fabric.Store
	tieBreak TieBreak
}

func NewResolver(store fabric.Store, tieBreak TieBreak) *Resolver {
	if tieBreak == nil {
		tieBreak = MaxTimestampThenTarget
	}
	return &Resolver{store: store, tieBreak: tieBreak}
}

// LatestID resolves the id of the latest revision without fetching it.
// With no revision entries the original id is the latest.
func (r *Resolver) LatestID(ctx context.Context, originalID domain.RecordID, tag domain.LinkTag) (domain.RecordID, error) {
	entries, err := r.store.Entries(ctx, string(originalID), tag)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return originalID, nil
	}
	winner := entries[0]
	for _, e := range entries[1:] {
		if r.tieBreak(e, winner) {
			winner = e
		}
	}
	return domain.RecordID(winner.Target), nil
}

// Latest fetches the latest visible revision of the subject. A revision
// entry pointing at a record the local peer cannot fetch surfaces a missing
// revision target error; that is a propagation gap, not corruption.
func (r *Resolver) Latest(ctx context.Context, originalID domain.RecordID, tag domain.LinkTag) (*domain.Record, error) {
	latestID, err := r.LatestID(ctx, originalID, tag)
	if err != nil {
		return nil, err
	}
	rec, err := r.store.GetRecord(ctx, latestID)
	if err != nil {
		return nil, domain.NotFoundf("missing revision target %s for %s", latestID, originalID)
	}
	return rec, nil
}

// Revisions returns every visible revision of the subject, the original
// record first and the rest in timestamp order. Unfetchable targets are
// skipped rather than failing the whole listing.
func (r *Resolver) Revisions(ctx context.Context, originalID domain.RecordID, tag domain.LinkTag) ([]domain.Record, error) {
	original, err := r.store.GetRecord(ctx, originalID)
	if err != nil {
		return nil, domain.NotFoundf("record %s", originalID)
	}

	entries, err := r.store.Entries(ctx, string(originalID), tag)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	records := []domain.Record{*original}
	for _, e := range entries {
		rec, err := r.store.GetRecord(ctx, domain.RecordID(e.Target))
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}
