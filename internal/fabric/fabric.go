// Package fabric defines the boundary to the content-addressed,
// eventually-consistent record store. The core never talks to the network
// directly; it consumes this handful of primitives.
package fabric

import (
	"context"
	"time"

	"fabric-registry/internal/domain"
)

// Store is the content store adapter. Records are immutable once put;
// index entries are append-only typed pointers carrying a timestamp.
// Entries returns an unordered snapshot of what the local peer can see,
// which may be causally incomplete.
type Store interface {
	PutRecord(ctx context.Context, rec *domain.Record) (domain.RecordID, error)
	GetRecord(ctx context.Context, id domain.RecordID) (*domain.Record, error)

	PutEntry(ctx context.Context, subject, target string, tag domain.LinkTag) (domain.EntryID, error)
	Entries(ctx context.Context, subject string, tag domain.LinkTag) ([]domain.IndexEntry, error)
	DeleteEntry(ctx context.Context, id domain.EntryID) error
}

// Clock supplies the current time. Injected so suspension expiry can be
// tested against a simulated clock.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

type principalKey struct{}

// WithPrincipal attaches the calling peer's principal to the context.
func WithPrincipal(ctx context.Context, p domain.PrincipalID) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the calling principal. Every mutating
// operation re-reads this fresh; authorization decisions are never cached.
func PrincipalFromContext(ctx context.Context) (domain.PrincipalID, error) {
	p, ok := ctx.Value(principalKey{}).(domain.PrincipalID)
	if !ok || p == "" {
		return "", domain.PermissionDeniedf("no principal attached to the request")
	}
	return p, nil
}
