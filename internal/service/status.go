package service

import (
	"context"
	"time"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"

	"github.com/google/uuid"
)

type statusService struct {
	store    fabric.Store
	resolver *Resolver
	gate     *Gate
	clock    fabric.Clock
}

func NewStatusService(store fabric.Store, resolver *Resolver, gate *Gate, clock fabric.Clock) StatusService {
	return &statusService{store: store, resolver: resolver, gate: gate, clock: clock}
}

// Create attaches the initial Pending status to an entity. Runs at entity
// creation time and requires no authorization; an entity can only ever get
// one status chain.
func (s *statusService) Create(ctx context.Context, entityID domain.RecordID) (*domain.Record, error) {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Entries(ctx, string(entityID), domain.TagEntityStatus)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.PreconditionFailedf("entity %s already has a status", entityID)
	}

	payload, err := domain.EncodeStatus(domain.PendingStatus())
	if err != nil {
		return nil, err
	}
	rec := &domain.Record{
		Kind:    domain.KindStatus,
		Author:  caller,
		Payload: payload,
		Nonce:   uuid.NewString(),
	}
	if _, err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := s.store.PutEntry(ctx, string(entityID), string(rec.ID), domain.TagEntityStatus); err != nil {
		return nil, err
	}
	return rec, nil
}

// statusOriginal finds the original id of the entity's status chain. The
// empty id with a nil error means the entity has no status yet.
func (s *statusService) statusOriginal(ctx context.Context, entityID domain.RecordID) (domain.RecordID, error) {
	entries, err := s.store.Entries(ctx, string(entityID), domain.TagEntityStatus)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	return domain.RecordID(entries[0].Target), nil
}

func (s *statusService) LatestRecord(ctx context.Context, entityID domain.RecordID) (*domain.Record, error) {
	statusID, err := s.statusOriginal(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if statusID == "" {
		return nil, nil
	}
	return s.resolver.Latest(ctx, statusID, domain.TagStatusUpdates)
}

// Latest resolves the entity's current status. Nil with no error means no
// status exists yet; that is an empty result, not a failure.
func (s *statusService) Latest(ctx context.Context, entityID domain.RecordID) (*domain.Status, error) {
	rec, err := s.LatestRecord(ctx, entityID)
	if err != nil || rec == nil {
		return nil, err
	}
	st, err := domain.DecodeStatus(rec.Payload)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Update moves the entity to a new status. Administrator-gated; every run
// recomputes the accepted-entities index from scratch so a half-applied
// transition is repaired by re-running the same transition.
func (s *statusService) Update(ctx context.Context, entityID domain.RecordID, next domain.Status) (*domain.Record, error) {
	entity, err := s.store.GetRecord(ctx, entityID)
	if err != nil {
		return nil, domain.NotFoundf("entity %s", entityID)
	}
	if err := s.gate.EnsureAdministrator(ctx, entity.Kind); err != nil {
		return nil, err
	}
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	statusID, err := s.statusOriginal(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if statusID == "" {
		return nil, domain.NotFoundf("could not find the latest status of entity %s", entityID)
	}
	previous, err := s.resolver.Latest(ctx, statusID, domain.TagStatusUpdates)
	if err != nil {
		return nil, err
	}

	payload, err := domain.EncodeStatus(next)
	if err != nil {
		return nil, err
	}
	rec := &domain.Record{
		Kind:       domain.KindStatus,
		Author:     caller,
		Payload:    payload,
		RevisionOf: previous.ID,
		Nonce:      uuid.NewString(),
	}
	if _, err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := s.store.PutEntry(ctx, string(statusID), string(rec.ID), domain.TagStatusUpdates); err != nil {
		return nil, err
	}

	if err := s.reconcileAcceptedIndex(ctx, entity.Kind, entityID, next.Type == domain.StatusAccepted); err != nil {
		return nil, err
	}
	return rec, nil
}

// reconcileAcceptedIndex deletes then recreates the entity's entry under
// the accepted anchor. Both halves are recomputed on every transition so
// the operation is idempotent.
func (s *statusService) reconcileAcceptedIndex(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID, accepted bool) error {
	anchor := domain.AcceptedAnchor(kind)
	entries, err := s.store.Entries(ctx, anchor, domain.TagAcceptedEntity)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Target == string(entityID) {
			if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
				return err
			}
		}
	}
	if accepted {
		if _, err := s.store.PutEntry(ctx, anchor, string(entityID), domain.TagAcceptedEntity); err != nil {
			return err
		}
	}
	return nil
}

func (s *statusService) SuspendTemporarily(ctx context.Context, entityID domain.RecordID, reason string, days int) error {
	if days <= 0 {
		return domain.PreconditionFailedf("duration in days must be provided")
	}
	until := s.clock().Add(time.Duration(days) * 24 * time.Hour)
	_, err := s.Update(ctx, entityID, domain.SuspendedStatus(reason, &until))
	return err
}

func (s *statusService) SuspendIndefinitely(ctx context.Context, entityID domain.RecordID, reason string) error {
	_, err := s.Update(ctx, entityID, domain.SuspendedStatus(reason, nil))
	return err
}

func (s *statusService) Unsuspend(ctx context.Context, entityID domain.RecordID) error {
	_, err := s.Update(ctx, entityID, domain.AcceptedStatus())
	return err
}

// UnsuspendIfExpired lifts a temporary suspension once its deadline is
// within the grace window. This is the only self-triggered transition and
// it is checked lazily; there is no background expiry inside the core.
func (s *statusService) UnsuspendIfExpired(ctx context.Context, entityID domain.RecordID) (bool, error) {
	st, err := s.Latest(ctx, entityID)
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, domain.NotFoundf("could not find the latest status of entity %s", entityID)
	}
	if !st.SuspensionExpired(s.clock()) {
		return false, nil
	}
	if _, err := s.Update(ctx, entityID, domain.AcceptedStatus()); err != nil {
		return false, err
	}
	return true, nil
}

func (s *statusService) Accepted(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error) {
	entries, err := s.store.Entries(ctx, domain.AcceptedAnchor(kind), domain.TagAcceptedEntity)
	if err != nil {
		return nil, err
	}
	return uniqueTargets(entries), nil
}

func (s *statusService) History(ctx context.Context, entityID domain.RecordID) ([]domain.Record, error) {
	statusID, err := s.statusOriginal(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if statusID == "" {
		return nil, nil
	}
	return s.resolver.Revisions(ctx, statusID, domain.TagStatusUpdates)
}
