package service

import (
	"context"
	"encoding/json"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"

	"github.com/google/uuid"
)

type entityService struct {
	store       fabric.Store
	resolver    *Resolver
	gate        *Gate
	status      StatusService
	memberships MembershipService
}

func NewEntityService(store fabric.Store, resolver *Resolver, gate *Gate, status StatusService, memberships MembershipService) EntityService {
	return &entityService{
		store:       store,
		resolver:    resolver,
		gate:        gate,
		status:      status,
		memberships: memberships,
	}
}

// Create writes the first record of a new moderated entity, wires it into
// the kind's listing anchor and attaches the initial Pending status.
func (s *entityService) Create(ctx context.Context, kind domain.EntityKind, payload json.RawMessage) (*domain.Record, error) {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var creatorUser domain.RecordID
	switch kind {
	case domain.KindUser:
		existing, err := s.store.Entries(ctx, string(caller), domain.TagAgentEntity)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, domain.PreconditionFailedf("you already have a user profile")
		}
	case domain.KindOrganization:
		creatorUser, err = s.gate.CallerUser(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.PreconditionFailedf("cannot create entities of kind %q", kind)
	}

	rec := &domain.Record{
		Kind:    kind,
		Author:  caller,
		Payload: payload,
		Nonce:   uuid.NewString(),
	}
	if _, err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := s.store.PutEntry(ctx, domain.AllEntitiesAnchor(kind), string(rec.ID), domain.TagAllEntities); err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindUser:
		if _, err := s.store.PutEntry(ctx, string(caller), string(rec.ID), domain.TagAgentEntity); err != nil {
			return nil, err
		}
	case domain.KindOrganization:
		// The creator starts as both member and coordinator so the
		// coordinator floor holds from the first moment.
		if _, err := s.store.PutEntry(ctx, string(rec.ID), string(creatorUser), domain.TagOrganizationMembers); err != nil {
			return nil, err
		}
		if _, err := s.store.PutEntry(ctx, string(creatorUser), string(rec.ID), domain.TagUserOrganizations); err != nil {
			return nil, err
		}
		if _, err := s.store.PutEntry(ctx, string(rec.ID), string(creatorUser), domain.TagOrganizationCoordinators); err != nil {
			return nil, err
		}
	}

	if _, err := s.status.Create(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *entityService) Latest(ctx context.Context, originalID domain.RecordID) (*domain.Record, error) {
	return s.resolver.Latest(ctx, originalID, domain.TagEntityUpdates)
}

// Update appends a revision record. Only the original author may revise an
// entity; the revision links from the original id, keeping the chain flat.
func (s *entityService) Update(ctx context.Context, originalID domain.RecordID, payload json.RawMessage) (*domain.Record, error) {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	original, err := s.store.GetRecord(ctx, originalID)
	if err != nil {
		return nil, domain.NotFoundf("entity %s", originalID)
	}
	if original.Author != caller {
		return nil, domain.PermissionDeniedf("only the original author can update entity %s", originalID)
	}

	previous, err := s.resolver.Latest(ctx, originalID, domain.TagEntityUpdates)
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{
		Kind:       original.Kind,
		Author:     caller,
		Payload:    payload,
		RevisionOf: previous.ID,
		Nonce:      uuid.NewString(),
	}
	if _, err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := s.store.PutEntry(ctx, string(originalID), string(rec.ID), domain.TagEntityUpdates); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete tears down an organization; user profiles can never be deleted.
func (s *entityService) Delete(ctx context.Context, originalID domain.RecordID) error {
	original, err := s.store.GetRecord(ctx, originalID)
	if err != nil {
		return domain.NotFoundf("entity %s", originalID)
	}
	switch original.Kind {
	case domain.KindUser:
		return domain.InvariantViolationf("user profiles cannot be deleted")
	case domain.KindOrganization:
		return s.memberships.DeleteOrganization(ctx, originalID)
	default:
		return domain.PreconditionFailedf("cannot delete entities of kind %q", original.Kind)
	}
}

// All lists every entity of a kind. Administrator-gated: regular peers only
// see the accepted listing.
func (s *entityService) All(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error) {
	if err := s.gate.EnsureAdministrator(ctx, kind); err != nil {
		return nil, err
	}
	entries, err := s.store.Entries(ctx, domain.AllEntitiesAnchor(kind), domain.TagAllEntities)
	if err != nil {
		return nil, err
	}
	return uniqueTargets(entries), nil
}

func (s *entityService) Revisions(ctx context.Context, originalID domain.RecordID) ([]domain.Record, error) {
	return s.resolver.Revisions(ctx, originalID, domain.TagEntityUpdates)
}
