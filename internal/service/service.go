package service

import (
	"context"
	"encoding/json"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
)

type EntityService interface {
	Create(ctx context.Context, kind domain.EntityKind, payload json.RawMessage) (*domain.Record, error)
	Latest(ctx context.Context, originalID domain.RecordID) (*domain.Record, error)
	Update(ctx context.Context, originalID domain.RecordID, payload json.RawMessage) (*domain.Record, error)
	Delete(ctx context.Context, originalID domain.RecordID) error
	All(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error)
	Revisions(ctx context.Context, originalID domain.RecordID) ([]domain.Record, error)
}

type StatusService interface {
	Create(ctx context.Context, entityID domain.RecordID) (*domain.Record, error)
	Latest(ctx context.Context, entityID domain.RecordID) (*domain.Status, error)
	LatestRecord(ctx context.Context, entityID domain.RecordID) (*domain.Record, error)
	Update(ctx context.Context, entityID domain.RecordID, next domain.Status) (*domain.Record, error)
	SuspendTemporarily(ctx context.Context, entityID domain.RecordID, reason string, days int) error
	SuspendIndefinitely(ctx context.Context, entityID domain.RecordID, reason string) error
	Unsuspend(ctx context.Context, entityID domain.RecordID) error
	UnsuspendIfExpired(ctx context.Context, entityID domain.RecordID) (bool, error)
	Accepted(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error)
	History(ctx context.Context, entityID domain.RecordID) ([]domain.Record, error)
}

type AdminService interface {
	Register(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error
	Add(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error
	Remove(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error
	IsAdministrator(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) (bool, error)
	IsAdministratorPrincipal(ctx context.Context, kind domain.EntityKind, principal domain.PrincipalID) (bool, error)
	ListAdministrators(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error)
}

type MembershipService interface {
	AddMember(ctx context.Context, orgID, userID domain.RecordID) error
	RemoveMember(ctx context.Context, orgID, userID domain.RecordID) error
	AddCoordinator(ctx context.Context, orgID, userID domain.RecordID) error
	RemoveCoordinator(ctx context.Context, orgID, userID domain.RecordID) error
	IsMember(ctx context.Context, orgID, userID domain.RecordID) (bool, error)
	IsCoordinator(ctx context.Context, orgID, userID domain.RecordID) (bool, error)
	Members(ctx context.Context, orgID domain.RecordID) ([]domain.RecordID, error)
	Coordinators(ctx context.Context, orgID domain.RecordID) ([]domain.RecordID, error)
	Leave(ctx context.Context, orgID domain.RecordID) error
	DeleteOrganization(ctx context.Context, orgID domain.RecordID) error
}

// Services bundles the wired components. Construction order matters because
// the authorization gate composes the registry and the membership graph.
type Services struct {
	Entities    EntityService
	Status      StatusService
	Admins      AdminService
	Memberships MembershipService
	Gate        *Gate
}

// New wires every component against one store and one clock.
func New(store fabric.Store, clock fabric.Clock) *Services {
	if clock == nil {
		clock = fabric.SystemClock
	}
	resolver := NewResolver(store, nil)

	admins := NewAdminService(store)
	gate := NewGate(store, admins)
	status := NewStatusService(store, resolver, gate, clock)
	memberships := NewMembershipService(store, gate, status)
	gate.coordinators = memberships
	entities := NewEntityService(store, resolver, gate, status, memberships)

	return &Services{
		Entities:    entities,
		Status:      status,
		Admins:      admins,
		Memberships: memberships,
		Gate:        gate,
	}
}
