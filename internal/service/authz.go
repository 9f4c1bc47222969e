package service

import (
	"context"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
)

type administratorChecker interface {
	IsAdministratorPrincipal(ctx context.Context, kind domain.EntityKind, principal domain.PrincipalID) (bool, error)
}

type coordinatorChecker interface {
	IsCoordinator(ctx context.Context, orgID, userID domain.RecordID) (bool, error)
}

// Gate answers "may this principal perform this operation on this entity"
// before any mutation is attempted. Checks run fresh on every call; no
// cross-peer lock exists, so capability re-checks replace locking.
type Gate struct {
	store        fabric.Store
	admins       administratorChecker
	coordinators coordinatorChecker
}

func NewGate(store fabric.Store, admins administratorChecker) *Gate {
	return &Gate{store: store, admins: admins}
}

// CallerUser resolves the calling principal to its user profile's original
// id.
func (g *Gate) CallerUser(ctx context.Context) (domain.RecordID, error) {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return "", err
	}
	entries, err := g.store.Entries(ctx, string(caller), domain.TagAgentEntity)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", domain.PreconditionFailedf("you must first create a user profile")
	}
	return domain.RecordID(entries[0].Target), nil
}

// EnsureAdministrator fails with a permission error unless the caller is an
// administrator of the given entity kind.
func (g *Gate) EnsureAdministrator(ctx context.Context, kind domain.EntityKind) error {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	isAdmin, err := g.admins.IsAdministratorPrincipal(ctx, kind, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.PermissionDeniedf("caller is not a %s administrator", kind)
	}
	return nil
}

// EnsureCoordinator fails unless the caller's user profile is a coordinator
// of the organization. Returns the caller's user id for follow-up steps.
func (g *Gate) EnsureCoordinator(ctx context.Context, orgID domain.RecordID) (domain.RecordID, error) {
	userID, err := g.CallerUser(ctx)
	if err != nil {
		return "", err
	}
	ok, err := g.coordinators.IsCoordinator(ctx, orgID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.PermissionDeniedf("only coordinators can manage the organization")
	}
	return userID, nil
}
