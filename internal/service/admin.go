package service

import (
	"context"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
)

type adminService struct {
	store fabric.Store
}

func NewAdminService(store fabric.Store) AdminService {
	return &adminService{store: store}
}

// Register records an entity as an administrator of the given kind without
// requiring an existing administrator. This is the network bootstrap path;
// Add is the gated form.
func (s *adminService) Register(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error {
	already, err := s.IsAdministrator(ctx, kind, entityID)
	if err != nil {
		return err
	}
	if already {
		return domain.InvariantViolationf("entity %s is already an administrator", entityID)
	}

	rec, err := s.store.GetRecord(ctx, entityID)
	if err != nil {
		return domain.NotFoundf("administrator entity %s", entityID)
	}

	anchor := domain.AdministratorsAnchor(kind)
	if _, err := s.store.PutEntry(ctx, anchor, string(entityID), domain.TagAllAdministrators); err != nil {
		return err
	}
	// Reverse entry for the fast principal lookup.
	if _, err := s.store.PutEntry(ctx, string(rec.Author), anchor, domain.TagAgentAdministrators); err != nil {
		return err
	}
	return nil
}

func (s *adminService) Add(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	isAdmin, err := s.IsAdministratorPrincipal(ctx, kind, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.PermissionDeniedf("only administrators can add administrators")
	}
	return s.Register(ctx, kind, entityID)
}

func (s *adminService) Remove(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) error {
	caller, err := fabric.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	isAdmin, err := s.IsAdministratorPrincipal(ctx, kind, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.PermissionDeniedf("only administrators can remove administrators")
	}

	// Recount immediately before deleting; the registry must never reach a
	// state from which no one can perform admin actions.
	anchor := domain.AdministratorsAnchor(kind)
	entries, err := s.store.Entries(ctx, anchor, domain.TagAllAdministrators)
	if err != nil {
		return err
	}
	if countTargets(entries) <= 1 {
		return domain.InvariantViolationf("there must be at least one %s administrator", kind)
	}

	found := false
	for _, e := range entries {
		if e.Target == string(entityID) {
			if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
				return err
			}
			found = true
		}
	}
	if !found {
		return domain.NotFoundf("administrator entry for entity %s", entityID)
	}

	// Drop the principal's reverse entry as well.
	rec, err := s.store.GetRecord(ctx, entityID)
	if err != nil {
		return domain.NotFoundf("administrator entity %s", entityID)
	}
	reverse, err := s.store.Entries(ctx, string(rec.Author), domain.TagAgentAdministrators)
	if err != nil {
		return err
	}
	for _, e := range reverse {
		if e.Target == anchor {
			if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *adminService) IsAdministrator(ctx context.Context, kind domain.EntityKind, entityID domain.RecordID) (bool, error) {
	entries, err := s.store.Entries(ctx, domain.AdministratorsAnchor(kind), domain.TagAllAdministrators)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Target == string(entityID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *adminService) IsAdministratorPrincipal(ctx context.Context, kind domain.EntityKind, principal domain.PrincipalID) (bool, error) {
	entries, err := s.store.Entries(ctx, string(principal), domain.TagAgentAdministrators)
	if err != nil {
		return false, err
	}
	anchor := domain.AdministratorsAnchor(kind)
	for _, e := range entries {
		if e.Target == anchor {
			return true, nil
		}
	}
	return false, nil
}

func (s *adminService) ListAdministrators(ctx context.Context, kind domain.EntityKind) ([]domain.RecordID, error) {
	entries, err := s.store.Entries(ctx, domain.AdministratorsAnchor(kind), domain.TagAllAdministrators)
	if err != nil {
		return nil, err
	}
	return uniqueTargets(entries), nil
}

// countTargets counts distinct targets, tolerating duplicate entries from
// racing peers.
func countTargets(entries []domain.IndexEntry) int {
	return len(uniqueTargets(entries))
}

func uniqueTargets(entries []domain.IndexEntry) []domain.RecordID {
	seen := make(map[string]bool, len(entries))
	var out []domain.RecordID
	for _, e := range entries {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, domain.RecordID(e.Target))
		}
	}
	return out
}
