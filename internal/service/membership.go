package service

import (
	"context"

	"fabric-registry/internal/domain"
	"fabric-registry/internal/fabric"
)

type membershipService struct {
	store  fabric.Store
	gate   *Gate
	status StatusService
}

func NewMembershipService(store fabric.Store, gate *Gate, status StatusService) MembershipService {
	return &membershipService{store: store, gate: gate, status: status}
}

// ensureGrowable verifies the caller is a coordinator and the organization
// is accepted. Organizations pending moderation cannot grow.
func (s *membershipService) ensureGrowable(ctx context.Context, orgID domain.RecordID) error {
	if _, err := s.gate.EnsureCoordinator(ctx, orgID); err != nil {
		return err
	}
	st, err := s.status.Latest(ctx, orgID)
	if err != nil {
		return err
	}
	if st == nil || st.Type != domain.StatusAccepted {
		return domain.InvariantViolationf("organization %s is not accepted", orgID)
	}
	return nil
}

func (s *membershipService) AddMember(ctx context.Context, orgID, userID domain.RecordID) error {
	if err := s.ensureGrowable(ctx, orgID); err != nil {
		return err
	}
	member, err := s.IsMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member {
		return domain.InvariantViolationf("user %s is already a member", userID)
	}
	return s.createMembershipLinks(ctx, orgID, userID)
}

// createMembershipLinks writes the org→member and member→org pair. The two
// puts are not atomic; a crash in between leaves a half-created edge that
// IsMember reads as "not a member".
func (s *membershipService) createMembershipLinks(ctx context.Context, orgID, userID domain.RecordID) error {
	if _, err := s.store.PutEntry(ctx, string(orgID), string(userID), domain.TagOrganizationMembers); err != nil {
		return err
	}
	if _, err := s.store.PutEntry(ctx, string(userID), string(orgID), domain.TagUserOrganizations); err != nil {
		return err
	}
	return nil
}

func (s *membershipService) deleteMembershipLinks(ctx context.Context, orgID, userID domain.RecordID) error {
	if err := s.deleteEntriesTargeting(ctx, string(orgID), domain.TagOrganizationMembers, string(userID)); err != nil {
		return err
	}
	return s.deleteEntriesTargeting(ctx, string(userID), domain.TagUserOrganizations, string(orgID))
}

func (s *membershipService) RemoveMember(ctx context.Context, orgID, userID domain.RecordID) error {
	if _, err := s.gate.EnsureCoordinator(ctx, orgID); err != nil {
		return err
	}
	member, err := s.IsMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !member {
		return domain.NotFoundf("user %s is not a member of organization %s", userID, orgID)
	}
	coordinator, err := s.IsCoordinator(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if coordinator {
		return domain.InvariantViolationf("user %s is a coordinator and must be demoted first", userID)
	}

	members, err := s.Members(ctx, orgID)
	if err != nil {
		return err
	}
	if len(members) <= 1 {
		return domain.InvariantViolationf("cannot remove the last member of organization %s", orgID)
	}
	return s.deleteMembershipLinks(ctx, orgID, userID)
}

// AddCoordinator promotes a user, creating the membership pair first if it
// is absent so a coordinator is never a non-member.
func (s *membershipService) AddCoordinator(ctx context.Context, orgID, userID domain.RecordID) error {
	if err := s.ensureGrowable(ctx, orgID); err != nil {
		return err
	}
	coordinator, err := s.IsCoordinator(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if coordinator {
		return domain.InvariantViolationf("user %s is already a coordinator", userID)
	}
	member, err := s.IsMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !member {
		if err := s.createMembershipLinks(ctx, orgID, userID); err != nil {
			return err
		}
	}
	_, err = s.store.PutEntry(ctx, string(orgID), string(userID), domain.TagOrganizationCoordinators)
	return err
}

func (s *membershipService) RemoveCoordinator(ctx context.Context, orgID, userID domain.RecordID) error {
	if _, err := s.gate.EnsureCoordinator(ctx, orgID); err != nil {
		return err
	}
	return s.demoteCoordinator(ctx, orgID, userID)
}

// demoteCoordinator deletes a coordinator entry after re-reading the
// coordinator count immediately before the delete. The recount stands in
// for a lock the fabric cannot provide.
func (s *membershipService) demoteCoordinator(ctx context.Context, orgID, userID domain.RecordID) error {
	coordinator, err := s.IsCoordinator(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !coordinator {
		return domain.NotFoundf("user %s is not a coordinator of organization %s", userID, orgID)
	}
	coordinators, err := s.Coordinators(ctx, orgID)
	if err != nil {
		return err
	}
	if len(coordinators) <= 1 {
		return domain.InvariantViolationf("organization %s must keep at least one coordinator", orgID)
	}
	return s.deleteEntriesTargeting(ctx, string(orgID), domain.TagOrganizationCoordinators, string(userID))
}

// IsMember requires both directional entries. A dangling half-edge from a
// partially failed add reads as "not a member" rather than as an error.
func (s *membershipService) IsMember(ctx context.Context, orgID, userID domain.RecordID) (bool, error) {
	forward, err := s.hasEntry(ctx, string(orgID), domain.TagOrganizationMembers, string(userID))
	if err != nil {
		return false, err
	}
	if !forward {
		return false, nil
	}
	return s.hasEntry(ctx, string(userID), domain.TagUserOrganizations, string(orgID))
}

func (s *membershipService) IsCoordinator(ctx context.Context, orgID, userID domain.RecordID) (bool, error) {
	return s.hasEntry(ctx, string(orgID), domain.TagOrganizationCoordinators, string(userID))
}

func (s *membershipService) Members(ctx context.Context, orgID domain.RecordID) ([]domain.RecordID, error) {
	entries, err := s.store.Entries(ctx, string(orgID), domain.TagOrganizationMembers)
	if err != nil {
		return nil, err
	}
	var members []domain.RecordID
	for _, id := range uniqueTargets(entries) {
		// Only fully linked members count.
		ok, err := s.hasEntry(ctx, string(id), domain.TagUserOrganizations, string(orgID))
		if err != nil {
			return nil, err
		}
		if ok {
			members = append(members, id)
		}
	}
	return members, nil
}

func (s *membershipService) Coordinators(ctx context.Context, orgID domain.RecordID) ([]domain.RecordID, error) {
	entries, err := s.store.Entries(ctx, string(orgID), domain.TagOrganizationCoordinators)
	if err != nil {
		return nil, err
	}
	return uniqueTargets(entries), nil
}

// Leave is the self-service exit. The sole coordinator cannot leave unless
// they are also the sole member, in which case leaving tears down the
// organization.
func (s *membershipService) Leave(ctx context.Context, orgID domain.RecordID) error {
	userID, err := s.gate.CallerUser(ctx)
	if err != nil {
		return err
	}
	member, err := s.IsMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !member {
		return domain.NotFoundf("caller is not a member of organization %s", orgID)
	}

	coordinator, err := s.IsCoordinator(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if coordinator {
		coordinators, err := s.Coordinators(ctx, orgID)
		if err != nil {
			return err
		}
		if len(coordinators) <= 1 {
			members, err := s.Members(ctx, orgID)
			if err != nil {
				return err
			}
			if len(members) > 1 {
				return domain.InvariantViolationf("promote another coordinator before leaving organization %s", orgID)
			}
			return s.DeleteOrganization(ctx, orgID)
		}
		if err := s.deleteEntriesTargeting(ctx, string(orgID), domain.TagOrganizationCoordinators, string(userID)); err != nil {
			return err
		}
	}
	return s.deleteMembershipLinks(ctx, orgID, userID)
}

// DeleteOrganization cascades across every index that makes the
// organization reachable. The record bytes stay behind in the fabric; with
// no pointer left to them the organization is gone.
func (s *membershipService) DeleteOrganization(ctx context.Context, orgID domain.RecordID) error {
	if _, err := s.gate.EnsureCoordinator(ctx, orgID); err != nil {
		return err
	}

	// Every member's reverse "my organizations" entry, then the forward side.
	memberEntries, err := s.store.Entries(ctx, string(orgID), domain.TagOrganizationMembers)
	if err != nil {
		return err
	}
	for _, e := range memberEntries {
		if err := s.deleteEntriesTargeting(ctx, e.Target, domain.TagUserOrganizations, string(orgID)); err != nil {
			return err
		}
		if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
			return err
		}
	}

	if err := s.deleteAllEntries(ctx, string(orgID), domain.TagOrganizationCoordinators); err != nil {
		return err
	}

	// Global listing and accepted-entities indices.
	if err := s.deleteEntriesTargeting(ctx, domain.AllEntitiesAnchor(domain.KindOrganization), domain.TagAllEntities, string(orgID)); err != nil {
		return err
	}
	if err := s.deleteEntriesTargeting(ctx, domain.AcceptedAnchor(domain.KindOrganization), domain.TagAcceptedEntity, string(orgID)); err != nil {
		return err
	}

	// Status chain: revision entries first, then the entity→status entry.
	statusEntries, err := s.store.Entries(ctx, string(orgID), domain.TagEntityStatus)
	if err != nil {
		return err
	}
	for _, e := range statusEntries {
		if err := s.deleteAllEntries(ctx, e.Target, domain.TagStatusUpdates); err != nil {
			return err
		}
		if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
			return err
		}
	}

	// Finally the organization's own revision chain.
	return s.deleteAllEntries(ctx, string(orgID), domain.TagEntityUpdates)
}

func (s *membershipService) hasEntry(ctx context.Context, subject string, tag domain.LinkTag, target string) (bool, error) {
	entries, err := s.store.Entries(ctx, subject, tag)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Target == target {
			return true, nil
		}
	}
	return false, nil
}

func (s *membershipService) deleteEntriesTargeting(ctx context.Context, subject string, tag domain.LinkTag, target string) error {
	entries, err := s.store.Entries(ctx, subject, tag)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Target == target {
			if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *membershipService) deleteAllEntries(ctx context.Context, subject string, tag domain.LinkTag) error {
	entries, err := s.store.Entries(ctx, subject, tag)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.store.DeleteEntry(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}
