package domain

import (
	"fmt"
	"time"
)

// LinkTag types an index entry the way the fabric's link types do.
type LinkTag string

const (
	// Revision chains. Every revision links from the original id, so the
	// chain is flat.
	TagEntityUpdates LinkTag = "entity_updates"
	TagStatusUpdates LinkTag = "status_updates"

	// Entity wiring.
	TagEntityStatus   LinkTag = "entity_status"
	TagAgentEntity    LinkTag = "agent_entity"
	TagAllEntities    LinkTag = "all_entities"
	TagAcceptedEntity LinkTag = "accepted_entity"

	// Administrator registry.
	TagAllAdministrators   LinkTag = "all_administrators"
	TagAgentAdministrators LinkTag = "agent_administrators"

	// Membership graph.
	TagOrganizationMembers      LinkTag = "organization_members"
	TagUserOrganizations        LinkTag = "user_organizations"
	TagOrganizationCoordinators LinkTag = "organization_coordinators"
)

// EntryID identifies one index entry so it can be deleted later.
type EntryID string

// IndexEntry is an append-only (subject, target, tag, timestamp) tuple.
// Entries may arrive out of causal order and may be duplicated; readers
// must treat the returned set as an unordered snapshot.
type IndexEntry struct {
	ID        EntryID   `json:"id"`
	Subject   string    `json:"subject"`
	Target    string    `json:"target"`
	Tag       LinkTag   `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Named collection anchors, kept as explicit helpers instead of ad hoc
// string concatenation at call sites.

func AllEntitiesAnchor(kind EntityKind) string {
	return fmt.Sprintf("%s.all", kind)
}

func AcceptedAnchor(kind EntityKind) string {
	return fmt.Sprintf("%s.status.accepted", kind)
}

func AdministratorsAnchor(kind EntityKind) string {
	return fmt.Sprintf("%s.administrators", kind)
}
