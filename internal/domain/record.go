package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// RecordID is the content address of an immutable record. An entity's
// identity for external purposes is the id of its first record ("original
// id"); revisions create new records and new ids, never mutate old ones.
type RecordID string

// PrincipalID identifies the peer key that authored a record.
type PrincipalID string

// EntityKind tags the moderated entity types.
type EntityKind string

const (
	KindUser         EntityKind = "user"
	KindOrganization EntityKind = "organization"
	KindStatus       EntityKind = "status"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindUser, KindOrganization, KindStatus:
		return true
	}
	return false
}

// Record is an immutable, content-addressed entry in the fabric.
type Record struct {
	ID         RecordID        `json:"id"`
	Kind       EntityKind      `json:"kind"`
	Author     PrincipalID     `json:"author"`
	Payload    json.RawMessage `json:"payload"`
	RevisionOf RecordID        `json:"revision_of,omitempty"`
	Nonce      string          `json:"nonce"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Address derives the record's content address over its envelope. The nonce
// keeps two writes of the same payload by the same author distinct.
func (r *Record) Address() RecordID {
	h := sha256.New()
	h.Write([]byte(r.Kind))
	h.Write([]byte(r.Author))
	h.Write(r.Payload)
	h.Write([]byte(r.RevisionOf))
	h.Write([]byte(r.Nonce))
	return RecordID(hex.EncodeToString(h.Sum(nil)))
}
