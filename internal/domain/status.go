package domain

import (
	"encoding/json"
	"time"
)

// StatusType enumerates the moderation lifecycle states.
type StatusType string

const (
	StatusPending               StatusType = "pending"
	StatusAccepted              StatusType = "accepted"
	StatusRejected              StatusType = "rejected"
	StatusSuspendedTemporarily  StatusType = "suspended_temporarily"
	StatusSuspendedIndefinitely StatusType = "suspended_indefinitely"
)

// UnsuspendGraceWindow tolerates clock and propagation skew across peers:
// a temporary suspension is considered expired once the current time is
// within this window of the deadline.
const UnsuspendGraceWindow = time.Hour

// Status is the immutable moderation value attached to an entity. A tagged
// struct validated on decode, so an unparseable stored status cannot exist
// past the boundary.
type Status struct {
	Type   StatusType `json:"status_type"`
	Reason string     `json:"reason,omitempty"`
	Until  *time.Time `json:"suspended_until,omitempty"`
}

func PendingStatus() Status {
	return Status{Type: StatusPending}
}

func AcceptedStatus() Status {
	return Status{Type: StatusAccepted}
}

func RejectedStatus() Status {
	return Status{Type: StatusRejected}
}

// SuspendedStatus builds a suspension. A nil until means indefinite.
func SuspendedStatus(reason string, until *time.Time) Status {
	if until == nil {
		return Status{Type: StatusSuspendedIndefinitely, Reason: reason}
	}
	return Status{Type: StatusSuspendedTemporarily, Reason: reason, Until: until}
}

func (s Status) IsSuspended() bool {
	return s.Type == StatusSuspendedTemporarily || s.Type == StatusSuspendedIndefinitely
}

// SuspensionRemaining reports the time left on a temporary suspension.
// The second return is false for every other state.
func (s Status) SuspensionRemaining(now time.Time) (time.Duration, bool) {
	if s.Type != StatusSuspendedTemporarily || s.Until == nil {
		return 0, false
	}
	return s.Until.Sub(now), true
}

// SuspensionExpired reports whether a temporary suspension is past its
// deadline or within the grace window of it.
func (s Status) SuspensionExpired(now time.Time) bool {
	remaining, ok := s.SuspensionRemaining(now)
	if !ok {
		return false
	}
	return remaining < UnsuspendGraceWindow
}

// Validate enforces the tagged-variant shape before a status is stored or
// after one is fetched.
func (s Status) Validate() error {
	switch s.Type {
	case StatusPending, StatusAccepted, StatusRejected:
		if s.Until != nil {
			return MalformedStatef("status %q must not carry a deadline", s.Type)
		}
	case StatusSuspendedTemporarily:
		if s.Until == nil {
			return MalformedStatef("temporary suspension is missing its deadline")
		}
	case StatusSuspendedIndefinitely:
		if s.Until != nil {
			return MalformedStatef("indefinite suspension must not carry a deadline")
		}
	default:
		return MalformedStatef("unknown status type %q", s.Type)
	}
	return nil
}

// DecodeStatus parses a stored status payload and validates it.
func DecodeStatus(payload json.RawMessage) (Status, error) {
	var s Status
	if err := json.Unmarshal(payload, &s); err != nil {
		return Status{}, MalformedStatef("could not decode stored status: %v", err)
	}
	if err := s.Validate(); err != nil {
		return Status{}, err
	}
	return s, nil
}

// EncodeStatus validates and serializes a status for storage.
func EncodeStatus(s Status) (json.RawMessage, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
