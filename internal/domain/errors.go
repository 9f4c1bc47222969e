package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by every component. Services wrap these sentinels
// with a human-readable reason; callers match with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrMalformedState     = errors.New("malformed state")
	ErrPreconditionFailed = errors.New("precondition failed")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func PermissionDeniedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrPermissionDenied)...)
}

func InvariantViolationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvariantViolation)...)
}

func MalformedStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrMalformedState)...)
}

func PreconditionFailedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrPreconditionFailed)...)
}
