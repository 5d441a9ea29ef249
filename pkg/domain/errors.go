package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these through
// errors.Is so callers can branch on the kind without inspecting messages.
var (
	ErrKindNotFound    = errors.New("not found")
	ErrKindValidation  = errors.New("validation failed")
	ErrKindConflict    = errors.New("conflict")
	ErrKindForbidden   = errors.New("forbidden")
	ErrKindUnavailable = errors.New("unavailable")
)

// Conflict reasons.
const (
	ReasonAlreadyClaimed     = "already claimed"
	ReasonNoPendingClaim     = "no pending claim"
	ReasonDecidedClaim       = "cannot cancel after decision"
	ReasonClaimDecided       = "claim already decided"
	ReasonImmutableLedger    = "ledger entries are immutable"
	ReasonUnknownCollection  = "unknown collection"
	ReasonClaimantMismatch   = "only the claimant can cancel"
	ReasonInvalidNotifAction = "action must be read or delete"
)

// ErrNotFound is returned when a record or collection lookup misses.
type ErrNotFound struct {
	Collection Collection
	ID         int64
}

func (e ErrNotFound) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("collection %s not found", e.Collection)
	}
	return fmt.Sprintf("%s %d not found", e.Collection, e.ID)
}

// Is matches ErrKindNotFound.
func (e ErrNotFound) Is(target error) bool { return target == ErrKindNotFound }

// ValidationError reports a missing field, a wrong type or an out of range value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrKindValidation.
func (e ValidationError) Is(target error) bool { return target == ErrKindValidation }

// ConflictError reports a state transition that the record's current state forbids.
type ConflictError struct {
	Collection Collection
	ID         int64
	Reason     string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Collection, e.ID, e.Reason)
}

// Is matches ErrKindConflict.
func (e ConflictError) Is(target error) bool { return target == ErrKindConflict }

// ForbiddenError reports an actor that may not perform the operation.
type ForbiddenError struct {
	Collection Collection
	ID         int64
	Actor      int64
	Reason     string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("%s %d: user %d: %s", e.Collection, e.ID, e.Actor, e.Reason)
}

// Is matches ErrKindForbidden.
func (e ForbiddenError) Is(target error) bool { return target == ErrKindForbidden }

// UnavailableError wraps a persistence failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e UnavailableError) Unwrap() error { return e.Err }

// Is matches ErrKindUnavailable.
func (e UnavailableError) Is(target error) bool { return target == ErrKindUnavailable }
