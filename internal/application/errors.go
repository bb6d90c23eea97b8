package application

import (
	"errors"
	"fmt"

	"github.com/example/conference-hub/internal/conflict"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing
	// record.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for failed login attempts.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled account attempts login.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when a login session's lifetime has passed.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a login session has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Batch operations prefix keys with the offending session's
// position, e.g. "sessions[2].endTime".
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error, keeping the first message per
// field.
func (v *ValidationError) Add(field, message string) {
	v.add(field, message)
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, ok := v.FieldErrors[field]; !ok {
		v.FieldErrors[field] = message
	}
}

// ConflictError signals that a create was blocked by overlapping bookings.
// It is distinct from validation failure so transports can answer with 409
// and an override affordance. CommittedIDs names sessions of the same batch
// that were already persisted before the halt.
type ConflictError struct {
	SessionTitle string
	Conflicts    []conflict.Conflict
	CommittedIDs []string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("scheduling conflict for session %q", c.SessionTitle)
}
