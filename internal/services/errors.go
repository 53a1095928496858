package services

import (
	"errors"
	"fmt"

	"shootdesk-backend/internal/repository"
	"shootdesk-backend/internal/workflow"
)

var (
	// ErrUnauthorized is returned when no valid session backs a request
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role or ownership does not permit an operation
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing record
	ErrConflict = errors.New("conflict")
)

// ValidationError reports bad caller input. It is raised before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError carries the reason an actor was refused
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// Unwrap lets callers match ErrForbidden
func (e *AuthorizationError) Unwrap() error { return ErrForbidden }

// TransitionError reports a workflow step attempted from the wrong status
type TransitionError struct {
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

// Unwrap lets callers match ErrConflict
func (e *TransitionError) Unwrap() error { return ErrConflict }

// BackendError wraps a store or provider failure
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// backend classifies a repository error for the service layer
func backend(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	}
	return &BackendError{Op: op, Err: err}
}

// guardError turns a failed guard into the matching error kind
func guardError(r workflow.GuardResult) error {
	if r.Allowed {
		return nil
	}
	if r.Invalid {
		return &ValidationError{Message: r.Reason}
	}
	if r.OutOfOrder {
		return &TransitionError{Reason: r.Reason}
	}
	return &AuthorizationError{Reason: r.Reason}
}
