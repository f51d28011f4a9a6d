package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for callers and the HTTP layer.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindValidation ErrorKind = "VALIDATION"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindConflict   ErrorKind = "CONFLICT"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound   = &DomainError{Kind: KindNotFound}
	ErrValidation = &DomainError{Kind: KindValidation}
	ErrForbidden  = &DomainError{Kind: KindForbidden}
	ErrConflict   = &DomainError{Kind: KindConflict}
)

// DomainError is a caller or input error. It is never retried.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is reports whether target is a DomainError of the same kind.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

// NewValidationError creates an error for malformed or rejected input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewForbiddenError creates an error for an actor lacking rights on a resource.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewConflictError creates an error for a write that lost against current state.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewInvalidStateError creates a conflict error for a disallowed status transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// KindOf returns the kind of err if it wraps a DomainError.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
