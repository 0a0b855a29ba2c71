package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so handlers can map it to a
// transport status without string matching.
type ErrorKind string

const (
	ErrInvalid      ErrorKind = "invalid"
	ErrNotFound     ErrorKind = "not_found"
	ErrConflict     ErrorKind = "conflict"
	ErrForbidden    ErrorKind = "forbidden"
	ErrInvalidState ErrorKind = "invalid_state"
)

// DomainError is the error type returned by orchestrator operations.
// Message names the invariant that blocked the operation.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewInvalid reports malformed input
func NewInvalid(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrInvalid, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound reports a missing booking, room or listing
func NewNotFound(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflict reports insufficient capacity at reservation time
func NewConflict(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NewForbidden reports an actor acting on a record it does not own
func NewForbidden(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidState reports a transition attempted from a state that does
// not permit it (already decided, not yet paid, not awaiting refund).
func NewInvalidState(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err, or an empty kind when err is not
// a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
