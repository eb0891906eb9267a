// Package models defines domain entities for the task backend.
// This file contains the typed error kinds surfaced by the service layer.
package models

import "errors"

// ErrorKind classifies a service-layer failure. The HTTP layer maps each
// kind to a status code; callers must branch on the kind, never on the
// message text.
type ErrorKind int

const (
	// KindNotFound - an entity referenced by id does not exist
	KindNotFound ErrorKind = iota

	// KindInsufficientPrivilege - the entity exists but the caller lacks the required role
	KindInsufficientPrivilege

	// KindValidation - malformed input (empty description/content, non-numeric id)
	KindValidation

	// KindConflict - duplicate group name, user already a member, already related
	KindConflict

	// KindServer - unexpected store failure
	KindServer
)

// String returns the kind's canonical name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInsufficientPrivilege:
		return "insufficient_privilege"
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	default:
		return "server_error"
	}
}

// Error is the typed failure returned by every service operation. The
// message is safe to surface to the client.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying store error, if any, for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewNotFound returns a NotFound error with the given message.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewInsufficientPrivilege returns an InsufficientPrivilege error.
// Authorization failures are deliberately indistinguishable in kind from
// "does not apply" cases; callers treat them uniformly.
func NewInsufficientPrivilege(message string) *Error {
	return &Error{Kind: KindInsufficientPrivilege, Message: message}
}

// NewValidation returns a ValidationError with the given message.
func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewConflict returns a Conflict error with the given message.
func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewServerError wraps an unexpected store failure. The client-facing
// message stays generic; the cause is preserved for logging.
func NewServerError(cause error) *Error {
	return &Error{Kind: KindServer, Message: "internal server error", cause: cause}
}

// KindOf extracts the error kind from err. Untyped errors are classified as
// server errors so an unexpected failure never masquerades as a domain
// outcome.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
