package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	// CodeNotFound covers unknown principals. Callers must not distinguish
	// "no such account" from "wrong role" in anything client-facing.
	CodeNotFound Code = "not_found"

	// CodeCredentialMismatch covers a bad secret or a biometric non-match.
	CodeCredentialMismatch Code = "credential_mismatch"

	// CodeGeofenceViolation means the submitted location is outside the
	// permitted range for the principal.
	CodeGeofenceViolation Code = "geofence_violation"

	// CodeInvalidDescriptor means the biometric payload could not be decoded
	// into a non-empty numeric vector.
	CodeInvalidDescriptor Code = "invalid_descriptor"

	// CodeTokenScope covers expired tokens and tokens presented outside the
	// scope, role, or identifier they were issued for.
	CodeTokenScope Code = "token_scope"

	// CodeConfigurationMissing means a required verification input (geofence
	// reference, signing secret) is absent. Verification fails closed.
	CodeConfigurationMissing Code = "configuration_missing"

	// CodeStoreUnavailable is a transient backing-store failure. It is the
	// only code eligible for caller-visible retry guidance.
	CodeStoreUnavailable Code = "store_unavailable"

	CodeBadRequest Code = "bad_request"
	CodeForbidden  Code = "forbidden"
	CodeInternal   Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
