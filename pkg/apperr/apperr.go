package apperr

import "fmt"

// FieldErrors collects per-field validation failures. All violations for a
// request are gathered and returned together, keyed by field name.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e))
}

// InvalidError marks a single-message, user-fixable validation failure (400).
type InvalidError struct {
	Msg string
}

func (e *InvalidError) Error() string { return e.Msg }

// Invalid builds an InvalidError.
func Invalid(msg string) error { return &InvalidError{Msg: msg} }

// NotFoundError marks a missing referenced entity (404).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFound builds a NotFoundError.
func NotFound(msg string) error { return &NotFoundError{Msg: msg} }

// ConflictError marks a business-rule violation such as the daily booking cap
// or a duplicate email (400 with a specific message).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError.
func Conflict(msg string) error { return &ConflictError{Msg: msg} }

// AuthError marks an unauthenticated or unauthorized request. Resolution
// failures degrade to an anonymous actor instead of raising; this type is for
// operations that demand an identity the caller does not have.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// Unauthorized builds an AuthError.
func Unauthorized(msg string) error { return &AuthError{Msg: msg} }
