package shared

import "errors"

// ErrorKind classifies domain errors so callers and the HTTP layer can
// decide between reject, retry and remediation without string matching.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION"
	KindStateConflict ErrorKind = "STATE_CONFLICT"
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConcurrency   ErrorKind = "CONCURRENCY_CONFLICT"
	KindStock         ErrorKind = "INSUFFICIENT_STOCK"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new validation-kind domain error.
// Most ad-hoc guard failures are input problems, so validation is the default.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewStateConflictError creates an error for an operation attempted in the
// wrong aggregate state (illegal transition, export while unpaid, ...)
func NewStateConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindStateConflict, Code: code, Message: message}
}

// NewNotFoundError creates an error for an unknown order/item/account/BOM
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = &DomainError{Kind: KindConcurrency, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrInvalidState        = NewStateConflictError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = &DomainError{Kind: KindStock, Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock available"}
)

// KindOf returns the kind of a domain error, or empty string for non-domain errors
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether the error is a not-found domain error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConcurrencyConflict reports whether the error is a lost optimistic-lock race.
// These are the only errors services retry, and only once.
func IsConcurrencyConflict(err error) bool {
	return KindOf(err) == KindConcurrency
}

// IsStateConflict reports whether the error is a state transition conflict
func IsStateConflict(err error) bool {
	return KindOf(err) == KindStateConflict
}

// IsValidation reports whether the error is a validation failure
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
