package shared

import (
	"errors"
	"fmt"
)

// Error codes understood by the HTTP layer
const (
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConflict         = "CONFLICT"
	CodeAlreadyProcessed = "ALREADY_PROCESSED"
	CodeInvalidState     = "INVALID_STATE"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNotFound) regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewForbiddenError creates a FORBIDDEN error
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewValidationError creates a VALIDATION_ERROR error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists    = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized     = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden        = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrConflict         = NewDomainError(CodeConflict, "Resource is in a conflicting state")
	ErrAlreadyProcessed = NewDomainError(CodeAlreadyProcessed, "Transaction already processed")
	ErrInvalidState     = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInternal         = NewDomainError(CodeInternal, "Internal error")
)

// IsNotFound reports whether err carries the NOT_FOUND code
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is one of the conflict family codes
func IsConflict(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case CodeConflict, CodeAlreadyProcessed, CodeInvalidState, CodeAlreadyExists:
		return true
	}
	return false
}
