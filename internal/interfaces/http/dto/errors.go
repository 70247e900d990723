package dto

import "net/http"

// Error codes sent to clients. Format: ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	// ErrCodeAlreadyProcessed is returned when a transaction has left pending
	ErrCodeAlreadyProcessed = "ERR_ALREADY_PROCESSED"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
)

// Transport error codes
const (
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Every state conflict on a transaction or commission is a 409
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeAlreadyProcessed: http.StatusConflict,
	ErrCodeInvalidState:     http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps shared.DomainError codes to client codes
var domainCodeMapping = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"FORBIDDEN":         ErrCodeForbidden,
	"UNAUTHORIZED":      ErrCodeUnauthorized,
	"CONFLICT":          ErrCodeConflict,
	"ALREADY_PROCESSED": ErrCodeAlreadyProcessed,
	"INVALID_STATE":     ErrCodeInvalidState,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"ALREADY_EXISTS":    ErrCodeAlreadyExists,
	"INTERNAL_ERROR":    ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its client code.
// Codes already in client form, or unknown, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if c, ok := domainCodeMapping[code]; ok {
		return c
	}
	return code
}
