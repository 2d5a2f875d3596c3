package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeUnbalancedEntry is used when a journal entry's debits and credits differ
	ErrCodeUnbalancedEntry = "ERR_UNBALANCED_ENTRY"
	// ErrCodeReconciliationConflict is used when a transaction is already
	// reconciled against a different statement reference
	ErrCodeReconciliationConflict = "ERR_RECONCILIATION_CONFLICT"
	// ErrCodeReconciledEntry is used when deleting would disturb reconciled history
	ErrCodeReconciledEntry = "ERR_RECONCILED_ENTRY"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:    http.StatusUnprocessableEntity,
	ErrCodeUnbalancedEntry: http.StatusUnprocessableEntity,

	// Reconciliation conflicts -> 409 Conflict
	ErrCodeReconciliationConflict: http.StatusConflict,
	ErrCodeReconciledEntry:        http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := DomainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes. Domain codes not listed here pass through unchanged and
// resolve via DomainCodeHTTPStatus, or 500 by default.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"CONFLICT":                ErrCodeConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNBALANCED_ENTRY":        ErrCodeUnbalancedEntry,
	"RECONCILIATION_CONFLICT": ErrCodeReconciliationConflict,
	"RECONCILED_ENTRY":        ErrCodeReconciledEntry,
	"RECONCILED_TRANSACTION":  ErrCodeReconciledEntry,
	"DUPLICATE_ACCOUNT_CODE":  ErrCodeAlreadyExists,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// DomainCodeHTTPStatus maps domain error codes that keep their own code on
// the wire to HTTP status codes.
var DomainCodeHTTPStatus = map[string]int{
	"INVALID_ACCOUNT_CODE":   http.StatusBadRequest,
	"INVALID_ACCOUNT_NAME":   http.StatusBadRequest,
	"INVALID_ACCOUNT_TYPE":   http.StatusBadRequest,
	"INVALID_ENTRY_TYPE":     http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_DATE":           http.StatusBadRequest,
	"INVALID_LINE":           http.StatusBadRequest,
	"INVALID_ENTITY":         http.StatusBadRequest,
	"INVALID_BANK_ACCOUNT":   http.StatusBadRequest,
	"INVALID_BANK_NAME":      http.StatusBadRequest,
	"INVALID_ACCOUNT_NUMBER": http.StatusBadRequest,
	"INVALID_PARENT":         http.StatusBadRequest,
	"INSUFFICIENT_LINES":     http.StatusUnprocessableEntity,
	"ACCOUNT_CYCLE":          http.StatusUnprocessableEntity,
	"UNKNOWN_ACCOUNT":        http.StatusUnprocessableEntity,
	"INACTIVE_ACCOUNT":       http.StatusUnprocessableEntity,
}

// NormalizeErrorCode converts a domain error code to the standardized format.
// If the code has no mapping, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
