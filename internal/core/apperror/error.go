// Package apperror provides structured error handling.
// All business errors use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by subsystem.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Generic validation (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Choice registry (startup)
	CodeDuplicateRelation = "DUPLICATE_RELATION"
	CodeInvalidTarget     = "INVALID_TARGET"
	CodeUnknownField      = "UNKNOWN_FIELD"
	CodeNotRegistered     = "NOT_REGISTERED"
	CodeMissingValues     = "MISSING_VALUES"
	CodeMissingFields     = "MISSING_FIELDS"

	// Column descriptor save
	CodeInconsistentRelation = "INCONSISTENT_RELATION"
	CodeUnknownValueType     = "UNKNOWN_VALUE_TYPE"

	// Dynamic value write path
	CodeUnknownSlug      = "UNKNOWN_SLUG"
	CodeEmptyValue       = "EMPTY_VALUE"
	CodeBadInput         = "BAD_INPUT"
	CodeUnknownReference = "UNKNOWN_REFERENCE"
	CodeBadDate          = "BAD_DATE"

	// Dynamic value read path
	CodeBadStoredValue = "BAD_STORED_VALUE"

	// Storage invariants
	CodeDuplicateValueRow = "DUPLICATE_VALUE_ROW"
	CodeCollectionMissing = "COLLECTION_MISSING"

	// Authorization (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict               = "CONFLICT"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError is the standard error type for the service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, slugs, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// New creates an AppError with an explicit code and status.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// NewBadInput creates a dynamic-value coercion error (400).
func NewBadInput(slug string, value any) *AppError {
	return New(CodeBadInput, fmt.Sprintf("value not valid for column %q", slug), http.StatusBadRequest).
		WithDetail("slug", slug).
		WithDetail("value", fmt.Sprintf("%v", value))
}

// NewBadStoredValue signals data corruption or a post-hoc type change (500).
func NewBadStoredValue(slug, stored string) *AppError {
	return New(CodeBadStoredValue, fmt.Sprintf("stored value for column %q cannot be interpreted", slug), http.StatusInternalServerError).
		WithDetail("slug", slug).
		WithDetail("stored", stored)
}

// NewUnknownSlug creates an error for a slug outside the host's collection (400).
func NewUnknownSlug(slug string) *AppError {
	return New(CodeUnknownSlug, fmt.Sprintf("no dynamic column with slug %q in this collection", slug), http.StatusBadRequest).
		WithDetail("slug", slug)
}

// NewEmptyValue rejects empty writes made without force (400).
func NewEmptyValue(slug string) *AppError {
	return New(CodeEmptyValue, fmt.Sprintf("empty value rejected for column %q", slug), http.StatusBadRequest).
		WithDetail("slug", slug)
}

// NewCollectionMissing is raised when a host record has no usable collection (422).
func NewCollectionMissing(hostType string) *AppError {
	return New(CodeCollectionMissing, fmt.Sprintf("no active column collection for %q", hostType), http.StatusUnprocessableEntity).
		WithDetail("host_type", hostType)
}

// NewDuplicateValueRow reports a duplicate (record, column) value row (409).
func NewDuplicateValueRow(recordID, columnID int64) *AppError {
	return New(CodeDuplicateValueRow, "duplicate value row for record and column", http.StatusConflict).
		WithDetail("record_id", recordID).
		WithDetail("column_id", columnID)
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// NewForbidden creates an authorization error (403).
func NewForbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewConcurrentModification creates an optimistic locking error (409).
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode checks if error carries a specific code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
