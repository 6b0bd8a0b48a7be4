package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeMissingSelection = "MISSING_SELECTION"
	ErrCodeSamePlayer       = "SAME_PLAYER"
	ErrCodeMissingOutcome   = "MISSING_OUTCOME"
	ErrCodePlayerNotFound   = "PLAYER_NOT_FOUND"
	ErrCodeInvalidName      = "INVALID_NAME"
	ErrCodeConfirmation     = "CONFIRMATION_REQUIRED"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Match recording preconditions. Checked in this order, at most one is reported.
var (
	ErrMissingSelection = &AppError{Code: ErrCodeMissingSelection, Message: "select both players", Status: 400}
	ErrSamePlayer       = &AppError{Code: ErrCodeSamePlayer, Message: "a player cannot play against themselves", Status: 400}
	ErrMissingOutcome   = &AppError{Code: ErrCodeMissingOutcome, Message: "select a match outcome", Status: 400}
	ErrPlayerNotFound   = &AppError{Code: ErrCodePlayerNotFound, Message: "player not found", Status: 404}
	ErrInvalidName      = &AppError{Code: ErrCodeInvalidName, Message: "player name cannot be empty", Status: 400}
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code, so errors.Is works against
// the sentinels even after WithID or wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithID returns a copy of a sentinel whose message names the offending id.
func (e *AppError) WithID(id string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, id),
		Status:  e.Status,
		Err:     e.Err,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewConfirmationError is returned when a destructive action arrives without
// the caller's explicit confirmation.
func NewConfirmationError(action string) *AppError {
	return &AppError{
		Code:    ErrCodeConfirmation,
		Message: fmt.Sprintf("%s requires confirm=true", action),
		Status:  409,
	}
}

// NewUnavailableError is returned when a dependency cannot take more work right now.
func NewUnavailableError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Status:  503,
	}
}
