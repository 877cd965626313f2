// internal/utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrEmailExists       = errors.New("email_exists")
	ErrInvalidRampHeight = errors.New("invalid_ramp_height")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTimeline   = errors.New("invalid_timeline")
	ErrPricingRequired   = errors.New("pricing_required")
	ErrPricingIncomplete = errors.New("pricing_incomplete")
	ErrQuoteHasAgreement = errors.New("quote_has_agreement")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (SendGrid, Twilio, upstream proxy targets)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries a structured failure from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}

// NewNotFoundError, NewBadRequestError and NewInternalError cover the shapes
// services return most often.
func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

func NewBadRequestError(code, message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: code, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeInternal, Message: message, Err: err}
}
