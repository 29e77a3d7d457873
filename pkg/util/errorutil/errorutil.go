package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeMissingProof        = "MISSING_RESOLUTION_PROOF"
	CodeDuplicateCandidates = "DUPLICATE_CANDIDATES_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewInvalidTransition reports an illegal status jump with the valid options.
func NewInvalidTransition(current string, allowed []string, err error) error {
	if allowed == nil {
		allowed = []string{}
	}
	return &DomainError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("transition not allowed from current status %q", current),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"current_status": current,
			"allowed":        allowed,
		},
		Err: err,
	}
}

// NewMissingResolutionProof is returned when Resolved is requested without a photo.
func NewMissingResolutionProof(err error) error {
	return &DomainError{
		Code:       CodeMissingProof,
		Message:    "a photo is required to mark this resolved",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

// NewDuplicateCandidates surfaces similar complaints as a choice for the caller.
func NewDuplicateCandidates(candidates any) error {
	return &DomainError{
		Code:       CodeDuplicateCandidates,
		Message:    "a similar issue already exists - upvote instead or report anyway",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"candidates": candidates},
	}
}

func NewTooManyRequests(message string, details map[string]any) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
