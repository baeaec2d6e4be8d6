package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

// Error codes rendered in {"error":{"code":...}} bodies.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeSessionIncomplete  = "SESSION_INCOMPLETE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError is an error with the code and status the HTTP layer renders.
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewNotFound reports a missing piece of local session state, e.g. "credential".
func NewNotFound(what string, details map[string]any) error {
	return NewDomainError(CodeNotFound, what+" not found", http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewServiceUnavailable wraps a failure of the store or the session authority.
func NewServiceUnavailable(message string, err error) error {
	de := NewDomainError(CodeServiceUnavailable, message, http.StatusServiceUnavailable, nil)
	de.Err = err
	return de
}

func NewInternalError(err error) error {
	de := NewDomainError(CodeInternal, "internal server error", http.StatusInternalServerError, nil)
	de.Err = err
	return de
}

// sentinels maps the session core's error taxonomy onto HTTP responses.
var sentinels = []struct {
	target  error
	code    string
	message string
	status  int
}{
	{domain.ErrNotFound, CodeNotFound, "resource not found", http.StatusNotFound},
	{domain.ErrSessionIncomplete, CodeSessionIncomplete, "session is not established", http.StatusUnauthorized},
	{domain.ErrRemoteCheckFailed, CodeServiceUnavailable, "session authority unavailable", http.StatusServiceUnavailable},
}

// ToDomainError converts err to a DomainError. Unrecognized errors become
// INTERNAL_ERROR with err kept as the cause.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			de := NewDomainError(s.code, s.message, s.status, nil)
			de.Err = err
			return de
		}
	}
	return NewInternalError(err).(*DomainError)
}
