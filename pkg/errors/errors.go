package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error with a stable code and an HTTP status, rendered to API clients by
// pkg/response. Internal carries the underlying cause for logs only.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	default:
		return e.Message
	}
}

// Unwrap exposes Internal to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches by code and status, so derived copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code && e.StatusCode == other.StatusCode
}

// WithInternal returns a copy carrying err as its cause.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy with a different client-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Message = message
	return &cpy
}

// Sentinels shared across the API.
var (
	ErrBadRequest      = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrUnauthorized    = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden       = New("FORBIDDEN", "Permission denied", http.StatusForbidden)
	ErrNotFound        = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict        = New("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrTooManyRequests = New("TOO_MANY_REQUESTS", "Too many requests", http.StatusTooManyRequests)
	ErrInternalServer  = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// New builds an AppError.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// FromError returns the AppError inside err, or ErrInternalServer wrapping err.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest is ErrBadRequest with a specific message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// NewConflict is ErrConflict with a specific message.
func NewConflict(message string) *AppError {
	return ErrConflict.WithMessage(message)
}
