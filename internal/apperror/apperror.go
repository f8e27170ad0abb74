// Package apperror defines the application error taxonomy and its mapping to
// HTTP status codes, so services can express outcomes without knowing about
// the transport layer.
package apperror

import (
	"errors"
	"net/http"
)

// ErrorType categorizes an application error.
type ErrorType int

const (
	// InternalError is a generic server-side failure.
	InternalError ErrorType = iota
	// DatabaseError originates from the persistence layer.
	DatabaseError
	// AuthError covers bad credentials, invalid tokens and ownership denial.
	// It is deliberately undifferentiated to avoid information leakage.
	AuthError
	// NotFoundError covers both missing resources and resources outside the
	// caller's scope.
	NotFoundError
	// ValidationError is malformed or out-of-range input.
	ValidationError
	// BadRequestError is a request the server could not interpret at all.
	BadRequestError
	// ConflictError is a duplicate unique key.
	ConflictError
)

// AppError is the error type returned by services. Message is safe to show to
// clients; Err holds the underlying cause for logs only. Reasons enumerates
// every validation rule a payload violated.
type AppError struct {
	Type    ErrorType
	Message string
	Reasons []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAuthError creates an AuthError.
func NewAuthError(message string, err error) *AppError {
	return &AppError{Type: AuthError, Message: message, Err: err}
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Type: NotFoundError, Message: message, Err: err}
}

// NewValidationError creates a ValidationError listing every violation found.
func NewValidationError(message string, reasons []string) *AppError {
	return &AppError{Type: ValidationError, Message: message, Reasons: reasons}
}

// NewBadRequestError creates a BadRequestError.
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{Type: BadRequestError, Message: message, Err: err}
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string, err error) *AppError {
	return &AppError{Type: ConflictError, Message: message, Err: err}
}

// NewDatabaseError creates a DatabaseError. The underlying cause is never
// serialized outward.
func NewDatabaseError(message string, err error) *AppError {
	return &AppError{Type: DatabaseError, Message: message, Err: err}
}

// NewInternalError creates an InternalError.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: InternalError, Message: message, Err: err}
}

// ErrorResponse is the JSON shape of an error reply.
type ErrorResponse struct {
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// ToResponse converts the error to its client-facing payload. Underlying
// causes stay out of the response.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message, Reasons: e.Reasons}
}

// FromError extracts an *AppError from an error chain.
func FromError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound checks whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks whether err is an AuthError.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError checks whether err is a ValidationError.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflict checks whether err is a ConflictError.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}
