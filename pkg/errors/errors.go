package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes the client distinguishes.
var (
	// ErrUnauthenticated means no credential is available or the backend
	// rejected the one presented. The caller redirects to login, optionally
	// capturing a pending intent.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrValidation means a required field is missing or malformed. No
	// network call was made.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers duplicate-resource responses such as an already
	// subscribed newsletter email. Surfaced as a soft notice.
	ErrConflict = errors.New("conflict")

	// ErrNotFound means the backend has no such resource.
	ErrNotFound = errors.New("resource not found")

	// ErrUnavailable covers transport failures and server errors. Cart
	// mutations fall back to rollback-or-refetch on this class.
	ErrUnavailable = errors.New("service unavailable")

	// ErrRedirectLoss means the return from the payment gateway lacked the
	// verification reference or the persisted order id.
	ErrRedirectLoss = errors.New("payment redirect state lost")
)

// AppError is a structured error carrying the failure class, a user-facing
// message, and the HTTP status that produced it (zero when no response was
// received).
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Fields  map[string]string
	Err     error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthenticated creates an error for a missing or rejected credential.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHENTICATED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// Validation creates a field-level validation error. fields maps field names
// to messages and may be nil for a single-message error.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    "VALIDATION",
		Message: message,
		Status:  http.StatusBadRequest,
		Fields:  fields,
		Err:     ErrValidation,
	}
}

// Conflict creates a duplicate-resource error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// NotFound creates an error for a missing backend resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Unavailable creates an error for a transport or server failure.
func Unavailable(message string) *AppError {
	return &AppError{
		Code:    "UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrUnavailable,
	}
}

// RedirectLoss creates an error for a gateway return missing its state.
func RedirectLoss(message string) *AppError {
	return &AppError{
		Code:    "REDIRECT_LOSS",
		Message: message,
		Err:     ErrRedirectLoss,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsRecoverable reports whether the error leaves the client in a usable
// state: the user sees a notice and the UI converges back to server truth.
// Nothing in this client is fatal to the process, but redirect loss and
// authentication failures require a navigational fallback rather than a
// plain retry.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}
