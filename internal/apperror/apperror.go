package apperror

import (
	"errors"
	"net/http"
)

// Sentinel causes, matchable with errors.Is through an AppError.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("resource already exists")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")

	// ErrDuplicateOrderID is returned by persistence when an insert hits the
	// orders.order_id unique constraint. It never reaches a caller.
	ErrDuplicateOrderID = errors.New("order id already taken")
)

// Error codes rendered to clients.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError carries an HTTP status and a client-safe message alongside the cause.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError
func New(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message, ErrValidation)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, CodeTooManyRequests, message, ErrTooManyRequests)
}

// Internal wraps an unexpected failure. The message is always generic; the
// cause stays available for logging via Unwrap.
func Internal(err error) *AppError {
	if err == nil {
		err = ErrInternal
	}
	return New(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// From converts any error into an AppError, treating unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
