package common

import (
	"errors"
	"net/http"
)

// AppError carries a stable error code alongside the message so handlers
// can map failures to HTTP statuses without string matching.
type AppError struct {
	Code    string
	Message string
	Origin  error // original error that caused this one, if any
}

func (e *AppError) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Origin
}

// Standard error codes for the application
const (
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrForbidden       = "FORBIDDEN" // authenticated but not allowed
	ErrBadRequest      = "BAD_REQUEST"
	ErrNotFound        = "NOT_FOUND"
	ErrDuplicate       = "DUPLICATE"

	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrSessionExpired     = "SESSION_EXPIRED"

	ErrStorageUnavailable = "STORAGE_UNAVAILABLE"
)

func NewAppError(code, message string, origin error) *AppError {
	return &AppError{Code: code, Message: message, Origin: origin}
}

func Unauthenticated(reason string) *AppError {
	return &AppError{Code: ErrUnauthenticated, Message: "unauthenticated: " + reason}
}

func Forbidden(reason string) *AppError {
	return &AppError{Code: ErrForbidden, Message: "forbidden: " + reason}
}

func BadRequest(reason string) *AppError {
	return &AppError{Code: ErrBadRequest, Message: reason}
}

func NotFound(what string) *AppError {
	return &AppError{Code: ErrNotFound, Message: what + " not found"}
}

func StorageUnavailable(origin error) *AppError {
	return &AppError{Code: ErrStorageUnavailable, Message: "storage unavailable", Origin: origin}
}

// IsErrorCode reports whether err is an AppError with the given code.
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus maps an error to its HTTP status. Unknown errors are
// treated as server failures.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrInvalidCredentials, ErrUnauthenticated, ErrSessionExpired:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrDuplicate:
		return http.StatusConflict
	case ErrStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
