package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
	ErrInternal     = errors.New("internal server error")
	ErrUnauthorized = errors.New("unauthorized")
)

// Resource names used with NewNotFound.
const (
	ResourceUser    = "User"
	ResourceProfile = "UserProfile"
	ResourceItem    = "Item"
	ResourceImage   = "ProfileImage"
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

// Cause returns the wrapped low-level error, if any.
func (e *AppError) Cause() error {
	return e.Err
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

// NewValidation reports a record that is missing fields with no legal default.
func NewValidation(details string, err error) *AppError {
	msg := "Validation failed"
	if err != nil {
		msg = fmt.Sprintf("Validation failed: %s", err.Error())
	}
	return NewAppError(ErrInvalidInput, msg, details, err)
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

// NewVersionConflict is returned when a write was based on a stale version.
func NewVersionConflict(resource string, expected int64) *AppError {
	msg := fmt.Sprintf("%s was modified concurrently, reload and retry", resource)
	details := fmt.Sprintf("%s is no longer at version %d", resource, expected)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewPersistence(details string, err error) *AppError {
	return NewAppError(ErrPersistence, "A storage error occurred", details, err)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

// IsNotFound reports whether err is a not-found error for the given resource.
// An empty resource matches any not-found error.
func IsNotFound(err error, resource string) bool {
	if !errors.Is(err, ErrNotFound) {
		return false
	}
	if resource == "" {
		return true
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message == fmt.Sprintf("%s not found", resource)
	}
	return false
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}
