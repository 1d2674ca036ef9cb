// Package apperrors holds the error taxonomy shared by repositories,
// services and the HTTP error formatter.
package apperrors

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrForbidden          = errors.New("not authorized to access this resource")
	ErrUnauthorized       = errors.New("not authorized, no token provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrTokenInvalid       = errors.New("not authorized, invalid token")
	ErrTokenExpired       = errors.New("not authorized, token expired")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidID          = errors.New("invalid resource id")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrInvalidRole        = errors.New("invalid role, must be user or admin")
	ErrDuplicateVIN       = errors.New("a car with this VIN already exists")
	ErrUnknownReference   = errors.New("referenced resource does not exist")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level failures detected outside of request
// binding, such as checks that depend on the current time.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Add records a failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no failures were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
