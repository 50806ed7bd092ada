package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a typed portal error with HTTP awareness.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the portal taxonomy.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "please check the highlighted fields")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrAuth               = New("AUTH_ERROR", http.StatusUnauthorized, "your session has expired, please log in again")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "you are not allowed to perform this action")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "the requested resource was not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "the resource was modified by someone else")
	ErrServer             = New("SERVER_ERROR", http.StatusInternalServerError, "something went wrong, please try again")
	ErrUnavailable        = New("BACKEND_UNAVAILABLE", http.StatusBadGateway, "the server could not be reached, please try again")
)

// FromStatus maps a backend HTTP status to the taxonomy, keeping the backend message.
func FromStatus(status int, message string) *Error {
	var base *Error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrAuth
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusConflict:
		base = ErrConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = ErrValidation
	default:
		base = ErrServer
	}
	clone := Clone(base, strings.TrimSpace(message))
	clone.Status = status
	return clone
}

// Validation builds a validation error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	clone := Clone(ErrValidation, message)
	clone.Fields = fields
	return clone
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrServer.Code, ErrServer.Status, ErrServer.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// UserMessage returns the short text shown next to the failed operation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	appErr := FromError(err)
	if appErr.Message == "" {
		return ErrServer.Message
	}
	return appErr.Message
}

// IsAuth reports whether err means the session is no longer valid.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
