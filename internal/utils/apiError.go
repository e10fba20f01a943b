package utils

import (
	"fmt"
	"net/http"
)

// ApiError is the error type handed from services to handlers. StatusCode and Message are
// safe to show to clients; Err keeps the underlying cause for logs only.
type ApiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
	Success    bool     `json:"success"`
	Err        error    `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

// NewApiError builds an ApiError; details are optional per-field messages.
func NewApiError(statusCode int, message string, details ...string) *ApiError {
	return &ApiError{StatusCode: statusCode, Message: message, Errors: details}
}

// Wrap attaches the underlying cause to the error.
func (e *ApiError) Wrap(err error) *ApiError {
	e.Err = err
	return e
}

func BadRequest(message string, details ...string) *ApiError {
	return NewApiError(http.StatusBadRequest, message, details...)
}

func Unauthorized(message string) *ApiError {
	return NewApiError(http.StatusUnauthorized, message)
}

func NotFound(message string) *ApiError {
	return NewApiError(http.StatusNotFound, message)
}

func Conflict(message string) *ApiError {
	return NewApiError(http.StatusConflict, message)
}

func Internal(message string, err error) *ApiError {
	return NewApiError(http.StatusInternalServerError, message).Wrap(err)
}
