// Package errors defines the storefront's error taxonomy and how each class
// of error is presented to HTTP clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrRateLimited    = errors.New("rate limited")
)

// AppError is an error that already knows its public code, message and
// status. Err is kept for errors.Is and logging only.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// class describes how a sentinel is shown to clients. An empty message means
// the wrapped error's own text is safe to show.
type class struct {
	sentinel error
	code     string
	status   int
	message  string
}

var classes = []class{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound, "resource not found"},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest, ""},
	{ErrConflict, "CONFLICT", http.StatusConflict, ""},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "a dependency is unavailable"},
	{ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests, "too many requests"},
}

var internal = class{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError, "an internal error occurred"}

func classify(err error) class {
	for _, c := range classes {
		if errors.Is(err, c.sentinel) {
			return c
		}
	}
	return internal
}

// NotFound reports a missing resource by kind and id.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput reports a request the caller must change before retrying.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Describe returns err as an AppError. Plain errors are classified by the
// sentinel they wrap; anything unrecognized becomes an opaque internal error.
func Describe(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	c := classify(err)
	msg := c.message
	if msg == "" {
		msg = err.Error()
	}
	return &AppError{Code: c.code, Message: msg, Status: c.status, Err: err}
}

// HTTPStatus returns the status code a client should see for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return classify(err).status
}
