package domain

import (
	"context"
	"errors"
	"net/http"
)

// StatusConnection is the status recorded when no HTTP response was received.
const StatusConnection = 0

// APIError is the normalized failure shape produced at the resource client
// boundary. Status is the backend HTTP status, or StatusConnection when the
// request never got a response.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Predefined errors.
//
// Match them with the Is* helpers rather than errors.Is: the helpers compare
// statuses, so they also match freshly built errors carrying a per-resource
// message.
var (
	ErrValidation   = &APIError{Status: http.StatusBadRequest, Message: "invalid data"}
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &APIError{Status: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound     = &APIError{Status: http.StatusNotFound, Message: "not found"}
	ErrConflict     = &APIError{Status: http.StatusConflict, Message: "conflict: duplicate entry"}
	ErrTooLarge     = &APIError{Status: http.StatusRequestEntityTooLarge, Message: "payload too large"}
	ErrServer       = &APIError{Status: http.StatusInternalServerError, Message: "server error"}
	ErrConnection   = &APIError{Status: StatusConnection, Message: "connection error"}
)

// NewAPIError creates a new APIError with the given status, message, and wrapped error.
func NewAPIError(status int, message string, err error) *APIError {
	return &APIError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether err is or wraps a 400 APIError.
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsUnauthorized reports whether err is or wraps a 401 APIError.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is or wraps a 403 APIError.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNotFound reports whether err is or wraps a 404 APIError.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is or wraps a 409 APIError.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsConnection reports whether err is or wraps an APIError raised without
// any HTTP response.
func IsConnection(err error) bool {
	return hasStatus(err, StatusConnection)
}

// IsAuthFailure reports whether err forces the session to be invalidated.
func IsAuthFailure(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// HTTPStatusCode maps an error to the status the console answers with.
// Backend statuses pass through; connection failures become 502, deadline
// failures 408, anything else 500.
func HTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == StatusConnection:
			return http.StatusBadGateway
		case apiErr.Status >= 400 && apiErr.Status < 600:
			return apiErr.Status
		}
	}
	return http.StatusInternalServerError
}
