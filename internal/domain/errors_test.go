package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "with wrapped error",
			err:  &APIError{Status: http.StatusNotFound, Message: "company not found", Err: errors.New("404 Not Found")},
			want: "company not found: 404 Not Found",
		},
		{
			name: "without wrapped error",
			err:  &APIError{Status: http.StatusNotFound, Message: "company not found"},
			want: "company not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	apiErr := NewAPIError(StatusConnection, "connection error", inner)

	if !errors.Is(apiErr, inner) {
		t.Error("Unwrap() should allow errors.Is to find wrapped error")
	}
	if (&APIError{Message: "no wrap"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checkFn func(error) bool
	}{
		{"ErrValidation", ErrValidation, IsValidation},
		{"ErrUnauthorized", ErrUnauthorized, IsUnauthorized},
		{"ErrForbidden", ErrForbidden, IsForbidden},
		{"ErrNotFound", ErrNotFound, IsNotFound},
		{"ErrConflict", ErrConflict, IsConflict},
		{"ErrConnection", ErrConnection, IsConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.checkFn(tt.err) {
				t.Errorf("check function should return true for %s", tt.name)
			}
			wrapped := fmt.Errorf("list companies: %w", tt.err)
			if !tt.checkFn(wrapped) {
				t.Errorf("check function should see through wrapping for %s", tt.name)
			}
		})
	}
}

func TestIsAuthFailure(t *testing.T) {
	if !IsAuthFailure(ErrUnauthorized) || !IsAuthFailure(ErrForbidden) {
		t.Error("401 and 403 should both be auth failures")
	}
	if IsAuthFailure(ErrNotFound) {
		t.Error("404 should not be an auth failure")
	}
	if IsAuthFailure(errors.New("plain")) {
		t.Error("plain errors should not be auth failures")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrValidation, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"conflict", ErrConflict, http.StatusConflict},
		{"too large", ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"server", ErrServer, http.StatusInternalServerError},
		{"connection", ErrConnection, http.StatusBadGateway},
		{"deadline", NewAPIError(StatusConnection, "connection error", context.DeadlineExceeded), http.StatusRequestTimeout},
		{"odd status", NewAPIError(302, "found", nil), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}
