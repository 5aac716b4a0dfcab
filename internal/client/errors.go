package client

import (
	"encoding/json"
	"maps"
	"net/http"
	"strings"

	"github.com/simp-lee/amcham/internal/domain"
)

// Messages maps a backend status to the user-facing message. Status 0 is
// used for transport failures and for any status without an entry.
type Messages map[int]string

// DefaultMessages is the table shared by all resources.
var DefaultMessages = Messages{
	http.StatusBadRequest:            domain.ErrValidation.Message,
	http.StatusUnauthorized:          domain.ErrUnauthorized.Message,
	http.StatusForbidden:             domain.ErrForbidden.Message,
	http.StatusNotFound:              domain.ErrNotFound.Message,
	http.StatusConflict:              domain.ErrConflict.Message,
	http.StatusRequestEntityTooLarge: domain.ErrTooLarge.Message,
	http.StatusInternalServerError:   domain.ErrServer.Message,
	domain.StatusConnection:          domain.ErrConnection.Message,
}

// With returns a copy of DefaultMessages overlaid with overrides.
func (m Messages) With(overrides Messages) Messages {
	out := maps.Clone(m)
	if out == nil {
		out = Messages{}
	}
	maps.Copy(out, overrides)
	return out
}

// For returns the message for status.
func (m Messages) For(status int) string {
	if msg, ok := m[status]; ok {
		return msg
	}
	if msg, ok := m[domain.StatusConnection]; ok {
		return msg
	}
	return domain.ErrConnection.Message
}

// normalize turns a non-2xx response into an APIError. A 400 carries the
// backend's own message when the payload has one.
func normalize(status int, body []byte, messages Messages) *domain.APIError {
	msg := messages.For(status)
	detail := payloadMessage(body)
	if status == http.StatusBadRequest && detail != "" {
		msg = detail
	}

	var cause error
	if detail != "" {
		cause = &backendError{status: status, message: detail}
	} else {
		cause = &backendError{status: status, message: http.StatusText(status)}
	}
	return domain.NewAPIError(status, msg, cause)
}

// backendError is the original error kept inside an APIError.
type backendError struct {
	status  int
	message string
}

func (e *backendError) Error() string {
	return "backend responded " + http.StatusText(e.status) + ": " + e.message
}

func payloadMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string   `json:"message"`
		Error   string   `json:"error"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case strings.TrimSpace(payload.Message) != "":
		return strings.TrimSpace(payload.Message)
	case len(payload.Errors) > 0:
		return strings.Join(payload.Errors, "; ")
	default:
		return strings.TrimSpace(payload.Error)
	}
}
