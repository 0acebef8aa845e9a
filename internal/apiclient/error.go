package apiclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	domainerrors "github.com/listenupapp/movienight/internal/errors"
)

// Error is a failed backend call. Status is 0 for transport failures.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string

	// fromBody is set when Message came from the response payload rather
	// than the status line.
	fromBody bool
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap returns the transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches the internal/errors sentinel for the status, so callers can
// write errors.Is(err, errors.ErrForbidden).
func (e *Error) Is(target error) bool {
	var t *domainerrors.Error
	if !domainerrors.As(target, &t) {
		return false
	}
	return domainerrors.FromStatus(e.Status) == t.Code
}

// StatusCode returns the HTTP status, 0 for transport failures.
func (e *Error) StatusCode() int { return e.Status }

// ServerMessage returns the message the backend put in its error payload,
// or "" when the payload carried none.
func (e *Error) ServerMessage() string {
	if !e.fromBody {
		return ""
	}
	return e.Message
}

func transportError(method, path string, err error) *Error {
	return &Error{Method: method, Path: path, Message: err.Error(), cause: err}
}

// statusError builds the error for a non-2xx response. The message is the
// payload's "message" field, then its "error" field, then the status line.
func statusError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status}

	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"message", "error"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				e.Message = s
				e.fromBody = true
				return e
			}
		}
	}

	e.Message = fmt.Sprintf("%d %s", status, http.StatusText(status))
	return e
}
