package errors

import (
	"context"
	"errors"
)

// UserMessage returns the banner text shown to a user for err.
//
// Forbidden and conflict failures carry rules the server enforces (pool
// quota, wrong phase, duplicate vote), so the server's own message is shown
// verbatim when there is one.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "The request was canceled."
	}

	msg := messageOf(err)
	switch CodeOf(err) {
	case CodeValidation:
		return orDefault(msg, "Some of the information you entered is invalid.")
	case CodeUnauthorized:
		return "Your session has expired. Please log in again."
	case CodeForbidden:
		return orDefault(msg, "You are not allowed to do that.")
	case CodeNotFound:
		return orDefault(msg, "The requested item could not be found.")
	case CodeConflict:
		return orDefault(msg, "That action conflicts with the current state of the group.")
	case CodeNetwork:
		return "Could not reach the server. Check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func messageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var m interface{ ServerMessage() string }
	if errors.As(err, &m) {
		return m.ServerMessage()
	}
	return ""
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
