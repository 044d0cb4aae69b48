package apiclient

import (
	"errors"
	"fmt"
	"strings"

	"complaintdesk/dashboard/internal/config"
)

// APIError is a non-2xx answer from the complaints server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("complaints api status=%d: %s", e.StatusCode, e.Message)
}

// IsUnauthenticated reports whether err carries the server's "Not authenticated"
// message. The check is on the message, not the status code, since that is the
// only signal the server guarantees.
func IsUnauthenticated(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return strings.Contains(strings.ToLower(msg), strings.ToLower(config.AuthErrorPattern))
}

// Message returns the user-facing part of err: the server message for API
// errors, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
