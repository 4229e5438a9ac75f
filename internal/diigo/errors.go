package diigo

import (
	"errors"
	"fmt"
)

// Kind tags the failure class of an API operation. Every public
// operation reduces to either a payload or exactly one of these kinds;
// distinct failure classes are never collapsed into one string.
type Kind string

const (
	// KindValidation marks bad input caught before any network call.
	KindValidation Kind = "validation"
	// KindAuthentication marks an HTTP 401 (terminal, never retried).
	KindAuthentication Kind = "authentication"
	// KindForbidden marks an HTTP 403 (terminal).
	KindForbidden Kind = "forbidden"
	// KindNotFound marks an HTTP 404 or a local lookup miss.
	KindNotFound Kind = "not_found"
	// KindTransient marks 400/503/timeout failures that exhausted the
	// retry budget.
	KindTransient Kind = "transient"
	// KindTransport marks a non-timeout network fault (terminal).
	KindTransport Kind = "transport"
	// KindUnexpectedStatus marks any other HTTP status.
	KindUnexpectedStatus Kind = "unexpected_status"
)

// Error is the typed failure value surfaced by the client and the
// orchestrator.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when one was received, else 0
	Message string
	Err     error // underlying transport fault, when any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, or "" for non-API errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NewValidationError builds a validation failure; it never reaches the
// network.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError builds a local lookup miss.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// terminalStatusError maps a non-retryable HTTP status to its typed error.
func terminalStatusError(status int, body string) *Error {
	switch status {
	case 401:
		return &Error{Kind: KindAuthentication, Status: status, Message: fmt.Sprintf("Authentication failed: %s", body)}
	case 403:
		return &Error{Kind: KindForbidden, Status: status, Message: fmt.Sprintf("Access forbidden: %s", body)}
	case 404:
		return &Error{Kind: KindNotFound, Status: status, Message: fmt.Sprintf("Resource not found: %s", body)}
	default:
		return &Error{Kind: KindUnexpectedStatus, Status: status, Message: fmt.Sprintf("HTTP %d: %s", status, body)}
	}
}
