package failure

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors used with errors.Is.
var (
	// ErrNotFound indicates a record that was expected to exist is gone.
	// Ordinary lookups report absence with a found flag instead.
	ErrNotFound = errors.New("not found")

	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrLogical matches any *LogicalError.
	ErrLogical = errors.New("logical failure")
)

// Kind classifies an error for logging and history records.
type Kind string

const (
	KindNone      Kind = "none"
	KindNotFound  Kind = "not_found"
	KindTransport Kind = "transport"
	KindLogical   Kind = "logical"
	KindOther     Kind = "other"
)

// TransportError reports a network or HTTP-level failure reaching a remote system.
type TransportError struct {
	// Op names the remote operation, e.g. "find asset by serial".
	Op string
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Body holds a truncated response body for diagnostics.
	Body string
	// Err is the underlying network error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport failure"
	}
}

// Unwrap implements errors.Unwrap.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// LogicalError reports an application-level rejection carried inside an
// otherwise successful response.
type LogicalError struct {
	Op       string
	Messages []string
}

// Error implements the error interface.
func (e *LogicalError) Error() string {
	if len(e.Messages) == 0 {
		return e.Op + ": rejected by remote system"
	}
	return fmt.Sprintf("%s: rejected by remote system: %s", e.Op, strings.Join(e.Messages, "; "))
}

// Is implements errors.Is support.
func (e *LogicalError) Is(target error) bool {
	return target == ErrLogical
}

// Contains reports whether any message contains substr, ignoring case.
func (e *LogicalError) Contains(substr string) bool {
	needle := strings.ToLower(substr)
	for _, m := range e.Messages {
		if strings.Contains(strings.ToLower(m), needle) {
			return true
		}
	}
	return false
}

// NewTransport builds a TransportError for a response with an unexpected status.
func NewTransport(op string, statusCode int, body string) *TransportError {
	const maxBody = 512
	if len(body) > maxBody {
		cut := maxBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return &TransportError{Op: op, StatusCode: statusCode, Body: body}
}

// WrapTransport builds a TransportError around a network error.
func WrapTransport(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// NewLogical builds a LogicalError.
func NewLogical(op string, messages ...string) *LogicalError {
	return &LogicalError{Op: op, Messages: messages}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrLogical):
		return KindLogical
	default:
		return KindOther
	}
}

// IsAlreadyCheckedIn reports whether err is the target rejecting a check-in
// because the asset holds no assignment.
func IsAlreadyCheckedIn(err error) bool {
	var le *LogicalError
	if !errors.As(err, &le) {
		return false
	}
	return le.Contains("already checked in")
}
