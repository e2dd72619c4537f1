package ferrors

import (
	"errors"
	"fmt"
)

// Error handling for the fiberwatch client.
//
// Every failure talking to the backend falls into one of three kinds.
// Callers collapse them into a single handling path per flow, but the kind
// is kept for logs and metrics.

// Kind classifies a backend failure.
type Kind int

const (
	// KindTransport means the request could not be sent or the response not received.
	KindTransport Kind = iota + 1
	// KindStatus means the backend answered with a non-2xx status.
	KindStatus
	// KindDecode means the payload was not in the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Common error variables
var (
	ErrTransport   = errors.New("transport error")
	ErrStatus      = errors.New("unexpected status")
	ErrDecode      = errors.New("malformed payload")
	ErrInvalidData = errors.New("invalid data")
)

// Error is a classified backend failure.
type Error struct {
	Kind       Kind
	Op         string // e.g. "GET /api/data/stats"
	StatusCode int    // set for KindStatus
	Body       string // truncated response body for KindStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers can write errors.Is(err, ErrStatus).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// Transport returns a KindTransport error.
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Status returns a KindStatus error.
func Status(op string, code int, body string) *Error {
	return &Error{Kind: KindStatus, Op: op, StatusCode: code, Body: body}
}

// Decode returns a KindDecode error.
func Decode(op string, err error) *Error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// Wrap wraps an error with a message
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is checks if an error matches a target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As extracts an error of a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
