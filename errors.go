package rayforce

import (
	"errors"
	"fmt"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// ErrorKind categorizes every failure the binding surfaces. Engine statuses
// map onto the first six kinds; ErrBindingInternal marks a marshalling
// mismatch between the binding and the engine and is never produced by the
// engine itself.
type ErrorKind int

const (
	ErrInvalidArgument ErrorKind = iota
	ErrNotFound
	ErrResourceExhausted
	ErrEngineInternal
	ErrUnsupported
	ErrCancelled
	ErrBindingInternal
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNotFound:
		return "not found"
	case ErrResourceExhausted:
		return "resource exhausted"
	case ErrEngineInternal:
		return "engine internal"
	case ErrUnsupported:
		return "unsupported"
	case ErrCancelled:
		return "cancelled"
	case ErrBindingInternal:
		return "binding internal"
	default:
		return "unknown"
	}
}

// Error is the typed error every public operation returns on failure.
type Error struct {
	// Kind is the error category.
	Kind ErrorKind

	// Status is the native status code that produced the error, StatusOk
	// for binding-side failures.
	Status enginecore.Status

	// Message is a human-readable description, carrying the engine's
	// structured detail when available.
	Message string

	// Session identifies the owning connection, when known.
	Session string

	// Fatal reports whether the owning wrapper was invalidated.
	Fatal bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != enginecore.StatusOk {
		msg = fmt.Sprintf("%s: %s (status %s)", e.Kind, msg, e.Status)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	if e.Session != "" {
		msg = fmt.Sprintf("%s (session %s)", msg, e.Session)
	}
	return msg
}

// translate maps a native status code onto the binding's error taxonomy.
// It is a pure mapping with no state.
func translate(s enginecore.Status) ErrorKind {
	switch s {
	case enginecore.StatusType, enginecore.StatusArity, enginecore.StatusLength,
		enginecore.StatusDomain, enginecore.StatusIndex, enginecore.StatusParse:
		return ErrInvalidArgument
	case enginecore.StatusValue:
		return ErrNotFound
	case enginecore.StatusLimit:
		return ErrResourceExhausted
	case enginecore.StatusNYI:
		return ErrUnsupported
	default:
		// StatusOS, StatusUser and anything unrecognized.
		return ErrEngineInternal
	}
}

// statusError builds the typed error for a non-Ok status, folding in the
// engine's structured last-error detail when it matches the status.
func statusError(s enginecore.Status, info enginecore.ErrInfo, session string) *Error {
	msg := info.Message
	if info.Code != s || msg == "" {
		msg = "engine reported " + s.String()
	}
	return &Error{
		Kind:    translate(s),
		Status:  s,
		Message: msg,
		Session: session,
		Fatal:   s.Fatal(),
	}
}

// withSession stamps the owning connection's session onto errors built
// without connection context, such as marshalling failures.
func withSession(err error, session string) error {
	var e *Error
	if errors.As(err, &e) && e.Session == "" {
		e.Session = session
	}
	return err
}

// IsInvalidArgument reports whether err is an invalid-argument error.
// Wrapped errors are unwrapped via errors.As.
func IsInvalidArgument(err error) bool { return hasKind(err, ErrInvalidArgument) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasKind(err, ErrNotFound) }

// IsCancelled reports whether err is a cancellation error.
func IsCancelled(err error) bool { return hasKind(err, ErrCancelled) }

// IsFatal reports whether err invalidated its owning wrapper.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Fatal
}

func hasKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
