package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means the server could not be reached or answered
	// with something that was not a usable response.
	KindTransport Kind = iota
	// KindRejected means the server answered ok:false. Message is its reason.
	KindRejected
	// KindNotFound means the resource does not exist. Only the sync call
	// produces it, and it is not an error condition for callers.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindNotFound:
		return "not found"
	default:
		return "transport"
	}
}

// ErrNotFound matches an *Error of KindNotFound under errors.Is.
var ErrNotFound = errors.New("api: not found")

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsRejected returns the server's reason if err is a rejection.
func IsRejected(err error) (string, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind == KindRejected {
		return ae.Message, true
	}
	return "", false
}

// IsTransport reports whether err means the request itself failed.
func IsTransport(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindTransport
}
