package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("task gateway transport error")
	// ErrNotFound is returned when the task named by an update or a
	// delete doesn't exist remotely.
	ErrNotFound = errors.New("task not found")
)

// TransportError describes a remote call that failed for any reason
// other than a missing task: the resource was unreachable, the call
// timed out, the response had an unexpected status or an unreadable body.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
	timeout    bool
}

func (e *TransportError) Error() string {
	msg := "task gateway: " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the call exceeded its deadline.
func (e *TransportError) Timeout() bool {
	return e.timeout
}
