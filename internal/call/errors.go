package call

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField      = errors.New("room name and user name are required")
	ErrMediaUnavailable  = errors.New("media devices unavailable")
	ErrNegotiationFailed = errors.New("negotiation failed")
	ErrPeerDisconnected  = errors.New("peer disconnected")
	ErrSignalingError    = errors.New("signaling server error")
	ErrSessionClosed     = errors.New("session closed")
)

// CallError wraps a failure with the operation that produced it. All
// call errors are non-fatal: they abort at most the current negotiation
// attempt and leave room membership and the signaling channel intact.
type CallError struct {
	Op      string
	Err     error
	Details string
}

func (e *CallError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *CallError {
	return &CallError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *CallError {
	return &CallError{Op: op, Err: err, Details: details}
}
