package anova

import (
	"errors"
	"fmt"
)

// ConnectionState represents the specific kind of connection failure
type ConnectionState string

const (
	// StackFailed means the underlying BLE stack is gone (HCI device could
	// not be created or died). Not recoverable by reconnecting.
	StackFailed ConnectionState = "stack_failed"

	ConnectTimeout  ConnectionState = "connect_timeout"
	NotConnected    ConnectionState = "not_connected"
	ResponseTimeout ConnectionState = "response_timeout"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrStackFailed     = &ConnectionError{State: StackFailed}
	ErrConnectTimeout  = &ConnectionError{State: ConnectTimeout}
	ErrNotConnected    = &ConnectionError{State: NotConnected}
	ErrResponseTimeout = &ConnectionError{State: ResponseTimeout}
)

// IsUnrecoverable reports whether err is a fault the session worker cannot
// recover from by reconnecting.
func IsUnrecoverable(err error) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == StackFailed
	}
	return false
}
