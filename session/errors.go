package session

import (
	"errors"
	"fmt"
)

// ErrDisconnected is returned when an operation cannot proceed because the
// socket is down and either auto-reconnect is off or the operation cannot
// survive a reconnect (pending service calls, publishes with no retry).
var ErrDisconnected = errors.New("session: disconnected")

// ErrTimeout is returned when a service call's deadline elapses before a
// response arrives.
var ErrTimeout = errors.New("session: service call timed out")

// ErrCancelled is returned when a service call's context is cancelled
// before a response arrives. An elapsed timeout and caller cancellation
// are otherwise indistinguishable to the callee.
var ErrCancelled = errors.New("session: service call cancelled")

// ErrNotAdvertised is returned by Publish when no live advertisement
// exists for the topic.
var ErrNotAdvertised = errors.New("session: topic not advertised")

// ErrShuttingDown is returned by any operation submitted after Shutdown
// has been called.
var ErrShuttingDown = errors.New("session: shutting down")

// ErrServiceAlreadyAdvertised is returned by AdvertiseService when a
// handler is already installed for the service name.
var ErrServiceAlreadyAdvertised = errors.New("session: service already advertised")

// ServiceFailedError wraps the message a remote service returned alongside
// result=false.
type ServiceFailedError struct {
	Message string
}

func (e *ServiceFailedError) Error() string {
	return fmt.Sprintf("session: service call failed: %s", e.Message)
}

// SerializationError wraps a failure to encode an outbound frame, e.g. a
// payload that cannot round-trip through encoding/json.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("session: serialization error: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
