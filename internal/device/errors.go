package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrTransport       = errors.New("transport unavailable")
	ErrTimeout         = errors.New("timeout")
	ErrInvalidResponse = errors.New("invalid response")
	ErrCommandRejected = errors.New("command rejected")
	ErrIO              = errors.New("i/o failure")
)

// TransportError reports that the link to the device could not be opened.
// Callers are expected to fall back to a simulated channel.
type TransportError struct {
	Port string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ErrorKind classifies a DeviceError.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindCommandRejected ErrorKind = "command_rejected"
	KindIO              ErrorKind = "io"
)

// DeviceError is a failed exchange with an established device.
type DeviceError struct {
	Op     string // "read" or "set"
	Target string // sensor or actuator kind
	Kind   ErrorKind
	Raw    string // response text received, if any
	Err    error  // underlying transport error for KindIO
}

func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Target, e.sentinel())
	if e.Raw != "" || e.Kind == KindInvalidResponse || e.Kind == KindCommandRejected {
		msg += fmt.Sprintf(" %q", e.Raw)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *DeviceError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *DeviceError) sentinel() error {
	switch e.Kind {
	case KindTimeout:
		return ErrTimeout
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindCommandRejected:
		return ErrCommandRejected
	default:
		return ErrIO
	}
}
