// Package gpio provides named GPIO line access with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "errors"

// ErrUnknownLine is returned for a line name that was not configured.
var ErrUnknownLine = errors.New("gpio: unknown line")

// Bank reads and drives a set of named GPIO lines.
type Bank interface {
	// Value returns the raw value (0 or 1) of the named line.
	Value(name string) (int, error)

	// SetValue drives the named output line to 0 or 1.
	SetValue(name string, value int) error

	// Close releases GPIO resources.
	Close() error
}

// Default line assignments (BCM numbering).
const (
	DefaultChip     = "gpiochip0"
	DefaultRelayPin = 17
)
