//go:build !linux

package gpio

import "errors"

// RealBank is not available on non-Linux platforms.
type RealBank struct{}

// NewRealBank returns an error on non-Linux platforms.
func NewRealBank(chipName string, outputs, inputs map[string]int) (*RealBank, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Value is not implemented on non-Linux platforms.
func (b *RealBank) Value(name string) (int, error) {
	return 0, errors.New("gpio: not supported")
}

// SetValue is not implemented on non-Linux platforms.
func (b *RealBank) SetValue(name string, value int) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealBank) Close() error {
	return nil
}
