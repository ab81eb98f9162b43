//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealBank drives GPIO lines on actual hardware using Linux GPIO character device.
type RealBank struct {
	chip    *gpiocdev.Chip
	lines   map[string]*gpiocdev.Line
	outputs map[string]bool
}

// NewRealBank requests the given output and input lines (name -> BCM offset).
// Outputs start low; inputs use pull-down to match Pi boot defaults.
func NewRealBank(chipName string, outputs, inputs map[string]int) (*RealBank, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealBank{
		chip:    chip,
		lines:   make(map[string]*gpiocdev.Line),
		outputs: make(map[string]bool),
	}

	for name, pin := range outputs {
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request output %s pin %d: %w", name, pin, err)
		}
		b.lines[name] = l
		b.outputs[name] = true
	}

	for name, pin := range inputs {
		l, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request input %s pin %d: %w", name, pin, err)
		}
		b.lines[name] = l
	}

	return b, nil
}

// Value returns the raw value of the named line.
func (b *RealBank) Value(name string) (int, error) {
	l, ok := b.lines[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownLine, name)
	}
	v, err := l.Value()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}

// SetValue drives the named output line.
func (b *RealBank) SetValue(name string, value int) error {
	l, ok := b.lines[name]
	if !ok || !b.outputs[name] {
		return fmt.Errorf("%w %q", ErrUnknownLine, name)
	}
	if err := l.SetValue(value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults) before
// closing, so a relay driver is released when the daemon stops.
func (b *RealBank) Close() error {
	var errs []error

	for name, l := range b.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", name, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	b.lines = nil
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
