package gpio

import (
	"fmt"
	"sync"
)

// FakeBank is a test double holding line values in memory.
type FakeBank struct {
	mu sync.Mutex

	// Lines maps line name to its current value.
	Lines map[string]int

	// Outputs lists the names that accept SetValue.
	Outputs map[string]bool

	// Closed tracks if Close was called.
	Closed bool

	// Err, if set, is returned by Value and SetValue.
	Err error
}

// NewFakeBank creates a FakeBank with the given output and input line names,
// all starting at 0.
func NewFakeBank(outputs, inputs []string) *FakeBank {
	f := &FakeBank{
		Lines:   make(map[string]int),
		Outputs: make(map[string]bool),
	}
	for _, name := range outputs {
		f.Lines[name] = 0
		f.Outputs[name] = true
	}
	for _, name := range inputs {
		f.Lines[name] = 0
	}
	return f
}

// Value returns the stored value of the line.
func (f *FakeBank) Value(name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	v, ok := f.Lines[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownLine, name)
	}
	return v, nil
}

// SetValue stores the value of an output line.
func (f *FakeBank) SetValue(name string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if !f.Outputs[name] {
		return fmt.Errorf("%w %q", ErrUnknownLine, name)
	}
	f.Lines[name] = value
	return nil
}

// Close marks the bank as closed.
func (f *FakeBank) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
