package device

import (
	"errors"
	"sync"
	"time"
)

// Write records one WriteActuator call on a FakeChannel.
type Write struct {
	Kind  string
	Value float64
}

// FakeChannel is a test double that returns scripted readings and errors.
type FakeChannel struct {
	mu sync.Mutex

	// Readings maps sensor kind to the value ReadSensor returns.
	Readings map[string]float64

	// ReadError, if set, is returned by every ReadSensor call.
	ReadError error

	// WriteErrors are returned by successive WriteActuator calls. Each call
	// consumes one entry; a nil entry (or an exhausted list) means accepted.
	WriteErrors []error

	// Writes records every WriteActuator call, accepted or not.
	Writes []Write

	// Reads records the kinds passed to ReadSensor.
	Reads []string

	// Now supplies ObservedAt; defaults to time.Now.
	Now func() time.Time
}

// NewFakeChannel creates a FakeChannel with the given readings.
func NewFakeChannel(readings map[string]float64) *FakeChannel {
	return &FakeChannel{Readings: readings}
}

// ReadSensor returns the scripted reading for kind.
func (f *FakeChannel) ReadSensor(kind string) (SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads = append(f.Reads, kind)
	if f.ReadError != nil {
		return SensorReading{}, f.ReadError
	}

	v, ok := f.Readings[kind]
	if !ok {
		return SensorReading{}, &DeviceError{Op: "read", Target: kind, Kind: KindInvalidResponse, Raw: "ERR unknown sensor"}
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return SensorReading{Kind: kind, Value: v, ObservedAt: now()}, nil
}

// WriteActuator records the call and returns the next scripted error.
func (f *FakeChannel) WriteActuator(kind string, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Writes = append(f.Writes, Write{Kind: kind, Value: value})
	if len(f.WriteErrors) == 0 {
		return nil
	}
	err := f.WriteErrors[0]
	f.WriteErrors = f.WriteErrors[1:]
	return err
}

// RejectNext makes the next n writes fail with a CommandRejected error.
func (f *FakeChannel) RejectNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.WriteErrors = append(f.WriteErrors, &DeviceError{Op: "set", Kind: KindCommandRejected, Raw: "ERR"})
	}
}

// WriteCount returns the number of WriteActuator calls so far.
func (f *FakeChannel) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

// LastWrite returns the most recent write.
func (f *FakeChannel) LastWrite() (Write, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Writes) == 0 {
		return Write{}, errors.New("no writes recorded")
	}
	return f.Writes[len(f.Writes)-1], nil
}

// Reset clears recorded calls and scripted errors.
func (f *FakeChannel) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = nil
	f.Reads = nil
	f.WriteErrors = nil
	f.ReadError = nil
}
