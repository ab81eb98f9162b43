package device

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/gpio"
)

// GPIOChannel implements Channel on GPIO lines wired directly to the host,
// for installs where the relay board hangs off the Pi instead of the Arduino.
// Actuators are output lines (value != 0 drives high); sensors are input
// lines read as 0 or 1.
type GPIOChannel struct {
	mu   sync.Mutex
	bank gpio.Bank
	now  func() time.Time
}

// NewGPIOChannel wraps a GPIO bank.
func NewGPIOChannel(bank gpio.Bank) *GPIOChannel {
	return &GPIOChannel{bank: bank, now: time.Now}
}

// ReadSensor returns the value of the input line named kind.
func (c *GPIOChannel) ReadSensor(kind string) (SensorReading, error) {
	c.mu.Lock()
	v, err := c.bank.Value(kind)
	c.mu.Unlock()
	if err != nil {
		return SensorReading{}, gpioError("read", kind, err)
	}
	return SensorReading{Kind: kind, Value: float64(v), ObservedAt: c.now()}, nil
}

// WriteActuator drives the output line named kind.
func (c *GPIOChannel) WriteActuator(kind string, value float64) error {
	level := 0
	if value != 0 {
		level = 1
	}

	c.mu.Lock()
	err := c.bank.SetValue(kind, level)
	c.mu.Unlock()
	if err != nil {
		return gpioError("set", kind, err)
	}
	return nil
}

// Close releases the GPIO bank.
func (c *GPIOChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bank.Close()
}

func gpioError(op, kind string, err error) error {
	if errors.Is(err, gpio.ErrUnknownLine) {
		k := KindInvalidResponse
		if op == "set" {
			k = KindCommandRejected
		}
		return &DeviceError{Op: op, Target: kind, Kind: k, Raw: err.Error()}
	}
	return &DeviceError{Op: op, Target: kind, Kind: KindIO, Err: err}
}
