package device

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// AckToken is the line the firmware sends after accepting a SET command.
const AckToken = "OK"

// DefaultReadTimeout bounds the wait for one response line.
const DefaultReadTimeout = time.Second

// idleWait is slept when the port returns no data without blocking itself.
const idleWait = 5 * time.Millisecond

// Port is the byte stream to the device.
//
// Read must return within a bounded time even when no data arrives, either
// with the bytes available or with (0, io.EOF) once its own poll interval
// expires. SerialChannel checks its response deadline only between reads, so
// a Read that blocks indefinitely (an io.Pipe, or a serial port opened
// without a read timeout) holds the exchange past the timeout. OpenSerial
// configures a poll interval for this reason.
type Port interface {
	io.ReadWriteCloser
}

// flusher is implemented by ports that can discard unread input.
type flusher interface {
	Flush() error
}

// SerialChannel implements Channel over a line-oriented serial protocol:
//
//	-> READ temperature\n    <- 23.7\n
//	-> SET relay 1\n         <- OK\n
//
// Exchanges are serialized; each request waits for its response line (or the
// timeout) before the next request is written.
type SerialChannel struct {
	mu      sync.Mutex
	port    Port
	timeout time.Duration
	now     func() time.Time
	pending []byte
}

// NewSerialChannel wraps an open port. A timeout <= 0 uses DefaultReadTimeout.
// The timeout is only honored when port.Read returns in bounded time; see Port.
func NewSerialChannel(port Port, timeout time.Duration) *SerialChannel {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &SerialChannel{
		port:    port,
		timeout: timeout,
		now:     time.Now,
	}
}

// ReadSensor sends "READ {kind}" and parses the reply as a number.
func (c *SerialChannel) ReadSensor(kind string) (SensorReading, error) {
	line, err := c.exchange("read", kind, "READ "+kind+"\n")
	if err != nil {
		return SensorReading{}, err
	}

	if !isDecimal(line) {
		return SensorReading{}, &DeviceError{Op: "read", Target: kind, Kind: KindInvalidResponse, Raw: line}
	}
	value, perr := strconv.ParseFloat(line, 64)
	if perr != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return SensorReading{}, &DeviceError{Op: "read", Target: kind, Kind: KindInvalidResponse, Raw: line}
	}

	return SensorReading{Kind: kind, Value: value, ObservedAt: c.now()}, nil
}

// WriteActuator sends "SET {kind} {value}" and expects AckToken back.
func (c *SerialChannel) WriteActuator(kind string, value float64) error {
	cmd := fmt.Sprintf("SET %s %s\n", kind, FormatValue(value))
	line, err := c.exchange("set", kind, cmd)
	if err != nil {
		return err
	}
	if line != AckToken {
		return &DeviceError{Op: "set", Target: kind, Kind: KindCommandRejected, Raw: line}
	}
	return nil
}

// Close closes the underlying port.
func (c *SerialChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port.Close()
}

// isDecimal reports whether s is a plain decimal number: an optional sign,
// digits with at most one '.', and an optional exponent. ParseFloat alone
// would also take hex floats, underscores, "Inf" and "NaN".
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

// FormatValue renders an actuator value in its shortest decimal form.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exchange writes one command and returns the trimmed response line.
func (c *SerialChannel) exchange(op, target, cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop anything left over from an earlier exchange, e.g. a reply that
	// arrived after its request had already timed out.
	c.pending = c.pending[:0]
	if f, ok := c.port.(flusher); ok {
		if err := f.Flush(); err != nil {
			return "", &DeviceError{Op: op, Target: target, Kind: KindIO, Err: fmt.Errorf("flush: %w", err)}
		}
	}

	if _, err := io.WriteString(c.port, cmd); err != nil {
		return "", &DeviceError{Op: op, Target: target, Kind: KindIO, Err: fmt.Errorf("write: %w", err)}
	}

	line, err := c.readLine()
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", &DeviceError{Op: op, Target: target, Kind: KindTimeout, Raw: strings.TrimSpace(line)}
		}
		return "", &DeviceError{Op: op, Target: target, Kind: KindIO, Err: fmt.Errorf("read: %w", err)}
	}
	return strings.TrimSpace(line), nil
}

// readLine reads until '\n' or the timeout. On timeout the partial data is
// returned along with ErrTimeout.
func (c *SerialChannel) readLine() (string, error) {
	deadline := c.now().Add(c.timeout)
	buf := make([]byte, 64)

	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := string(c.pending[:i])
			c.pending = append(c.pending[:0], c.pending[i+1:]...)
			return line, nil
		}

		if !c.now().Before(deadline) {
			return string(c.pending), ErrTimeout
		}

		n, err := c.port.Read(buf)
		c.pending = append(c.pending, buf[:n]...)
		switch {
		case err != nil && !errors.Is(err, io.EOF):
			return string(c.pending), err
		case n == 0:
			// tarm/serial reports an expired port read timeout as (0, io.EOF).
			time.Sleep(idleWait)
		}
	}
}
