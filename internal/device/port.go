package device

import (
	"time"

	"github.com/tarm/serial"
)

// Serial defaults matching the greenhouse firmware.
const (
	DefaultPort       = "/dev/ttyUSB0"
	DefaultBaud       = 9600
	DefaultResetDelay = 2 * time.Second

	// portPollTimeout is the per-read timeout set on the OS port. The
	// channel loops over short reads until its own response deadline.
	portPollTimeout = 100 * time.Millisecond
)

// SerialConfig describes how to open the controller's serial port.
type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration // response wait per exchange
	ResetDelay  time.Duration // wait after open while the board resets
}

// OpenSerial opens the serial port and returns a channel speaking the line
// protocol over it. Failure to open returns a *TransportError.
func OpenSerial(cfg SerialConfig) (*SerialChannel, error) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: portPollTimeout,
	})
	if err != nil {
		return nil, &TransportError{Port: cfg.Port, Err: err}
	}

	// Opening the port toggles DTR, which resets most Arduino boards.
	if cfg.ResetDelay > 0 {
		time.Sleep(cfg.ResetDelay)
	}

	return NewSerialChannel(p, cfg.ReadTimeout), nil
}
