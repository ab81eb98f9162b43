package device

import (
	"errors"
	"testing"

	"github.com/sweeney/greenhouse-relay/internal/gpio"
)

func TestGPIOChannelWriteRelay(t *testing.T) {
	bank := gpio.NewFakeBank([]string{"relay"}, nil)
	c := NewGPIOChannel(bank)

	if err := c.WriteActuator("relay", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.Lines["relay"] != 1 {
		t.Errorf("relay line: got %d, want 1", bank.Lines["relay"])
	}

	if err := c.WriteActuator("relay", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.Lines["relay"] != 0 {
		t.Errorf("relay line: got %d, want 0", bank.Lines["relay"])
	}

	if err := c.WriteActuator("relay", 0.3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.Lines["relay"] != 1 {
		t.Errorf("non-zero value should drive high, got %d", bank.Lines["relay"])
	}
}

func TestGPIOChannelReadInput(t *testing.T) {
	bank := gpio.NewFakeBank(nil, []string{"door"})
	bank.Lines["door"] = 1
	c := NewGPIOChannel(bank)

	r, err := c.ReadSensor("door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Value != 1 || r.Kind != "door" {
		t.Errorf("unexpected reading: %+v", r)
	}
}

func TestGPIOChannelUnknownLines(t *testing.T) {
	c := NewGPIOChannel(gpio.NewFakeBank([]string{"relay"}, nil))

	if _, err := c.ReadSensor("temperature"); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("read unknown: expected ErrInvalidResponse, got %v", err)
	}
	if err := c.WriteActuator("pump", 1); !errors.Is(err, ErrCommandRejected) {
		t.Errorf("write unknown: expected ErrCommandRejected, got %v", err)
	}
}

func TestGPIOChannelBankFailure(t *testing.T) {
	bank := gpio.NewFakeBank([]string{"relay"}, nil)
	bank.Err = errors.New("line released")
	c := NewGPIOChannel(bank)

	if err := c.WriteActuator("relay", 1); !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestGPIOChannelClose(t *testing.T) {
	bank := gpio.NewFakeBank(nil, nil)
	c := NewGPIOChannel(bank)
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bank.Closed {
		t.Error("bank should be closed")
	}
}
