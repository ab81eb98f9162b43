package device

import (
	"errors"
	"testing"
	"time"
)

func TestFakeChannelReadings(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f := NewFakeChannel(map[string]float64{"temperature": 19.5})
	f.Now = func() time.Time { return at }

	r, err := f.ReadSensor("temperature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Value != 19.5 || !r.ObservedAt.Equal(at) {
		t.Errorf("unexpected reading: %+v", r)
	}

	if _, err := f.ReadSensor("humidity"); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse for unscripted kind, got %v", err)
	}

	f.ReadError = errors.New("simulated error")
	if _, err := f.ReadSensor("temperature"); err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}

	if len(f.Reads) != 3 {
		t.Errorf("expected 3 recorded reads, got %d", len(f.Reads))
	}
}

func TestFakeChannelScriptedWriteErrors(t *testing.T) {
	f := NewFakeChannel(nil)
	f.RejectNext(1)

	if err := f.WriteActuator("relay", 1); !errors.Is(err, ErrCommandRejected) {
		t.Fatalf("first write: expected ErrCommandRejected, got %v", err)
	}
	if err := f.WriteActuator("relay", 1); err != nil {
		t.Fatalf("second write: unexpected error: %v", err)
	}

	if f.WriteCount() != 2 {
		t.Errorf("WriteCount: got %d, want 2", f.WriteCount())
	}
	w, err := f.LastWrite()
	if err != nil || w.Kind != "relay" || w.Value != 1 {
		t.Errorf("LastWrite: got (%+v, %v)", w, err)
	}
}

func TestFakeChannelReset(t *testing.T) {
	f := NewFakeChannel(nil)
	f.WriteActuator("relay", 1)
	f.RejectNext(2)
	f.Reset()

	if f.WriteCount() != 0 {
		t.Errorf("expected no writes after reset, got %d", f.WriteCount())
	}
	if _, err := f.LastWrite(); err == nil {
		t.Error("expected error from LastWrite after reset")
	}
	if err := f.WriteActuator("relay", 0); err != nil {
		t.Errorf("scripted errors should be cleared: %v", err)
	}
}
