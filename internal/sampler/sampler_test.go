package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/device"
)

func TestSampleOnce(t *testing.T) {
	ch := device.NewFakeChannel(map[string]float64{
		"temperature": 21.5,
		"humidity":    55,
	})
	s := New(ch, []string{"temperature", "humidity", "light"})

	readings, errs := s.SampleOnce()
	if len(readings) != 2 {
		t.Fatalf("readings: got %d, want 2", len(readings))
	}
	if readings[0].Kind != "temperature" || readings[0].Value != 21.5 {
		t.Errorf("unexpected reading 0: %+v", readings[0])
	}
	if readings[1].Kind != "humidity" || readings[1].Value != 55 {
		t.Errorf("unexpected reading 1: %+v", readings[1])
	}
	if len(errs) != 1 || !errors.Is(errs["light"], device.ErrInvalidResponse) {
		t.Errorf("expected light to fail with ErrInvalidResponse, got %v", errs)
	}
}

func TestSampleOnceAllOK(t *testing.T) {
	s := New(device.NewSimulated(), nil)

	readings, errs := s.SampleOnce()
	if errs != nil {
		t.Errorf("expected nil error map, got %v", errs)
	}
	if len(readings) != len(DefaultKinds) {
		t.Errorf("readings: got %d, want %d", len(readings), len(DefaultKinds))
	}
}

func TestKindsIsACopy(t *testing.T) {
	s := New(device.NewSimulated(), []string{"a", "b"})
	k := s.Kinds()
	k[0] = "z"
	if s.Kinds()[0] != "a" {
		t.Error("Kinds should return a copy")
	}
}

func TestRunSamplesPerTick(t *testing.T) {
	ch := device.NewFakeChannel(map[string]float64{"temperature": 20})
	s := New(ch, []string{"temperature"})

	tick := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	close(tick)

	s.Run(context.Background(), tick)

	if len(ch.Reads) != 3 {
		t.Errorf("reads: got %d, want 3", len(ch.Reads))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(device.NewSimulated(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, make(chan time.Time))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
