package device

import (
	"testing"
)

func TestSimulatedCannedReadings(t *testing.T) {
	s := NewSimulated()

	tests := []struct {
		kind string
		want float64
	}{
		{SensorTemperature, 25.5},
		{SensorHumidity, 60},
		{SensorLight, 500},
		{SensorSoilMoisture, 45},
		{"co2", DefaultSimulatedValue},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				r, err := s.ReadSensor(tt.kind)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if r.Value != tt.want {
					t.Errorf("read %d: got %v, want %v", i, r.Value, tt.want)
				}
				if r.Kind != tt.kind {
					t.Errorf("kind: got %q", r.Kind)
				}
			}
		})
	}
}

func TestSimulatedAcceptsWrites(t *testing.T) {
	s := NewSimulated()

	if _, ok := s.Actuator(ActuatorRelay); ok {
		t.Error("expected no value before first write")
	}

	for _, v := range []float64{1, 0, 1} {
		if err := s.WriteActuator(ActuatorRelay, v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	v, ok := s.Actuator(ActuatorRelay)
	if !ok || v != 1 {
		t.Errorf("relay: got (%v, %v), want (1, true)", v, ok)
	}
}

func TestSimulatedImplementsChannel(t *testing.T) {
	var _ Channel = NewSimulated()
	var _ Channel = NewFakeChannel(nil)
	var _ Channel = &SerialChannel{}
	var _ Channel = &GPIOChannel{}
	var _ Channel = &Observed{}
}
