package device

import (
	"sync"
	"time"
)

// DefaultSimulatedValue is returned for sensor kinds without a canned value.
const DefaultSimulatedValue = 25.5

// Simulated is an in-memory stand-in for the controller, used when no
// physical device is reachable. It returns canned readings and accepts every
// command.
type Simulated struct {
	mu        sync.Mutex
	values    map[string]float64
	actuators map[string]float64
	now       func() time.Time
}

// NewSimulated creates a simulated controller with canned readings for the
// standard greenhouse sensors.
func NewSimulated() *Simulated {
	return &Simulated{
		values: map[string]float64{
			SensorTemperature:  25.5,
			SensorHumidity:     60,
			SensorLight:        500,
			SensorSoilMoisture: 45,
		},
		actuators: make(map[string]float64),
		now:       time.Now,
	}
}

// ReadSensor returns the canned value for kind. It never fails.
func (s *Simulated) ReadSensor(kind string) (SensorReading, error) {
	s.mu.Lock()
	v, ok := s.values[kind]
	s.mu.Unlock()
	if !ok {
		v = DefaultSimulatedValue
	}
	return SensorReading{Kind: kind, Value: v, ObservedAt: s.now()}, nil
}

// WriteActuator records value for kind. It never fails.
func (s *Simulated) WriteActuator(kind string, value float64) error {
	s.mu.Lock()
	s.actuators[kind] = value
	s.mu.Unlock()
	return nil
}

// Actuator returns the last value written to kind.
func (s *Simulated) Actuator(kind string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.actuators[kind]
	return v, ok
}
