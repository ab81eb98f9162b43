// Package status provides a thread-safe view of the greenhouse relay daemon.
// It is fed from the event stream and read by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Backend      string
	Port         string
	Schedule     string
	Actuator     string
	PollMs       int64
	SensorPollMs int64
	HeartbeatMs  int64
	Broker       string
	HTTPPort     string
}

// Reading is the last successful value of one sensor.
type Reading struct {
	Value      float64
	Unit       string
	ObservedAt time.Time
}

// IOCounts counts channel operations since startup.
type IOCounts struct {
	Reads         int
	ReadFailures  int
	Writes        int
	WriteFailures int
}

// Snapshot is a point-in-time view of daemon state.
// Maps are copied, so it is safe to use after the lock is released.
type Snapshot struct {
	Relay         logic.State
	LastChange    time.Time
	RelayCounts   logic.RelayCounts
	IO            IOCounts
	Readings      map[string]Reading
	Actuators     map[string]float64
	LastError     string
	LastErrorAt   time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ConnectionChecker reports whether the MQTT connection is up.
type ConnectionChecker interface {
	IsConnected() bool
}

// Tracker holds mutable daemon state behind an RWMutex. It implements
// logic.Sink so it can sit next to the MQTT sink on the event stream.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	checker ConnectionChecker
	now     func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Relay:     logic.StateUnknown,
			Readings:  make(map[string]Reading),
			Actuators: make(map[string]float64),
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Emit folds one event into the tracked state.
func (t *Tracker) Emit(e logic.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.snap
	switch e.Type {
	case logic.EventSensorReadOK:
		s.IO.Reads++
		s.Readings[e.Kind] = Reading{Value: e.Value, Unit: e.Unit, ObservedAt: e.Timestamp}
	case logic.EventSensorReadFailed:
		s.IO.ReadFailures++
		t.setError(e)
	case logic.EventActuatorWriteOK:
		s.IO.Writes++
		s.Actuators[e.Kind] = e.Value
	case logic.EventActuatorWriteFailed:
		s.IO.WriteFailures++
		s.RelayCounts.WriteFailures++
		t.setError(e)
	case logic.EventRelayOn, logic.EventRelayOff:
		s.Relay = e.State
		s.LastChange = e.Timestamp
		if e.Type == logic.EventRelayOn {
			s.RelayCounts.On++
		} else {
			s.RelayCounts.Off++
		}
	case logic.EventScheduleError:
		s.RelayCounts.ScheduleErrors++
		t.setError(e)
	}
}

// setError records the failure text. Caller holds the lock.
func (t *Tracker) setError(e logic.Event) {
	t.snap.LastError = e.Err
	t.snap.LastErrorAt = e.Timestamp
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTChecker makes every snapshot ask p for the connection state instead
// of using the last value passed to SetMQTTConnected.
func (t *Tracker) SetMQTTChecker(p ConnectionChecker) {
	t.mu.Lock()
	t.checker = p
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Readings = make(map[string]Reading, len(t.snap.Readings))
	for k, v := range t.snap.Readings {
		s.Readings[k] = v
	}
	s.Actuators = make(map[string]float64, len(t.snap.Actuators))
	for k, v := range t.snap.Actuators {
		s.Actuators[k] = v
	}
	checker := t.checker
	t.mu.RUnlock()

	if checker != nil {
		s.MQTTConnected = checker.IsConnected()
	}
	s.Now = t.now()
	return s
}
