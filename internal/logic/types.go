// Package logic contains the pure decision logic for the greenhouse relay.
// This package has NO external dependencies (no serial, GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of the relay.
type State string

const (
	StateOn      State = "ON"
	StateOff     State = "OFF"
	StateUnknown State = "UNKNOWN"
)

// Value returns the actuator value written for the state (ON=1, OFF=0).
func (s State) Value() float64 {
	if s == StateOn {
		return 1
	}
	return 0
}

// EventType identifies an observable event emitted by the daemon.
type EventType string

const (
	EventSensorReadAttempt    EventType = "SENSOR_READ_ATTEMPT"
	EventSensorReadOK         EventType = "SENSOR_READ_OK"
	EventSensorReadFailed     EventType = "SENSOR_READ_FAILED"
	EventActuatorWriteAttempt EventType = "ACTUATOR_WRITE_ATTEMPT"
	EventActuatorWriteOK      EventType = "ACTUATOR_WRITE_OK"
	EventActuatorWriteFailed  EventType = "ACTUATOR_WRITE_FAILED"
	EventRelayOn              EventType = "RELAY_ON"
	EventRelayOff             EventType = "RELAY_OFF"
	EventScheduleError        EventType = "SCHEDULE_ERROR"
)

// Event is a single observable occurrence. Fields that do not apply to the
// event type are left at their zero value.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Kind      string  // sensor or actuator kind
	Value     float64 // reading or requested value
	Unit      string  // unit of a sensor reading
	State     State   // relay state after a transition
	Err       string  // failure description
}

// Sink receives events. Implementations must not block the caller.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) { f(event) }

// Sinks fans an event out to every sink in order. Nil entries are skipped.
type Sinks []Sink

// Emit forwards event to all sinks.
func (s Sinks) Emit(event Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Emit(event)
		}
	}
}

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// RelayCounts tracks scheduler outcomes since startup.
type RelayCounts struct {
	On             int
	Off            int
	WriteFailures  int
	ScheduleErrors int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	State     State
	Counts    RelayCounts
}
