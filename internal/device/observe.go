package device

import (
	"time"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

// Observed wraps a Channel and emits an event before and after every call.
type Observed struct {
	ch   Channel
	sink logic.Sink
	now  func() time.Time
}

// Observe returns ch instrumented to report to sink.
func Observe(ch Channel, sink logic.Sink) *Observed {
	if sink == nil {
		sink = logic.Discard
	}
	return &Observed{ch: ch, sink: sink, now: time.Now}
}

// ReadSensor forwards to the wrapped channel.
func (o *Observed) ReadSensor(kind string) (SensorReading, error) {
	o.sink.Emit(logic.Event{Timestamp: o.now(), Type: logic.EventSensorReadAttempt, Kind: kind})

	r, err := o.ch.ReadSensor(kind)
	if err != nil {
		o.sink.Emit(logic.Event{Timestamp: o.now(), Type: logic.EventSensorReadFailed, Kind: kind, Err: err.Error()})
		return r, err
	}

	o.sink.Emit(logic.Event{Timestamp: r.ObservedAt, Type: logic.EventSensorReadOK, Kind: kind, Value: r.Value, Unit: Unit(kind)})
	return r, nil
}

// WriteActuator forwards to the wrapped channel.
func (o *Observed) WriteActuator(kind string, value float64) error {
	o.sink.Emit(logic.Event{Timestamp: o.now(), Type: logic.EventActuatorWriteAttempt, Kind: kind, Value: value})

	if err := o.ch.WriteActuator(kind, value); err != nil {
		o.sink.Emit(logic.Event{Timestamp: o.now(), Type: logic.EventActuatorWriteFailed, Kind: kind, Value: value, Err: err.Error()})
		return err
	}

	o.sink.Emit(logic.Event{Timestamp: o.now(), Type: logic.EventActuatorWriteOK, Kind: kind, Value: value})
	return nil
}
