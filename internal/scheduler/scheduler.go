// Package scheduler drives the relay from the daily schedule.
//
// Every tick recomputes the desired state from the clock and a fresh read of
// the schedule, and writes to the device only when that differs from the
// last state the device acknowledged. A failed write or unreadable schedule
// leaves the state alone; the next tick tries again.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/device"
	"github.com/sweeney/greenhouse-relay/internal/logic"
	"github.com/sweeney/greenhouse-relay/internal/schedule"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 30 * time.Second

// Outcome describes what a tick did.
type Outcome int

const (
	// OutcomeSkipped means the schedule could not be read; nothing was written.
	OutcomeSkipped Outcome = iota
	// OutcomeUnchanged means the relay was already in the desired state.
	OutcomeUnchanged
	// OutcomeApplied means a write was acknowledged and the state changed.
	OutcomeApplied
	// OutcomeFailed means a write was attempted and failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Options configures a Scheduler. Zero values select defaults.
type Options struct {
	// Actuator is the actuator kind the relay is addressed by.
	Actuator string

	// Heartbeat is the interval between heartbeat callbacks (0 disables).
	Heartbeat time.Duration

	// OnHeartbeat is called from Run when a heartbeat is due.
	OnHeartbeat func(logic.HeartbeatData)

	// Now supplies wall-clock time; defaults to time.Now.
	Now func() time.Time
}

// Scheduler owns the relay state and applies the schedule to the channel.
// Tick and Run must be called from a single goroutine.
type Scheduler struct {
	channel  device.Channel
	source   schedule.Source
	sink     logic.Sink
	relay    *logic.Relay
	actuator string
	opts     Options
	now      func() time.Time
}

// New creates a scheduler in the UNKNOWN state.
func New(channel device.Channel, source schedule.Source, sink logic.Sink, opts Options) *Scheduler {
	if opts.Actuator == "" {
		opts.Actuator = device.ActuatorRelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if sink == nil {
		sink = logic.Discard
	}
	return &Scheduler{
		channel:  channel,
		source:   source,
		sink:     sink,
		relay:    logic.NewRelay(opts.Now()),
		actuator: opts.Actuator,
		opts:     opts,
		now:      opts.Now,
	}
}

// State returns the last state the device acknowledged.
func (s *Scheduler) State() logic.State {
	return s.relay.State()
}

// Counts returns the outcome counters.
func (s *Scheduler) Counts() logic.RelayCounts {
	return s.relay.Counts()
}

// Tick runs one poll-evaluate-act cycle at time now. The returned error is
// informational: the scheduler has already recovered from it.
func (s *Scheduler) Tick(now time.Time) (Outcome, error) {
	window, err := s.source.Window()
	if err != nil {
		s.relay.ScheduleFailed()
		s.sink.Emit(logic.Event{Timestamp: now, Type: logic.EventScheduleError, Err: err.Error()})
		return OutcomeSkipped, err
	}

	desired := window.Desired(now)
	if !s.relay.NeedsChange(desired) {
		return OutcomeUnchanged, nil
	}

	if err := s.channel.WriteActuator(s.actuator, desired.Value()); err != nil {
		s.relay.WriteFailed()
		return OutcomeFailed, err
	}

	if ev := s.relay.Applied(desired, now); ev != nil {
		ev.Kind = s.actuator
		ev.Value = desired.Value()
		s.sink.Emit(*ev)
	}
	return OutcomeApplied, nil
}

// Run ticks immediately and then on every value from tick until ctx is
// cancelled or tick is closed. Stop is checked before each cycle, so shutdown
// completes within one interval. Per-tick errors are logged, never returned.
func (s *Scheduler) Run(ctx context.Context, tick <-chan time.Time) error {
	log.Printf("scheduler: started, actuator=%s", s.actuator)

	for {
		if ctx.Err() != nil {
			log.Printf("scheduler: stopped in state %s", s.relay.State())
			return nil
		}

		t := s.now()
		s.logOutcome(s.Tick(t))

		if s.opts.OnHeartbeat != nil {
			if hb := s.relay.CheckHeartbeat(t, s.opts.Heartbeat); hb != nil {
				s.opts.OnHeartbeat(*hb)
			}
		}

		select {
		case <-ctx.Done():
		case _, ok := <-tick:
			if !ok {
				log.Printf("scheduler: tick source closed")
				return nil
			}
		}
	}
}

func (s *Scheduler) logOutcome(outcome Outcome, err error) {
	switch outcome {
	case OutcomeSkipped:
		log.Printf("scheduler: schedule read error, keeping %s: %v", s.relay.State(), err)
	case OutcomeApplied:
		log.Printf("scheduler: relay %s", s.relay.State())
	case OutcomeFailed:
		log.Printf("scheduler: relay write failed, keeping %s: %v", s.relay.State(), err)
	}
}
