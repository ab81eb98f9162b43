package logic

import "time"

// Relay tracks the last relay state the device acknowledged.
// The state starts UNKNOWN and only changes through Applied.
type Relay struct {
	state         State
	lastChange    time.Time
	counts        RelayCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewRelay creates a relay tracker in the UNKNOWN state.
// The startTime is used for calculating uptime in heartbeat events.
func NewRelay(startTime time.Time) *Relay {
	return &Relay{
		state:         StateUnknown,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// State returns the last acknowledged state.
func (r *Relay) State() State {
	return r.state
}

// LastChange returns the time of the last applied transition (zero if none).
func (r *Relay) LastChange() time.Time {
	return r.lastChange
}

// NeedsChange reports whether desired differs from the acknowledged state.
// UNKNOWN never equals anything, so the first evaluation always writes.
func (r *Relay) NeedsChange(desired State) bool {
	if r.state == StateUnknown {
		return true
	}
	return r.state != desired
}

// Applied records a successfully acknowledged write and returns the
// transition event. Writing UNKNOWN is ignored and returns nil.
func (r *Relay) Applied(desired State, at time.Time) *Event {
	if desired != StateOn && desired != StateOff {
		return nil
	}

	r.state = desired
	r.lastChange = at

	event := Event{Timestamp: at, State: desired}
	if desired == StateOn {
		event.Type = EventRelayOn
		r.counts.On++
	} else {
		event.Type = EventRelayOff
		r.counts.Off++
	}
	return &event
}

// WriteFailed records a failed or rejected write. State is unchanged.
func (r *Relay) WriteFailed() {
	r.counts.WriteFailures++
}

// ScheduleFailed records a tick skipped because the window could not be read.
func (r *Relay) ScheduleFailed() {
	r.counts.ScheduleErrors++
}

// Counts returns a copy of the outcome counters.
func (r *Relay) Counts() RelayCounts {
	return r.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (r *Relay) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(r.lastHeartbeat) < interval {
		return nil
	}

	r.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(r.startTime),
		State:     r.state,
		Counts:    r.counts,
	}
}
