package logic

import (
	"testing"
	"time"
)

func TestNewRelay(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRelay(start)
	if r.State() != StateUnknown {
		t.Errorf("expected UNKNOWN, got %s", r.State())
	}
	if !r.LastChange().IsZero() {
		t.Errorf("expected zero LastChange, got %v", r.LastChange())
	}
	if !r.lastHeartbeat.Equal(start) {
		t.Errorf("expected lastHeartbeat %v, got %v", start, r.lastHeartbeat)
	}
}

func TestUnknownAlwaysNeedsChange(t *testing.T) {
	r := NewRelay(time.Now())
	if !r.NeedsChange(StateOn) {
		t.Error("UNKNOWN should need change to ON")
	}
	if !r.NeedsChange(StateOff) {
		t.Error("UNKNOWN should need change to OFF")
	}
}

func TestAppliedTransitions(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r := NewRelay(now)

	ev := r.Applied(StateOn, now)
	if ev == nil {
		t.Fatal("expected event")
	}
	if ev.Type != EventRelayOn || ev.State != StateOn || !ev.Timestamp.Equal(now) {
		t.Errorf("unexpected event: %+v", ev)
	}
	if r.State() != StateOn {
		t.Errorf("expected ON, got %s", r.State())
	}
	if r.NeedsChange(StateOn) {
		t.Error("ON should not need change to ON")
	}
	if !r.NeedsChange(StateOff) {
		t.Error("ON should need change to OFF")
	}

	later := now.Add(12 * time.Hour)
	ev = r.Applied(StateOff, later)
	if ev.Type != EventRelayOff {
		t.Errorf("expected RELAY_OFF, got %s", ev.Type)
	}
	if !r.LastChange().Equal(later) {
		t.Errorf("LastChange: got %v, want %v", r.LastChange(), later)
	}

	c := r.Counts()
	if c.On != 1 || c.Off != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestAppliedUnknownIgnored(t *testing.T) {
	r := NewRelay(time.Now())
	r.Applied(StateOn, time.Now())
	if ev := r.Applied(StateUnknown, time.Now()); ev != nil {
		t.Errorf("expected nil event, got %+v", ev)
	}
	if r.State() != StateOn {
		t.Errorf("UNKNOWN must never be re-entered, got %s", r.State())
	}
}

func TestFailuresDoNotChangeState(t *testing.T) {
	r := NewRelay(time.Now())
	r.Applied(StateOff, time.Now())

	r.WriteFailed()
	r.ScheduleFailed()
	r.ScheduleFailed()

	if r.State() != StateOff {
		t.Errorf("expected OFF, got %s", r.State())
	}
	c := r.Counts()
	if c.WriteFailures != 1 || c.ScheduleErrors != 2 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRelay(start)
	r.Applied(StateOn, start)

	if hb := r.CheckHeartbeat(start.Add(10*time.Minute), 15*time.Minute); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	at := start.Add(15 * time.Minute)
	hb := r.CheckHeartbeat(at, 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("Uptime: got %v", hb.Uptime)
	}
	if hb.State != StateOn || hb.Counts.On != 1 {
		t.Errorf("unexpected heartbeat: %+v", hb)
	}

	if hb := r.CheckHeartbeat(at.Add(time.Minute), 15*time.Minute); hb != nil {
		t.Error("expected no heartbeat right after previous one")
	}
}

func TestCheckHeartbeatDisabled(t *testing.T) {
	start := time.Now()
	r := NewRelay(start)
	if hb := r.CheckHeartbeat(start.Add(24*time.Hour), 0); hb != nil {
		t.Error("expected nil when interval is 0")
	}
	if hb := r.CheckHeartbeat(start.Add(24*time.Hour), -time.Second); hb != nil {
		t.Error("expected nil when interval is negative")
	}
}

func TestSinksFanOut(t *testing.T) {
	var a, b []Event
	s := Sinks{
		SinkFunc(func(e Event) { a = append(a, e) }),
		nil,
		SinkFunc(func(e Event) { b = append(b, e) }),
	}
	s.Emit(Event{Type: EventRelayOn})
	if len(a) != 1 || len(b) != 1 {
		t.Errorf("expected one event in each sink, got %d and %d", len(a), len(b))
	}
	Discard.Emit(Event{Type: EventRelayOff})
}
