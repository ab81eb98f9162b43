package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

func TestAsyncPublishesInOrder(t *testing.T) {
	pub := NewFakePublisher()
	a := NewAsync(pub, 8)

	a.Emit(logic.Event{Timestamp: time.Now(), Type: logic.EventActuatorWriteAttempt})
	a.Emit(logic.Event{Timestamp: time.Now(), Type: logic.EventActuatorWriteOK})
	a.Emit(logic.Event{Timestamp: time.Now(), Type: logic.EventRelayOn})
	a.Close()

	got := pub.EventTypes()
	want := []logic.EventType{logic.EventActuatorWriteAttempt, logic.EventActuatorWriteOK, logic.EventRelayOn}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if pub.Closed {
		t.Error("Async.Close must not close the underlying publisher")
	}
}

func TestAsyncDropsWhenFull(t *testing.T) {
	pub := NewFakePublisher()
	pub.Block = make(chan struct{})
	a := NewAsync(pub, 1)

	// The worker takes at most one event and blocks on it; the queue holds one
	// more. Everything beyond that must be dropped without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			a.Emit(logic.Event{Type: logic.EventSensorReadOK})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full queue")
	}

	if a.Dropped() < 8 {
		t.Errorf("dropped: got %d, want at least 8", a.Dropped())
	}

	close(pub.Block)
	a.Close()

	if n := len(pub.EventTypes()); n+int(a.Dropped()) != 10 {
		t.Errorf("published %d + dropped %d != 10", n, a.Dropped())
	}
}

func TestAsyncSurvivesPublishErrors(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	a := NewAsync(pub, 4)

	a.Emit(logic.Event{Type: logic.EventRelayOff})
	a.Close()

	if len(pub.EventTypes()) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestAsyncEmitAfterClose(t *testing.T) {
	pub := NewFakePublisher()
	a := NewAsync(pub, 4)
	a.Close()
	a.Close()

	a.Emit(logic.Event{Type: logic.EventRelayOn})
	if len(pub.EventTypes()) != 0 {
		t.Error("events emitted after Close should be ignored")
	}
}
