// Package mqtt publishes relay and sensor events to MQTT, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

// Topic is the MQTT topic for relay and sensor events.
const Topic = "greenhouse/relay/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "greenhouse/relay/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a relay or sensor event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT", "MQTT_DISCONNECT"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Greenhouse EventPayload `json:"greenhouse"`
}

// EventPayload contains the event details.
type EventPayload struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Kind      string   `json:"kind,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	State     string   `json:"state,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// carriesValue reports whether the event type has a meaningful Value.
func carriesValue(t logic.EventType) bool {
	switch t {
	case logic.EventSensorReadOK,
		logic.EventActuatorWriteAttempt,
		logic.EventActuatorWriteOK,
		logic.EventActuatorWriteFailed,
		logic.EventRelayOn,
		logic.EventRelayOff:
		return true
	}
	return false
}

// FormatPayload creates the JSON payload for an event. Each payload gets a
// fresh id so consumers can de-duplicate replays after a reconnect.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := EventPayload{
		ID:        uuid.NewString(),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Kind:      event.Kind,
		Unit:      event.Unit,
		State:     string(event.State),
		Error:     event.Err,
	}
	if carriesValue(event.Type) {
		v := event.Value
		p.Value = &v
	}
	return json.Marshal(Payload{Greenhouse: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
