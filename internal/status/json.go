package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string                 `json:"event,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Relay         string                 `json:"relay"`
	LastChange    string                 `json:"last_change,omitempty"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	StartTime     string                 `json:"start_time"`
	Timestamp     string                 `json:"timestamp"`
	MQTT          MQTTStatus             `json:"mqtt"`
	RelayCounts   RelayCountsJSON        `json:"relay_counts"`
	IO            IOCountsJSON           `json:"io_counts"`
	Readings      map[string]ReadingJSON `json:"readings"`
	Actuators     map[string]float64     `json:"actuators"`
	LastError     *ErrorJSON             `json:"last_error,omitempty"`
	Config        ConfigJSON             `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// RelayCountsJSON is the JSON representation of relay outcome counts.
type RelayCountsJSON struct {
	On             int `json:"on"`
	Off            int `json:"off"`
	WriteFailures  int `json:"write_failures"`
	ScheduleErrors int `json:"schedule_errors"`
}

// IOCountsJSON is the JSON representation of channel operation counts.
type IOCountsJSON struct {
	Reads         int `json:"reads"`
	ReadFailures  int `json:"read_failures"`
	Writes        int `json:"writes"`
	WriteFailures int `json:"write_failures"`
}

// ReadingJSON is one sensor's last value.
type ReadingJSON struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	ObservedAt string  `json:"observed_at"`
}

// ErrorJSON describes the most recent failure.
type ErrorJSON struct {
	Message string `json:"message"`
	At      string `json:"at"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend      string `json:"backend"`
	Port         string `json:"port,omitempty"`
	Schedule     string `json:"schedule"`
	Actuator     string `json:"actuator"`
	PollMs       int64  `json:"poll_ms"`
	SensorPollMs int64  `json:"sensor_poll_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPPort     string `json:"http_port"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	relay := string(snap.Relay)
	if relay == "" {
		relay = "UNKNOWN"
	}

	inner := StatusInner{
		Relay:         relay,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     formatTime(snap.StartTime),
		Timestamp:     formatTime(snap.Now),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		RelayCounts: RelayCountsJSON{
			On:             snap.RelayCounts.On,
			Off:            snap.RelayCounts.Off,
			WriteFailures:  snap.RelayCounts.WriteFailures,
			ScheduleErrors: snap.RelayCounts.ScheduleErrors,
		},
		IO: IOCountsJSON{
			Reads:         snap.IO.Reads,
			ReadFailures:  snap.IO.ReadFailures,
			Writes:        snap.IO.Writes,
			WriteFailures: snap.IO.WriteFailures,
		},
		Readings:  make(map[string]ReadingJSON, len(snap.Readings)),
		Actuators: make(map[string]float64, len(snap.Actuators)),
		Config: ConfigJSON{
			Backend:      snap.Config.Backend,
			Port:         snap.Config.Port,
			Schedule:     snap.Config.Schedule,
			Actuator:     snap.Config.Actuator,
			PollMs:       snap.Config.PollMs,
			SensorPollMs: snap.Config.SensorPollMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPPort:     snap.Config.HTTPPort,
		},
	}

	if !snap.LastChange.IsZero() {
		inner.LastChange = formatTime(snap.LastChange)
	}
	for kind, r := range snap.Readings {
		inner.Readings[kind] = ReadingJSON{Value: r.Value, Unit: r.Unit, ObservedAt: formatTime(r.ObservedAt)}
	}
	for kind, v := range snap.Actuators {
		inner.Actuators[kind] = v
	}
	if snap.LastError != "" {
		inner.LastError = &ErrorJSON{Message: snap.LastError, At: formatTime(snap.LastErrorAt)}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
