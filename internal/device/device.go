// Package device provides access to the greenhouse controller hardware.
// The serial implementation talks to the Arduino over a line protocol.
// The simulated and fake implementations allow running and testing without hardware.
package device

import "time"

// Channel reads sensors and drives actuators on the controller.
type Channel interface {
	// ReadSensor requests one reading of the named sensor.
	// Returns a *DeviceError if the device does not produce a number.
	ReadSensor(kind string) (SensorReading, error)

	// WriteActuator sets the named actuator to value.
	// A nil error means the device acknowledged the command. A rejected or
	// unacknowledged command returns a *DeviceError.
	WriteActuator(kind string, value float64) error
}

// SensorReading is a single sensor value.
type SensorReading struct {
	Kind       string
	Value      float64
	ObservedAt time.Time
}

// Default actuator and sensor names understood by the greenhouse firmware.
const (
	ActuatorRelay = "relay"

	SensorTemperature  = "temperature"
	SensorHumidity     = "humidity"
	SensorLight        = "light"
	SensorSoilMoisture = "soil_moisture"
)

// Unit returns the display unit of a sensor kind, or "" for unknown kinds.
func Unit(kind string) string {
	switch kind {
	case SensorTemperature:
		return "°C"
	case SensorHumidity, SensorSoilMoisture:
		return "%"
	case SensorLight:
		return "lux"
	}
	return ""
}
