package device

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Linear corrects a reading as value*Slope + Offset.
type Linear struct {
	Offset float64 `yaml:"offset"`
	Slope  float64 `yaml:"slope"`
}

// Scale corrects a reading as value*Multiplier.
type Scale struct {
	Multiplier float64 `yaml:"multiplier"`
}

// SoilRange holds the raw sensor counts for bone dry and saturated soil.
// The firmware normally converts soil moisture to a percentage itself using
// these endpoints; set ADC when it reports raw counts instead and the
// conversion happens here.
type SoilRange struct {
	DryValue float64 `yaml:"dryValue"`
	WetValue float64 `yaml:"wetValue"`
	ADC      bool    `yaml:"adc"`
}

// Calibration is the on-disk sensor calibration document. JSON is valid
// YAML, so a calibration.json with the same keys loads too.
type Calibration struct {
	Temperature  Linear    `yaml:"temperature"`
	Humidity     Linear    `yaml:"humidity"`
	Light        Scale     `yaml:"light"`
	SoilMoisture SoilRange `yaml:"soil_moisture"`
}

// DefaultCalibration leaves every reading unchanged.
func DefaultCalibration() Calibration {
	return Calibration{
		Temperature:  Linear{Offset: 0, Slope: 1},
		Humidity:     Linear{Offset: 0, Slope: 1},
		Light:        Scale{Multiplier: 1},
		SoilMoisture: SoilRange{DryValue: 550, WetValue: 250},
	}
}

// Validate rejects values that would pin every reading to a constant.
func (c Calibration) Validate() error {
	if c.Temperature.Slope == 0 {
		return errors.New("temperature slope is 0")
	}
	if c.Humidity.Slope == 0 {
		return errors.New("humidity slope is 0")
	}
	if c.Light.Multiplier == 0 {
		return errors.New("light multiplier is 0")
	}
	if c.SoilMoisture.ADC && c.SoilMoisture.DryValue == c.SoilMoisture.WetValue {
		return errors.New("soil_moisture dryValue equals wetValue")
	}
	return nil
}

// Apply returns the calibrated value of a raw reading of kind. Kinds
// without a calibration entry pass through.
func (c Calibration) Apply(kind string, raw float64) float64 {
	switch kind {
	case SensorTemperature:
		return raw*c.Temperature.Slope + c.Temperature.Offset
	case SensorHumidity:
		return raw*c.Humidity.Slope + c.Humidity.Offset
	case SensorLight:
		return raw * c.Light.Multiplier
	case SensorSoilMoisture:
		if !c.SoilMoisture.ADC {
			return raw
		}
		s := c.SoilMoisture
		pct := (s.DryValue - raw) / (s.DryValue - s.WetValue) * 100
		switch {
		case pct < 0:
			return 0
		case pct > 100:
			return 100
		}
		return pct
	}
	return raw
}

// ParseCalibration decodes a calibration document. Keys that are absent
// keep their default.
func ParseCalibration(data []byte) (Calibration, error) {
	c := DefaultCalibration()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Calibration{}, fmt.Errorf("decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Calibration{}, err
	}
	return c, nil
}

// LoadCalibration reads the calibration file at path. A missing file is
// created with DefaultCalibration; if that write fails the defaults are
// still returned. An empty path means defaults without touching the disk.
func LoadCalibration(path string) (Calibration, error) {
	if path == "" {
		return DefaultCalibration(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		def := DefaultCalibration()
		if werr := writeCalibration(path, def); werr != nil {
			log.Printf("calibration: could not create %s: %v", path, werr)
		} else {
			log.Printf("calibration: created %s with defaults", path)
		}
		return def, nil
	}
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration %s: %w", path, err)
	}

	c, err := ParseCalibration(data)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibration %s: %w", path, err)
	}
	return c, nil
}

func writeCalibration(path string, c Calibration) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// CalibratedChannel applies a Calibration to every successful sensor read.
// Actuator writes pass through unchanged.
type CalibratedChannel struct {
	ch  Channel
	cal Calibration
}

// Calibrated returns ch with cal applied to its readings.
func Calibrated(ch Channel, cal Calibration) *CalibratedChannel {
	return &CalibratedChannel{ch: ch, cal: cal}
}

// ReadSensor forwards to the wrapped channel and corrects the value.
func (c *CalibratedChannel) ReadSensor(kind string) (SensorReading, error) {
	r, err := c.ch.ReadSensor(kind)
	if err != nil {
		return r, err
	}
	r.Value = c.cal.Apply(kind, r.Value)
	return r, nil
}

// WriteActuator forwards to the wrapped channel.
func (c *CalibratedChannel) WriteActuator(kind string, value float64) error {
	return c.ch.WriteActuator(kind, value)
}
