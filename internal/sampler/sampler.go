// Package sampler polls the controller's sensors on an interval.
// Readings reach consumers through the event sink of an observed channel;
// the sampler itself only sequences the reads.
package sampler

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/device"
)

// DefaultKinds are the sensors fitted to the greenhouse controller.
var DefaultKinds = []string{
	device.SensorTemperature,
	device.SensorHumidity,
	device.SensorLight,
	device.SensorSoilMoisture,
}

// Sampler reads a fixed list of sensors.
type Sampler struct {
	channel device.Channel
	kinds   []string
}

// New creates a sampler for kinds (DefaultKinds if empty).
func New(channel device.Channel, kinds []string) *Sampler {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	return &Sampler{channel: channel, kinds: kinds}
}

// Kinds returns the sensors being sampled.
func (s *Sampler) Kinds() []string {
	return append([]string(nil), s.kinds...)
}

// SampleOnce reads every sensor once. A failing sensor does not stop the
// others; its error is returned keyed by kind.
func (s *Sampler) SampleOnce() ([]device.SensorReading, map[string]error) {
	var readings []device.SensorReading
	var errs map[string]error

	for _, kind := range s.kinds {
		r, err := s.channel.ReadSensor(kind)
		if err != nil {
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[kind] = err
			continue
		}
		readings = append(readings, r)
	}
	return readings, errs
}

// Run samples on every value from tick until ctx is cancelled or tick is
// closed.
func (s *Sampler) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		_, errs := s.SampleOnce()
		for kind, err := range errs {
			log.Printf("sampler: %s read error: %v", kind, err)
		}
	}
}
