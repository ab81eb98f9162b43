// Command greenhouse-relay drives a greenhouse relay from a daily schedule
// through a serial-attached controller and publishes what it does to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/greenhouse-relay/internal/device"
	"github.com/sweeney/greenhouse-relay/internal/gpio"
	"github.com/sweeney/greenhouse-relay/internal/logic"
	"github.com/sweeney/greenhouse-relay/internal/mqtt"
	"github.com/sweeney/greenhouse-relay/internal/sampler"
	"github.com/sweeney/greenhouse-relay/internal/schedule"
	"github.com/sweeney/greenhouse-relay/internal/scheduler"
	"github.com/sweeney/greenhouse-relay/internal/status"
	"github.com/sweeney/greenhouse-relay/internal/web"
)

type config struct {
	backend     string
	port        string
	baud        int
	readTimeout time.Duration
	resetDelay  time.Duration
	schedule    string
	calibration string
	poll        time.Duration
	actuator    string
	sensors     []string
	sensorPoll  time.Duration
	broker      string
	heartbeat   time.Duration
	httpAddr    string
	gpioChip    string
	gpioPin     int
	read        string
	set         string
}

func main() {
	var cfg config
	var sensors string

	flag.StringVar(&cfg.backend, "backend", "serial", "Device backend: serial, gpio or sim")
	flag.StringVar(&cfg.port, "port", device.DefaultPort, "Serial port of the controller")
	flag.IntVar(&cfg.baud, "baud", device.DefaultBaud, "Serial baud rate")
	flag.DurationVar(&cfg.readTimeout, "read-timeout", device.DefaultReadTimeout, "Wait for one response line")
	flag.DurationVar(&cfg.resetDelay, "reset-delay", device.DefaultResetDelay, "Wait after opening the port while the board resets")
	flag.StringVar(&cfg.schedule, "schedule", "config.json", `Schedule file with "power-on" and "power-off" times`)
	flag.StringVar(&cfg.calibration, "calibration", "calibration.yaml", "Sensor calibration file, created with defaults if missing (empty to disable)")
	flag.DurationVar(&cfg.poll, "poll", scheduler.DefaultInterval, "Schedule polling interval")
	flag.StringVar(&cfg.actuator, "actuator", device.ActuatorRelay, "Actuator kind of the relay")
	flag.StringVar(&sensors, "sensors", strings.Join(sampler.DefaultKinds, ","), "Comma separated sensor kinds to sample")
	flag.DurationVar(&cfg.sensorPoll, "sensor-poll", 0, "Sensor sampling interval (0 to disable)")
	flag.StringVar(&cfg.broker, "broker", "tcp://localhost:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.gpioChip, "gpio-chip", gpio.DefaultChip, "GPIO chip for the gpio backend")
	flag.IntVar(&cfg.gpioPin, "gpio-relay-pin", gpio.DefaultRelayPin, "BCM pin driving the relay for the gpio backend")
	flag.StringVar(&cfg.read, "read", "", "Read one sensor, print it and exit")
	flag.StringVar(&cfg.set, "set", "", "Write KIND=VALUE to one actuator and exit")

	flag.Parse()
	cfg.sensors = parseSensors(sensors)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	cal, err := device.LoadCalibration(cfg.calibration)
	if err != nil {
		return err
	}

	ch, backend, err := openChannel(cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.backend, err)
	}
	defer closeChannel(ch)

	// One-shot modes
	if cfg.read != "" || cfg.set != "" {
		return runOneShot(device.Calibrated(ch, cal), cfg.read, cfg.set, os.Stdout)
	}

	publisher := mqtt.NewRealPublisher(cfg.broker, "greenhouse-relay-"+uuid.NewString()[:8])
	defer publisher.Close()

	async := mqtt.NewAsync(publisher, mqtt.DefaultQueueSize)
	defer async.Close()

	port := ""
	if backend == "serial" {
		port = cfg.port
	}
	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:      backend,
		Port:         port,
		Schedule:     cfg.schedule,
		Actuator:     cfg.actuator,
		PollMs:       cfg.poll.Milliseconds(),
		SensorPollMs: cfg.sensorPoll.Milliseconds(),
		HeartbeatMs:  cfg.heartbeat.Milliseconds(),
		Broker:       cfg.broker,
		HTTPPort:     cfg.httpAddr,
	})
	tracker.SetMQTTChecker(publisher)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: backend=%s schedule=%s poll=%v sensor-poll=%v broker=%s heartbeat=%v",
		backend, cfg.schedule, cfg.poll, cfg.sensorPoll, cfg.broker, cfg.heartbeat)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	var sensorTick <-chan time.Time
	if cfg.sensorPoll > 0 {
		st := time.NewTicker(cfg.sensorPoll)
		defer st.Stop()
		sensorTick = st.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sink := logic.Sinks{async, tracker}
	opts := loopOptions{
		Actuator:    cfg.actuator,
		Sensors:     cfg.sensors,
		Heartbeat:   cfg.heartbeat,
		Calibration: &cal,
		Now:         time.Now,
	}
	return runLoop(ch, schedule.NewFileSource(cfg.schedule), sink, publisher, tracker, opts, ticker.C, sensorTick, sigCh)
}

// openSerial is replaced in tests.
var openSerial = device.OpenSerial

// openChannel builds the configured backend. An unavailable serial port
// falls back to the simulated device; the returned name is the backend in use.
func openChannel(cfg config) (device.Channel, string, error) {
	switch cfg.backend {
	case "serial":
		ch, err := openSerial(device.SerialConfig{
			Port:        cfg.port,
			Baud:        cfg.baud,
			ReadTimeout: cfg.readTimeout,
			ResetDelay:  cfg.resetDelay,
		})
		if errors.Is(err, device.ErrTransport) {
			log.Printf("serial unavailable, falling back to simulated device: %v", err)
			return device.NewSimulated(), "sim", nil
		}
		if err != nil {
			return nil, "", err
		}
		return ch, "serial", nil

	case "gpio":
		bank, err := gpio.NewRealBank(cfg.gpioChip, map[string]int{cfg.actuator: cfg.gpioPin}, nil)
		if err != nil {
			return nil, "", fmt.Errorf("init gpio: %w", err)
		}
		return device.NewGPIOChannel(bank), "gpio", nil

	case "sim":
		return device.NewSimulated(), "sim", nil
	}
	return nil, "", fmt.Errorf("unknown backend %q", cfg.backend)
}

func closeChannel(ch device.Channel) {
	if c, ok := ch.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("close device: %v", err)
		}
	}
}

// runOneShot performs a single -read or -set against ch and prints the result.
func runOneShot(ch device.Channel, read, set string, out io.Writer) error {
	if read != "" {
		r, err := ch.ReadSensor(read)
		if err != nil {
			return err
		}
		if unit := device.Unit(r.Kind); unit != "" {
			fmt.Fprintf(out, "%s: %s %s\n", r.Kind, device.FormatValue(r.Value), unit)
		} else {
			fmt.Fprintf(out, "%s: %s\n", r.Kind, device.FormatValue(r.Value))
		}
		return nil
	}

	kind, value, err := parseSetFlag(set)
	if err != nil {
		return err
	}
	if err := ch.WriteActuator(kind, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s=%s: %s\n", kind, device.FormatValue(value), device.AckToken)
	return nil
}

// parseSetFlag splits "KIND=VALUE".
func parseSetFlag(s string) (string, float64, error) {
	kind, raw, ok := strings.Cut(s, "=")
	kind = strings.TrimSpace(kind)
	if !ok || kind == "" {
		return "", 0, fmt.Errorf("-set %q: want KIND=VALUE", s)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("-set %q: bad value: %w", s, err)
	}
	return kind, value, nil
}

// parseSensors splits a comma separated list, dropping blanks.
func parseSensors(s string) []string {
	var kinds []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// heartbeatQueue bounds heartbeats waiting on a slow broker.
const heartbeatQueue = 4

type loopOptions struct {
	Actuator    string
	Sensors     []string
	Heartbeat   time.Duration
	Calibration *device.Calibration // nil leaves readings uncorrected
	Now         func() time.Time
}

// runLoop runs the scheduler, and the sampler when sensorTick is non-nil,
// until a signal arrives. Device calls are reported to sink. Heartbeats are
// queued to their own publishing goroutine and dropped when the queue is
// full. On the way out the queue is drained, then a SHUTDOWN system event
// carrying the final status is published.
func runLoop(raw device.Channel, src schedule.Source, sink logic.Sink, publisher mqtt.Publisher, tracker *status.Tracker, opts loopOptions, tick, sensorTick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := raw
	if opts.Calibration != nil {
		dev = device.Calibrated(raw, *opts.Calibration)
	}
	ch := device.Observe(dev, sink)

	beats := make(chan mqtt.SystemEvent, heartbeatQueue)
	var beatsDone sync.WaitGroup
	beatsDone.Add(1)
	go func() {
		defer beatsDone.Done()
		for ev := range beats {
			publishSystem(publisher, ev)
		}
	}()

	sched := scheduler.New(ch, src, sink, scheduler.Options{
		Actuator:  opts.Actuator,
		Heartbeat: opts.Heartbeat,
		Now:       opts.Now,
		OnHeartbeat: func(hb logic.HeartbeatData) {
			log.Printf("heartbeat: uptime=%v relay=%s on=%d off=%d write_failures=%d schedule_errors=%d",
				hb.Uptime, hb.State, hb.Counts.On, hb.Counts.Off, hb.Counts.WriteFailures, hb.Counts.ScheduleErrors)
			select {
			case beats <- statusEvent(tracker, hb.Timestamp, "HEARTBEAT", "", false):
			default:
				log.Printf("heartbeat queue full, dropping heartbeat")
			}
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx, tick)
	}()

	if sensorTick != nil {
		s := sampler.New(ch, opts.Sensors)
		log.Printf("sampling %s", strings.Join(s.Kinds(), ","))
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Run(ctx, sensorTick)
		}()
	}

	s := <-sig
	log.Printf("received %v, shutting down", s)
	cancel()
	wg.Wait()
	close(beats)
	beatsDone.Wait()

	publishStatus(publisher, tracker, opts.Now(), "SHUTDOWN", signalName(s), true)
	return nil
}

// publishStatus sends a system event with a status snapshot when a tracker
// is available.
func publishStatus(publisher mqtt.Publisher, tracker *status.Tracker, at time.Time, event, reason string, retained bool) {
	publishSystem(publisher, statusEvent(tracker, at, event, reason, retained))
}

// statusEvent builds a system event, snapshotting tracker now.
func statusEvent(tracker *status.Tracker, at time.Time, event, reason string, retained bool) mqtt.SystemEvent {
	ev := mqtt.SystemEvent{
		Timestamp: at,
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if tracker != nil {
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	return ev
}

func publishSystem(publisher mqtt.Publisher, ev mqtt.SystemEvent) {
	if err := publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", strings.ToLower(ev.Event), err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
