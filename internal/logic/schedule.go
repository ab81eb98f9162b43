package logic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date, stored as the offset from
// midnight with second precision.
type TimeOfDay time.Duration

// Day is the length of the daily schedule cycle.
const Day = TimeOfDay(24 * time.Hour)

// NewTimeOfDay builds a TimeOfDay from hour, minute and second.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// TimeOfDayOf returns the time of day of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" (24 hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("time of day %q: want HH:MM", s)
	}

	limits := []int{23, 59, 59}
	var fields [3]int
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("time of day %q: bad field %q", s, p)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("time of day %q: bad field %q", s, p)
		}
		fields[i] = n
	}
	return NewTimeOfDay(fields[0], fields[1], fields[2]), nil
}

// String formats as HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Window is a daily-recurring ON interval: inclusive On, exclusive Off.
type Window struct {
	On  TimeOfDay
	Off TimeOfDay
}

// Overnight reports whether the window wraps past midnight.
func (w Window) Overnight() bool {
	return w.On > w.Off
}

func (w Window) String() string {
	return w.On.String() + "-" + w.Off.String()
}

// Evaluate returns the desired relay state at now for the window.
//
// Same-day windows are ON for On <= now < Off. Overnight windows (On > Off)
// are ON for now >= On or now < Off. A zero-width window (On == Off) is
// always OFF.
func Evaluate(now TimeOfDay, w Window) State {
	switch {
	case w.On == w.Off:
		return StateOff
	case w.On < w.Off:
		if w.On <= now && now < w.Off {
			return StateOn
		}
	default:
		if now >= w.On || now < w.Off {
			return StateOn
		}
	}
	return StateOff
}

// Desired is Evaluate applied to the time of day of t.
func (w Window) Desired(t time.Time) State {
	return Evaluate(TimeOfDayOf(t), w)
}
