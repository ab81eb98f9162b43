package logic

import (
	"testing"
	"time"
)

func tod(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return v
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"00:00", 0},
		{"08:00", NewTimeOfDay(8, 0, 0)},
		{"8:05", NewTimeOfDay(8, 5, 0)},
		{"23:59", NewTimeOfDay(23, 59, 0)},
		{"06:30:15", NewTimeOfDay(6, 30, 15)},
		{" 22:00 ", NewTimeOfDay(22, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, in := range []string{"", "8", "24:00", "12:60", "12:00:60", "ab:cd", "12:-1", "123:00", "12:00:00:00", "12:"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", in)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := NewTimeOfDay(8, 0, 0).String(); got != "08:00" {
		t.Errorf("got %q, want 08:00", got)
	}
	if got := NewTimeOfDay(23, 5, 9).String(); got != "23:05:09" {
		t.Errorf("got %q, want 23:05:09", got)
	}
	w := Window{On: NewTimeOfDay(22, 0, 0), Off: NewTimeOfDay(6, 0, 0)}
	if got := w.String(); got != "22:00-06:00" {
		t.Errorf("window: got %q", got)
	}
}

func TestTimeOfDayOf(t *testing.T) {
	ts := time.Date(2026, 3, 4, 17, 45, 30, 999, time.UTC)
	if got := TimeOfDayOf(ts); got != NewTimeOfDay(17, 45, 30) {
		t.Errorf("got %v", got)
	}
}

func TestEvaluateSameDay(t *testing.T) {
	w := Window{On: tod(t, "08:00"), Off: tod(t, "20:00")}
	if w.Overnight() {
		t.Fatal("08:00-20:00 should not be overnight")
	}

	tests := []struct {
		now  string
		want State
	}{
		{"00:00", StateOff},
		{"07:59:59", StateOff},
		{"08:00", StateOn}, // inclusive start
		{"09:00", StateOn},
		{"19:59:59", StateOn},
		{"20:00", StateOff}, // exclusive end
		{"23:59:59", StateOff},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			if got := Evaluate(tod(t, tt.now), w); got != tt.want {
				t.Errorf("Evaluate(%s): got %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestEvaluateOvernight(t *testing.T) {
	w := Window{On: tod(t, "22:00"), Off: tod(t, "06:00")}
	if !w.Overnight() {
		t.Fatal("22:00-06:00 should be overnight")
	}

	tests := []struct {
		now  string
		want State
	}{
		{"22:00", StateOn},
		{"23:00", StateOn},
		{"00:00", StateOn},
		{"05:59", StateOn},
		{"05:59:59", StateOn},
		{"06:00", StateOff},
		{"12:00", StateOff},
		{"21:59", StateOff},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			if got := Evaluate(tod(t, tt.now), w); got != tt.want {
				t.Errorf("Evaluate(%s): got %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestEvaluateZeroWidthAlwaysOff(t *testing.T) {
	w := Window{On: tod(t, "10:00"), Off: tod(t, "10:00")}
	for now := TimeOfDay(0); now < Day; now += TimeOfDay(time.Minute) {
		if got := Evaluate(now, w); got != StateOff {
			t.Fatalf("Evaluate(%s): got %s, want OFF", now, got)
		}
	}
}

func TestEvaluateExhaustiveAgainstDefinition(t *testing.T) {
	windows := []Window{
		{On: tod(t, "08:00"), Off: tod(t, "20:00")},
		{On: tod(t, "00:00"), Off: tod(t, "00:01")},
		{On: tod(t, "23:59"), Off: tod(t, "00:00")},
		{On: tod(t, "18:30"), Off: tod(t, "07:15")},
	}
	for _, w := range windows {
		for now := TimeOfDay(0); now < Day; now += TimeOfDay(time.Minute) {
			var on bool
			if w.On < w.Off {
				on = w.On <= now && now < w.Off
			} else {
				on = now >= w.On || now < w.Off
			}
			want := StateOff
			if on {
				want = StateOn
			}
			if got := Evaluate(now, w); got != want {
				t.Fatalf("window %s at %s: got %s, want %s", w, now, got, want)
			}
		}
	}
}

func TestWindowDesired(t *testing.T) {
	w := Window{On: tod(t, "08:00"), Off: tod(t, "20:00")}
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	if got := w.Desired(at); got != StateOn {
		t.Errorf("got %s, want ON", got)
	}
}

func TestStateValue(t *testing.T) {
	if StateOn.Value() != 1 {
		t.Errorf("ON value: got %v", StateOn.Value())
	}
	if StateOff.Value() != 0 {
		t.Errorf("OFF value: got %v", StateOff.Value())
	}
}
