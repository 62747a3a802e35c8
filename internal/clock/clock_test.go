package clock

import (
	"testing"
	"time"
)

func TestNextMidnightProperties(t *testing.T) {
	base := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, time.Millisecond, 10 * time.Hour, 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond} {
		now := base.Add(offset)
		next := NextMidnight(now)
		if !next.After(now) {
			t.Fatalf("NextMidnight(%v) = %v, want later", now, next)
		}
		if got := next.Sub(StartOfDay(now)); got != Day {
			t.Fatalf("NextMidnight - StartOfDay = %v at %v, want %v", got, now, Day)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2024, time.March, 4, 13, 45, 12, 500, time.UTC)
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(now); !got.Equal(want) {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
	if got := PreviousDayStart(now); !got.Equal(want.Add(-Day)) {
		t.Fatalf("PreviousDayStart = %v, want %v", got, want.Add(-Day))
	}
}

func TestNextMidnightCrossesMonthAndYear(t *testing.T) {
	now := time.Date(2023, time.December, 31, 18, 0, 0, 0, time.UTC)
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := NextMidnight(now); !got.Equal(want) {
		t.Fatalf("NextMidnight = %v, want %v", got, want)
	}
}

func TestIsSameDay(t *testing.T) {
	mon := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same instant", mon, mon, true},
		{"morning and night", mon.Add(time.Hour), mon.Add(23 * time.Hour), true},
		{"across midnight", mon.Add(23*time.Hour + 59*time.Minute), mon.Add(Day), false},
		{"zero a", time.Time{}, mon, false},
		{"zero b", mon, time.Time{}, false},
	}
	for _, tt := range tests {
		if got := IsSameDay(tt.a, tt.b); got != tt.want {
			t.Fatalf("%s: IsSameDay = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMillisRoundTrip(t *testing.T) {
	if !FromMillis(0).IsZero() {
		t.Fatalf("expected zero time for 0 ms")
	}
	if !FromMillis(-5).IsZero() {
		t.Fatalf("expected zero time for negative ms")
	}
	if Millis(time.Time{}) != 0 {
		t.Fatalf("expected 0 ms for zero time")
	}
	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	if got := FromMillis(Millis(now)); !got.Equal(now) {
		t.Fatalf("round trip = %v, want %v", got, now)
	}
}

func TestMockAdvance(t *testing.T) {
	start := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	m := NewMock(start)
	m.Advance(90 * time.Minute)
	if got := m.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("Now = %v after advance", got)
	}
	m.Set(start)
	if got := m.Now(); !got.Equal(start) {
		t.Fatalf("Now = %v after set", got)
	}
}
