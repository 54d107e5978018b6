package clock

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 0},
		{"just under a day", start.Add(23 * time.Hour), 0},
		{"ten days", start.AddDate(0, 0, 10), 10},
		{"end before start", start.Add(-48 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(start, tc.end); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
	if got := DaysBetween(time.Time{}, start); got != 0 {
		t.Fatalf("zero start should yield 0, got %d", got)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	c := NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Advance(36 * time.Hour)
	if got := DaysUntil(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), c.Now()); got != 1 {
		t.Fatalf("expected 1 day, got %d", got)
	}
}
