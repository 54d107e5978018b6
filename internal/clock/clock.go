package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)

// DaysBetween returns the whole days from start to end, or zero when end is
// before start.
func DaysBetween(start, end time.Time) int {
	if start.IsZero() || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// DaysUntil returns the signed whole days from now to t.
func DaysUntil(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
