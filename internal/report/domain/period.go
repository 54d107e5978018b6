package domain

import (
	"strings"
	"time"
)

const (
	PeriodCurrentMonth   = "current-month"
	PeriodLastMonth      = "last-month"
	PeriodCurrentQuarter = "current-quarter"
	PeriodCurrentYear    = "current-year"

	DefaultPeriod = PeriodCurrentMonth
)

// ResolvePeriod maps a period name onto a date range ending at now. Unknown
// or empty names resolve to the current month; the returned name is the
// one actually applied.
func ResolvePeriod(period string, now time.Time) (string, DateRange) {
	period = strings.ToLower(strings.TrimSpace(period))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodLastMonth:
		start := monthStart.AddDate(0, -1, 0)
		return period, DateRange{StartDate: start, EndDate: monthStart.Add(-time.Nanosecond)}
	case PeriodCurrentQuarter:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start := time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
		return period, DateRange{StartDate: start, EndDate: now}
	case PeriodCurrentYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return period, DateRange{StartDate: start, EndDate: now}
	case PeriodCurrentMonth:
		return period, DateRange{StartDate: monthStart, EndDate: now}
	default:
		return DefaultPeriod, DateRange{StartDate: monthStart, EndDate: now}
	}
}
