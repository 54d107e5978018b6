package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 8, 14, 16, 30, 0, 0, time.UTC)

	cases := []struct {
		period    string
		wantName  string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"current-month", PeriodCurrentMonth, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), now},
		{"last-month", PeriodLastMonth, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 31, 23, 59, 59, 999999999, time.UTC)},
		{"current-quarter", PeriodCurrentQuarter, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), now},
		{"current-year", PeriodCurrentYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), now},
		{"", DefaultPeriod, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), now},
		{"fortnight", DefaultPeriod, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), now},
	}
	for _, tc := range cases {
		t.Run(tc.period, func(t *testing.T) {
			name, dr := ResolvePeriod(tc.period, now)
			assert.Equal(t, tc.wantName, name)
			assert.True(t, tc.wantStart.Equal(dr.StartDate), "start %s", dr.StartDate)
			assert.True(t, tc.wantEnd.Equal(dr.EndDate), "end %s", dr.EndDate)
		})
	}
}

func TestLastMonthAcrossYear(t *testing.T) {
	_, dr := ResolvePeriod(PeriodLastMonth, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), dr.StartDate)
	assert.Equal(t, 31, dr.EndDate.Day())
}

func TestIsValidType(t *testing.T) {
	assert.Len(t, Types, 28)
	assert.True(t, IsValidType(TypeFollowUpEfficiency))
	assert.False(t, IsValidType("made-up"))
}
