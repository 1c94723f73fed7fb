package matchweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday rolls to thursday", date(2026, time.August, 31, 10), date(2026, time.September, 3, 0)},
		{"wednesday rolls to thursday", date(2026, time.September, 2, 23), date(2026, time.September, 3, 0)},
		{"thursday before cutover is today", date(2026, time.September, 3, 9), date(2026, time.September, 3, 0)},
		{"thursday after cutover rolls a week", date(2026, time.September, 3, 19), date(2026, time.September, 10, 0)},
		{"friday rolls to next thursday", date(2026, time.September, 4, 8), date(2026, time.September, 10, 0)},
		{"sunday rolls to next thursday", date(2026, time.September, 6, 12), date(2026, time.September, 10, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.now))
		})
	}
}

func TestWeekendWindow(t *testing.T) {
	// Monday Aug 31 2026 -> window Fri Sep 4 .. Sun Sep 6 end-of-day.
	start, end := WeekendWindow(date(2026, time.August, 31, 10))
	require.Equal(t, date(2026, time.September, 4, 0), start)
	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 6, end.Day())

	// Friday itself is inside its own window.
	start, _ = WeekendWindow(date(2026, time.September, 4, 15))
	assert.Equal(t, date(2026, time.September, 4, 0), start)

	// Saturday rolls forward to the next weekend.
	start, _ = WeekendWindow(date(2026, time.September, 5, 15))
	assert.Equal(t, date(2026, time.September, 11, 0), start)
}

func TestSameWeek(t *testing.T) {
	a := date(2026, time.September, 3, 0)
	b := date(2026, time.September, 3, 17)
	assert.True(t, SameWeek(a, b))
	assert.False(t, SameWeek(a, date(2026, time.September, 10, 0)))
}
