// Package matchweek computes the Thursday anchor date that scopes one weekly
// allocation cycle, and the Friday-to-Sunday window the weekend flow books
// against. All exclusions and new groups are keyed by the anchor date.
package matchweek

import "time"

// CutoverHour is the hour (local to the passed-in time) on Thursday after
// which a run belongs to the following week's cycle.
const CutoverHour = 18

// Next returns the match-week anchor for now: today if now is a Thursday
// before the cutover hour, otherwise the next Thursday. The result is
// truncated to midnight in now's location.
func Next(now time.Time) time.Time {
	day := midnight(now)
	offset := (int(time.Thursday) - int(now.Weekday()) + 7) % 7
	if offset == 0 && now.Hour() >= CutoverHour {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

// WeekendWindow returns the [start, end] bounds of the upcoming weekend:
// the current week's Friday at midnight (today, if now is a Friday) through
// the following Sunday end-of-day. On Saturday or Sunday the window rolls to
// the next weekend, matching the booking horizon.
func WeekendWindow(now time.Time) (time.Time, time.Time) {
	day := midnight(now)
	offset := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	start := day.AddDate(0, 0, offset)
	end := start.AddDate(0, 0, 3).Add(-time.Second) // Sunday 23:59:59
	return start, end
}

// SameWeek reports whether two anchors name the same cycle.
func SameWeek(a, b time.Time) bool {
	return midnight(a).Equal(midnight(b))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
