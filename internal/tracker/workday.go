package tracker

import "time"

// DayWindow returns the [start, end) workday containing now, where a workday
// begins at hour:minute local time instead of midnight.
func DayWindow(now time.Time, hour, minute int) (time.Time, time.Time) {
	resetToday := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	start := resetToday
	if now.Before(resetToday) {
		start = resetToday.AddDate(0, 0, -1)
	}
	return start, start.AddDate(0, 0, 1)
}

// DayKey identifies a workday by the calendar date of its start.
func DayKey(start time.Time) string {
	return start.Format("2006-01-02")
}
