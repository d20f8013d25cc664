// Package engine holds the analytics and recommendation core: pure functions
// over a snapshot of sessions and courses plus the current instant. Nothing
// here touches the database, the network, or the clock directly.
package engine

import (
	"math"
	"time"
)

// weekDuration is the trailing window used for "this week" totals.
const weekDuration = 7 * 24 * time.Hour

// DayStart returns midnight of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole-day difference b-a on midnight-normalized
// dates. Rounding absorbs DST offsets so the result is never fractional.
func DaysBetween(a, b time.Time) int {
	d := DayStart(b).Sub(DayStart(a))
	return int(math.Round(d.Hours() / 24))
}

// WeekStart returns the start of the trailing 7-day instant window ending at
// now. The "this week" filter is date >= WeekStart(now); the daily series in
// analytics.go buckets by calendar day instead and must not use this.
func WeekStart(now time.Time) time.Time {
	return now.Add(-weekDuration)
}

// inWeek reports whether date falls within the trailing 7-day window.
func inWeek(date, now time.Time) bool {
	return !date.Before(WeekStart(now))
}

// sameDay reports calendar-date equality, ignoring time of day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
