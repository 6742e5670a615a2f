// Package timeutil holds the calendar arithmetic shared by the booking
// workflow and the reminder scheduler. Every function interprets its
// arguments in their own location, so callers decide what "local" means.
package timeutil

import "time"

// IsSameCalendarDay reports whether a and b fall on the same year, month
// and day. b is converted into a's location before comparing.
func IsSameCalendarDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsFuture reports whether instant is strictly after now.
func IsFuture(instant, now time.Time) bool {
	return instant.After(now)
}

// StartOfDay returns 00:00:00 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMidnight returns 00:00:00 of the day following t. When t is exactly
// midnight the result is a full day ahead, never t itself.
func NextMidnight(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

// UntilNextMidnight returns how long it is from now until the next local
// midnight. Across DST changes the result follows the wall clock, so a
// day may be 23 or 25 hours long.
func UntilNextMidnight(now time.Time) time.Duration {
	d := NextMidnight(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// DayBounds returns the first and last second of t's calendar day, the
// range used for single-day slot searches.
func DayBounds(t time.Time) (start, end time.Time) {
	start = StartOfDay(t)
	end = NextMidnight(start).Add(-time.Second)
	return start, end
}
