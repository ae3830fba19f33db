package domain

import "time"

// NextDaily returns the first moment strictly after now at which the wall
// clock in now's location reads c. Computed on calendar dates, so DST days
// still land on the requested wall time.
func NextDaily(now time.Time, c Clock) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()+1, c.Hour, c.Minute, 0, 0, now.Location())
	}
	return at
}
