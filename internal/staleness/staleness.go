// Package staleness decides whether data fetched from the quote provider can be
// reused. Cached values are good for the calendar day they were fetched on; there
// is no finer TTL and no expiry sweep, the check runs only when data is read.
package staleness

import "time"

// Policy reports whether a value last refreshed at last is still usable at now.
type Policy interface {
	IsFresh(last *time.Time, now time.Time) bool
}

// Daily treats a value as fresh only on the calendar day it was fetched, using
// the location of now (the server's local time in production).
type Daily struct{}

// IsFresh returns false for a nil timestamp.
func (Daily) IsFresh(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return SameDay(*last, now)
}

// SameDay compares calendar dates of a and b in b's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Clock provides the current time. Services take a Clock so tests can freeze it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in the server's local time zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
