// Package calendar holds the canonical calendar-date representation used for
// attendance: an ISO-8601 YYYY-MM-DD day stored as midnight UTC.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the only accepted wire format for dates.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string into a canonical date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// DateOf truncates t to its calendar day in t's own location and returns that
// day as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clock decides which calendar day is "today".
type Clock interface {
	Today() time.Time
}

type zonedClock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock that evaluates the current day in loc.
func NewClock(loc *time.Location) Clock {
	return NewClockFunc(loc, time.Now)
}

// NewClockFunc is NewClock with an injectable time source.
func NewClockFunc(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &zonedClock{loc: loc, now: now}
}

func (c *zonedClock) Today() time.Time {
	return DateOf(c.now().In(c.loc))
}

// FixedClock always reports the same day. Useful in tests.
type FixedClock time.Time

func (f FixedClock) Today() time.Time {
	return DateOf(time.Time(f))
}
