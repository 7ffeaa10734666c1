package utils

import "time"

// Clock is the single source of "now" and "today".
type Clock interface {
	Now() time.Time
	// Today is the current calendar date in the clock's zone.
	Today() time.Time
}

type SystemClock struct {
	Loc *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{Loc: loc}
}

func (c SystemClock) Now() time.Time   { return time.Now().In(c.Loc) }
func (c SystemClock) Today() time.Time { return DateOf(c.Now()) }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time   { return c.At }
func (c FixedClock) Today() time.Time { return DateOf(c.At) }
