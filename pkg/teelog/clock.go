// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Time source for file names and timestamps.

package teelog

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// dayKeyLayout identifies a calendar day.
const dayKeyLayout = "2006-01-02"

// clockSource produces the current time in the configured timezone.
type clockSource struct {
	clock clockwork.Clock
	loc   *time.Location
}

func newClockSource(c clockwork.Clock, loc *time.Location) clockSource {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return clockSource{clock: c, loc: loc}
}

// Now returns the current time in the configured timezone.
func (c clockSource) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// dayKey returns the calendar day of t in t's location.
func dayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// startOfDay returns midnight of the day t falls on, in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
