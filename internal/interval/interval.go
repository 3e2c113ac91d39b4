// Package interval computes refresh boundaries aligned to fixed minute
// intervals in civil time.
package interval

import (
	"fmt"
	"time"
)

// NextBoundary returns the first aligned boundary strictly after now.
//
// The minute of the hour is rounded up to the next multiple of minutes in the
// zone of loc. A now that sits exactly on a boundary advances to the following
// one, so NextBoundary(NextBoundary(t)) is always later than NextBoundary(t).
// When rounding reaches or passes 60 the boundary rolls to minute 0 of the
// next hour.
//
// The boundary is placed using the UTC offset in effect at now, so it is never
// more than minutes away. Across a DST change this is the next boundary the
// wall clock shows: at 02:50 CEST on the fall-back date the result is 02:00
// CET, ten minutes later, not 03:00 CET.
func NextBoundary(now time.Time, minutes int, loc *time.Location) time.Time {
	if minutes <= 0 || minutes > 60 {
		minutes = 60
	}
	civil := now.In(loc)
	name, offset := civil.Zone()

	hour := civil.Hour()
	minute := (civil.Minute()/minutes + 1) * minutes
	if minute >= 60 {
		hour++
		minute = 0
	}
	return time.Date(civil.Year(), civil.Month(), civil.Day(), hour, minute, 0, 0, time.FixedZone(name, offset)).UTC()
}

// TimeRemaining returns boundary - now, floored at zero.
func TimeRemaining(now, boundary time.Time) time.Duration {
	d := boundary.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RemainingLabel renders the time until a boundary.
func RemainingLabel(d time.Duration) string {
	switch {
	case d <= 0:
		return "overdue"
	case d < time.Minute:
		return "in less than a minute"
	}
	n := int(d / time.Minute)
	if n == 1 {
		return "in 1 minute"
	}
	return fmt.Sprintf("in %d minutes", n)
}

// AgeLabel renders how long ago a reading was taken.
func AgeLabel(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 48*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	}
	return plural(int(d/(24*time.Hour)), "day") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
