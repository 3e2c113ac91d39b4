// Package civiltime converts between storage keys expressed as wall-clock
// date/time in one named timezone and absolute instants.
//
// Both key formats are fixed-width and zero-padded, so lexicographic order
// of keys equals chronological order within a zone. Nothing in this package
// may emit a key in any other format.
//
// Conversions go through time.Date with a *time.Location loaded from the IANA
// database, so the offset is always the one in effect on the converted
// calendar date. Wall-clock times that fall inside a daylight-saving gap or
// overlap are resolved the way time.Date resolves them: a time in a gap is
// shifted forward by the gap length, a time in an overlap maps to one of the
// two candidate instants. Round trips are therefore only guaranteed outside
// those windows.
package civiltime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	// Embedded zoneinfo keeps conversions independent of the host image.
	_ "time/tzdata"
)

const (
	// DateLayout is the layout of date folders, e.g. 2025-09-28.
	DateLayout = "2006-01-02"
	// SlotLayout is the layout of time-slot keys, e.g. 22-45.
	SlotLayout = "15-04"
	// ClockLayout is the display form of a time slot, e.g. 22:45.
	ClockLayout = "15:04"
)

var (
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidTime is returned for a time that is not H:MM, HH:MM or HH-MM.
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")

	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slotPattern  = regexp.MustCompile(`^\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^(\d{1,2})[:-](\d{2})$`)
)

// Converter maps keys to instants and back for a single zone.
type Converter struct {
	loc *time.Location
}

// New loads the named IANA zone.
func New(zone string) (*Converter, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("civiltime: load zone %q: %w", zone, err)
	}
	return &Converter{loc: loc}, nil
}

// NewWithLocation wraps an already loaded location.
func NewWithLocation(loc *time.Location) *Converter {
	return &Converter{loc: loc}
}

// Location returns the target zone.
func (c *Converter) Location() *time.Location {
	return c.loc
}

// ToInstant returns the UTC instant denoted by a date folder and time slot.
func (c *Converter) ToInstant(date, slot string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if !ValidSlot(slot) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, slot)
	}
	hour, minute, err := splitClock(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, c.loc).UTC(), nil
}

// ToCivil returns the date folder and time slot of t in the target zone.
// Seconds are truncated.
func (c *Converter) ToCivil(t time.Time) (date, slot string) {
	local := t.In(c.loc)
	return local.Format(DateLayout), local.Format(SlotLayout)
}

// Format renders t in the target zone for display.
func (c *Converter) Format(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02 15:04 MST")
}

// ParseDate validates a date folder name and returns it as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}

// ValidDate reports whether date is a well-formed date folder name.
func ValidDate(date string) bool {
	_, err := ParseDate(date)
	return err == nil
}

// ValidSlot reports whether slot is a well-formed HH-MM key.
func ValidSlot(slot string) bool {
	if !slotPattern.MatchString(slot) {
		return false
	}
	_, _, err := splitClock(slot)
	return err == nil
}

// NormalizeSlot turns user input such as "9:05", "09:05" or "09-05" into the
// HH-MM storage form.
func NormalizeSlot(clock string) (string, error) {
	hour, minute, err := splitClock(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d-%02d", hour, minute), nil
}

// SlotLabel renders a HH-MM key as HH:MM.
func SlotLabel(slot string) string {
	if len(slot) != 5 {
		return slot
	}
	return slot[:2] + ":" + slot[3:]
}

func splitClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return hour, minute, nil
}
