package colors

import (
	"fmt"
	"time"

	"github.com/i474232898/horizon-colors/internal/civiltime"
	"github.com/i474232898/horizon-colors/internal/interval"
)

// Query holds the optional date (YYYY-MM-DD) and time (H:MM or HH:MM)
// parameters of a lookup.
type Query struct {
	Date string
	Time string
}

// Stamp is an instant with its civil rendering.
type Stamp struct {
	Timestamp time.Time `json:"timestamp"`
	Formatted string    `json:"formatted"`
}

// NextUpdate describes the upcoming refresh boundary.
type NextUpdate struct {
	Timestamp     time.Time `json:"timestamp"`
	Formatted     string    `json:"formatted"`
	TimeRemaining string    `json:"timeRemaining"`
}

// Metadata accompanies a single reading. CacheAge and NextUpdate are only
// set for the current reading.
type Metadata struct {
	IsHistoricalData bool        `json:"isHistoricalData"`
	LastUpdated      Stamp       `json:"lastUpdated"`
	CacheAge         string      `json:"cacheAge,omitempty"`
	NextUpdate       *NextUpdate `json:"nextUpdate,omitempty"`
}

// Reading is a single snapshot as served to clients.
type Reading struct {
	Colors   Colors   `json:"colors"`
	Metadata Metadata `json:"metadata"`
}

// Entry is one snapshot within a list.
type Entry struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
	Formatted string    `json:"formatted"`
	Colors    Colors    `json:"colors"`
}

// DayReadings lists every snapshot of one date, oldest first.
type DayReadings struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Snapshots []Entry `json:"snapshots"`
}

// RecentReadings lists the snapshots of the newest days, newest first.
type RecentReadings struct {
	Days      int     `json:"days"`
	Count     int     `json:"count"`
	Snapshots []Entry `json:"snapshots"`
}

// AvailableDates summarizes the archive.
type AvailableDates struct {
	Dates  []DateSummary `json:"dates"`
	Latest string        `json:"latest,omitempty"`
	Oldest string        `json:"oldest,omitempty"`
	Total  int           `json:"total"`
}

// Result carries exactly one of Reading or Day.
type Result struct {
	Reading *Reading
	Day     *DayReadings
}

// Resolver turns queries into store lookups and decorates the results.
type Resolver struct {
	store           Store
	conv            *civiltime.Converter
	intervalMinutes int
	now             func() time.Time
}

// NewResolver creates a Resolver for a refresh cadence of intervalMinutes.
func NewResolver(store Store, conv *civiltime.Converter, intervalMinutes int) *Resolver {
	return &Resolver{
		store:           store,
		conv:            conv,
		intervalMinutes: intervalMinutes,
		now:             time.Now,
	}
}

// Resolve dispatches on which parameters are present:
// none -> latest, date and time -> exact, date only -> whole day.
// A time without a date is rejected.
func (r *Resolver) Resolve(q Query) (Result, error) {
	switch {
	case q.Date == "" && q.Time == "":
		reading, err := r.Current()
		if err != nil {
			return Result{}, err
		}
		return Result{Reading: &reading}, nil

	case q.Date == "":
		return Result{}, fmt.Errorf("%w: time requires a date, e.g. ?date=2025-09-28&time=%s", ErrValidation, q.Time)
	}

	if !civiltime.ValidDate(q.Date) {
		return Result{}, fmt.Errorf("%w: date must be YYYY-MM-DD, e.g. 2025-09-28", ErrValidation)
	}

	if q.Time == "" {
		day, err := r.Day(q.Date)
		if err != nil {
			return Result{}, err
		}
		return Result{Day: &day}, nil
	}

	if _, err := civiltime.NormalizeSlot(q.Time); err != nil || !isClock(q.Time) {
		return Result{}, fmt.Errorf("%w: time must be H:MM or HH:MM, e.g. 22:30", ErrValidation)
	}
	reading, err := r.At(q.Date, q.Time)
	if err != nil {
		return Result{}, err
	}
	return Result{Reading: &reading}, nil
}

// Current returns the newest reading with cache-age and next-boundary data.
func (r *Resolver) Current() (Reading, error) {
	snap, err := r.store.Latest()
	if err != nil {
		return Reading{}, err
	}

	now := r.now()
	next := interval.NextBoundary(now, r.intervalMinutes, r.conv.Location())

	reading := r.reading(snap, false)
	reading.Metadata.CacheAge = interval.AgeLabel(now.Sub(snap.Timestamp))
	reading.Metadata.NextUpdate = &NextUpdate{
		Timestamp:     next,
		Formatted:     r.conv.Format(next),
		TimeRemaining: interval.RemainingLabel(interval.TimeRemaining(now, next)),
	}
	return reading, nil
}

// At returns the reading stored for date and clock.
func (r *Resolver) At(date, clock string) (Reading, error) {
	snap, err := r.store.Exact(date, clock)
	if err != nil {
		return Reading{}, err
	}
	return r.reading(snap, true), nil
}

// Day returns every reading of date, oldest first.
func (r *Resolver) Day(date string) (DayReadings, error) {
	snaps, err := r.store.ForDate(date)
	if err != nil {
		return DayReadings{}, err
	}
	return DayReadings{
		Date:      date,
		Count:     len(snaps),
		Snapshots: r.entries(snaps),
	}, nil
}

// Recent returns the readings of the newest maxDays dates, newest first.
func (r *Resolver) Recent(maxDays int) (RecentReadings, error) {
	snaps, err := r.store.Recent(maxDays)
	if err != nil {
		return RecentReadings{}, err
	}
	return RecentReadings{
		Days:      maxDays,
		Count:     len(snaps),
		Snapshots: r.entries(snaps),
	}, nil
}

// AvailableDates lists every date folder, newest first, with the newest and
// oldest dates that hold data.
func (r *Resolver) AvailableDates() (AvailableDates, error) {
	dates, err := r.store.Dates()
	if err != nil {
		return AvailableDates{}, err
	}

	out := AvailableDates{Dates: dates, Total: len(dates)}
	for _, d := range dates {
		if d.Count == 0 {
			continue
		}
		if out.Latest == "" {
			out.Latest = d.Date
		}
		out.Oldest = d.Date
	}
	return out, nil
}

func (r *Resolver) reading(snap Snapshot, historical bool) Reading {
	return Reading{
		Colors: snap.Colors,
		Metadata: Metadata{
			IsHistoricalData: historical,
			LastUpdated: Stamp{
				Timestamp: snap.Timestamp,
				Formatted: r.conv.Format(snap.Timestamp),
			},
		},
	}
}

func (r *Resolver) entries(snaps []Snapshot) []Entry {
	out := make([]Entry, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, Entry{
			Date:      s.Key.Date,
			Time:      s.Key.Clock(),
			Timestamp: s.Timestamp,
			Formatted: r.conv.Format(s.Timestamp),
			Colors:    s.Colors,
		})
	}
	return out
}

// isClock accepts H:MM and HH:MM but not the HH-MM storage form.
func isClock(s string) bool {
	n := len(s)
	return n >= 4 && s[n-3] == ':'
}
