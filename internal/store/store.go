// Package store implements the snapshot store: a date/time-slot addressed
// archive of color readings with latest, exact, per-date and rolling-window
// queries.
//
// Keys are ordered as strings. Because date folders (YYYY-MM-DD) and time
// slots (HH-MM) are fixed-width and zero-padded, descending string order is
// descending chronological order.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/i474232898/horizon-colors/internal/civiltime"
	"github.com/i474232898/horizon-colors/internal/colors"
)

// Store answers snapshot queries on top of a Backend.
type Store struct {
	backend Backend
	conv    *civiltime.Converter

	// fillMu orders cache fills against writes so a slow reader cannot put
	// a replaced value back into the cache.
	fillMu sync.Mutex
	cache  *readCache
	closed atomic.Bool
}

var _ colors.Store = (*Store)(nil)

// New creates a Store. cacheEntries <= 0 disables the read cache.
func New(backend Backend, conv *civiltime.Converter, cacheEntries int) (*Store, error) {
	s := &Store{
		backend: backend,
		conv:    conv,
	}
	if cacheEntries > 0 {
		c, err := newReadCache(cacheEntries)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// Close releases the read cache. Reads and writes keep working afterwards,
// straight against the backend.
func (s *Store) Close() {
	if s.cache == nil {
		return
	}
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	if s.closed.CAS(false, true) {
		s.cache.close()
	}
}

// cached reports whether the read cache is usable.
func (s *Store) cached() bool {
	return s.cache != nil && !s.closed.Load()
}

// Write stores c at key. An existing snapshot at the same key is replaced.
func (s *Store) Write(key colors.Key, c colors.Colors) error {
	if !civiltime.ValidDate(key.Date) || !civiltime.ValidSlot(key.Slot) {
		return fmt.Errorf("%w: malformed key %q", colors.ErrValidation, key)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", colors.ErrStoreIO, key, err)
	}

	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	if err := s.backend.Put(key, data); err != nil {
		return fmt.Errorf("%w: %v", colors.ErrStoreIO, err)
	}
	if s.cached() {
		s.cache.del(key)
	}
	return nil
}

// Latest returns the newest snapshot in the newest non-empty date.
func (s *Store) Latest() (colors.Snapshot, error) {
	dates, err := s.sortedDates(true)
	if err != nil {
		return colors.Snapshot{}, err
	}
	for _, date := range dates {
		slots, err := s.sortedSlots(date, true)
		if err != nil {
			if errors.Is(err, colors.ErrNotFound) {
				continue
			}
			return colors.Snapshot{}, err
		}
		if len(slots) == 0 {
			continue
		}
		return s.read(colors.Key{Date: date, Slot: slots[0]})
	}
	return colors.Snapshot{}, colors.ErrNoData
}

// Exact returns the snapshot at date and clock. clock may be H:MM, HH:MM or
// HH-MM.
func (s *Store) Exact(date, clock string) (colors.Snapshot, error) {
	if !civiltime.ValidDate(date) {
		return colors.Snapshot{}, fmt.Errorf("%w: %v", colors.ErrValidation, civiltime.ErrInvalidDate)
	}
	slot, err := civiltime.NormalizeSlot(clock)
	if err != nil {
		return colors.Snapshot{}, fmt.Errorf("%w: %v", colors.ErrValidation, err)
	}
	return s.read(colors.Key{Date: date, Slot: slot})
}

// ForDate returns every snapshot of date in ascending time order.
// A missing date reports ErrUnknownDate; a date folder without snapshots
// reports ErrEmptyDate.
func (s *Store) ForDate(date string) ([]colors.Snapshot, error) {
	if !civiltime.ValidDate(date) {
		return nil, fmt.Errorf("%w: %v", colors.ErrValidation, civiltime.ErrInvalidDate)
	}
	slots, err := s.sortedSlots(date, false)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: %s", colors.ErrEmptyDate, date)
	}

	out := make([]colors.Snapshot, 0, len(slots))
	for _, slot := range slots {
		snap, err := s.read(colors.Key{Date: date, Slot: slot})
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Recent returns all snapshots of the newest maxDays dates, newest first.
func (s *Store) Recent(maxDays int) ([]colors.Snapshot, error) {
	dates, err := s.sortedDates(true)
	if err != nil {
		return nil, err
	}
	if maxDays > 0 && len(dates) > maxDays {
		dates = dates[:maxDays]
	}

	var out []colors.Snapshot
	for _, date := range dates {
		snaps, err := s.ForDate(date)
		if err != nil {
			if errors.Is(err, colors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, snaps...)
	}

	// Per-date lists are ascending; only a global sort yields newest first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Dates summarizes every date folder, newest first.
func (s *Store) Dates() ([]colors.DateSummary, error) {
	dates, err := s.sortedDates(true)
	if err != nil {
		return nil, err
	}

	out := make([]colors.DateSummary, 0, len(dates))
	for _, date := range dates {
		slots, err := s.sortedSlots(date, false)
		if err != nil {
			if errors.Is(err, colors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		summary := colors.DateSummary{Date: date, Count: len(slots)}
		if len(slots) > 0 {
			summary.FirstTime = civiltime.SlotLabel(slots[0])
			summary.LastTime = civiltime.SlotLabel(slots[len(slots)-1])
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Store) read(key colors.Key) (colors.Snapshot, error) {
	if s.cached() {
		if snap, ok := s.cache.get(key); ok {
			return snap, nil
		}
		s.fillMu.Lock()
		defer s.fillMu.Unlock()
	}

	data, err := s.backend.Get(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return colors.Snapshot{}, fmt.Errorf("%w: %s", colors.ErrNotFound, key)
		}
		return colors.Snapshot{}, fmt.Errorf("%w: read %s: %v", colors.ErrStoreIO, key, err)
	}

	var c colors.Colors
	if err := json.Unmarshal(data, &c); err != nil {
		return colors.Snapshot{}, fmt.Errorf("%w: decode %s: %v", colors.ErrStoreIO, key, err)
	}
	ts, err := s.conv.ToInstant(key.Date, key.Slot)
	if err != nil {
		return colors.Snapshot{}, fmt.Errorf("%w: %s: %v", colors.ErrStoreIO, key, err)
	}

	snap := colors.Snapshot{Key: key, Colors: c, Timestamp: ts}
	if s.cached() {
		s.cache.set(snap)
	}
	return snap, nil
}

func (s *Store) sortedDates(desc bool) ([]string, error) {
	dates, err := s.backend.ListDates()
	if err != nil {
		return nil, fmt.Errorf("%w: list dates: %v", colors.ErrStoreIO, err)
	}
	sortKeys(dates, desc)
	return dates, nil
}

func (s *Store) sortedSlots(date string, desc bool) ([]string, error) {
	slots, err := s.backend.ListSlots(date)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", colors.ErrUnknownDate, date)
		}
		return nil, fmt.Errorf("%w: list %s: %v", colors.ErrStoreIO, date, err)
	}
	sortKeys(slots, desc)
	return slots, nil
}

func sortKeys(keys []string, desc bool) {
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
		return
	}
	sort.Strings(keys)
}
