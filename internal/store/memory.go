package store

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/i474232898/horizon-colors/internal/colors"
)

// Memory is a concurrency-safe in-memory backend with the same key space as
// Dir. Its contents are lost on restart.
type Memory struct {
	mu sync.RWMutex

	// key: date folder, value: slot -> encoded snapshot
	data map[string]map[string][]byte
}

// NewMemory creates an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string][]byte),
	}
}

// Put stores a copy of data at key, replacing any previous value.
func (m *Memory) Put(key colors.Key, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()

	day, ok := m.data[key.Date]
	if !ok {
		day = make(map[string][]byte)
		m.data[key.Date] = day
	}
	day[key.Slot] = buf
	return nil
}

// Get returns the encoded snapshot at key.
func (m *Memory) Get(key colors.Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key.Date][key.Slot]
	if !ok {
		return nil, fmt.Errorf("memory %s: %w", key, fs.ErrNotExist)
	}
	return data, nil
}

// ListDates returns every date with at least one snapshot.
func (m *Memory) ListDates() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dates := make([]string, 0, len(m.data))
	for date := range m.data {
		dates = append(dates, date)
	}
	return dates, nil
}

// ListSlots returns the slots stored for date.
func (m *Memory) ListSlots(date string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day, ok := m.data[date]
	if !ok {
		return nil, fmt.Errorf("memory %s: %w", date, fs.ErrNotExist)
	}
	slots := make([]string, 0, len(day))
	for slot := range day {
		slots = append(slots, slot)
	}
	return slots, nil
}
