package store

import "github.com/i474232898/horizon-colors/internal/colors"

// Backend holds encoded snapshots addressed by key. Implementations report a
// missing date or file with an error wrapping fs.ErrNotExist. Listings may be
// returned in any order and must only contain well-formed names.
type Backend interface {
	Put(key colors.Key, data []byte) error
	Get(key colors.Key) ([]byte, error)
	ListDates() ([]string, error)
	ListSlots(date string) ([]string, error)
}
