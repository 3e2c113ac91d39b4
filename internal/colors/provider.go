package colors

import "context"

// Pipeline abstracts the frame capture and color extraction step. It returns
// one color per configured region.
type Pipeline interface {
	Name() string
	Extract(ctx context.Context) (Colors, error)
}

// Store is the contract every snapshot store backend must satisfy.
// Not-found outcomes are reported with errors wrapping ErrNotFound; storage
// failures wrap ErrStoreIO.
type Store interface {
	Write(key Key, c Colors) error
	Latest() (Snapshot, error)
	Exact(date, clock string) (Snapshot, error)
	ForDate(date string) ([]Snapshot, error)
	Recent(maxDays int) ([]Snapshot, error)
	Dates() ([]DateSummary, error)
}
