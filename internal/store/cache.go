package store

import (
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/i474232898/horizon-colors/internal/colors"
)

// readCache keeps decoded snapshots by key. Every entry costs 1 and
// ristretto's internal per-item cost is ignored, so maxEntries bounds the
// number of cached snapshots.
type readCache struct {
	c *ristretto.Cache
}

func newReadCache(maxEntries int) (*readCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(maxEntries) * 10,
		MaxCost:     int64(maxEntries),
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: read cache: %w", err)
	}
	return &readCache{c: c}, nil
}

func (r *readCache) get(key colors.Key) (colors.Snapshot, bool) {
	v, ok := r.c.Get(key.String())
	if !ok {
		return colors.Snapshot{}, false
	}
	snap, ok := v.(colors.Snapshot)
	if !ok {
		return colors.Snapshot{}, false
	}
	snap.Colors = snap.Colors.Clone()
	return snap, true
}

func (r *readCache) set(snap colors.Snapshot) {
	snap.Colors = snap.Colors.Clone()
	r.c.Set(snap.Key.String(), snap, 1)
}

func (r *readCache) del(key colors.Key) {
	r.c.Del(key.String())
}

// wait blocks until buffered writes are applied.
func (r *readCache) wait() {
	r.c.Wait()
}

func (r *readCache) close() {
	r.c.Close()
}
