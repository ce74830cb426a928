package status

import (
	"context"
	"sync/atomic"

	"github.com/statuskeeper/statuskeeper/internal/pkg/metrics"
)

type cacheEntry struct {
	gen  uint64
	snap *Snapshot
}

// Cache holds the last computed snapshot tagged with the generation it
// was built for. This is the only shared mutable state in the engine:
// readers and writers synchronize solely on two atomics, and no lock is
// ever held during recomputation.
type Cache struct {
	gen atomic.Uint64
	cur atomic.Pointer[cacheEntry]
}

// NewCache creates an empty snapshot cache at generation zero.
func NewCache() *Cache {
	return &Cache{}
}

// Invalidate marks the cached snapshot stale. Every lifecycle mutation
// calls this; the generation counter only ever increases.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
}

// Generation returns the current generation counter.
func (c *Cache) Generation() uint64 {
	return c.gen.Load()
}

// Snapshot returns the cached snapshot when it is still current,
// otherwise rebuilds it via the given function and publishes the result.
//
// The generation is read before rebuilding: if a mutation lands while
// the rebuild runs, the published entry carries the older generation
// and the next read recomputes. Entry pointer and generation are stored
// together, so a reader can never observe a counter paired with the
// wrong snapshot. Concurrent stale reads may rebuild in parallel; the
// rebuild is pure, so whichever publish lands last is as good as any.
func (c *Cache) Snapshot(ctx context.Context, rebuild func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	gen := c.gen.Load()
	if entry := c.cur.Load(); entry != nil && entry.gen == gen {
		metrics.SnapshotCacheHits.Inc()
		return entry.snap, nil
	}

	snap, err := rebuild(ctx)
	if err != nil {
		return nil, err
	}
	snap.Generation = gen
	metrics.SnapshotRecomputations.Inc()

	c.cur.Store(&cacheEntry{gen: gen, snap: snap})
	return snap, nil
}
