package status

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticRebuild(counter *atomic.Int64) func(context.Context) (*Snapshot, error) {
	return func(context.Context) (*Snapshot, error) {
		counter.Add(1)
		return &Snapshot{
			OverallState: domain.ServiceStateOperational,
			ComputedAt:   time.Now(),
		}, nil
	}
}

func TestCache_ServesCachedSnapshot(t *testing.T) {
	// Arrange
	cache := NewCache()
	var rebuilds atomic.Int64
	rebuild := staticRebuild(&rebuilds)

	// Act
	first, err := cache.Snapshot(context.Background(), rebuild)
	require.NoError(t, err)
	second, err := cache.Snapshot(context.Background(), rebuild)
	require.NoError(t, err)

	// Assert
	assert.Same(t, first, second, "unchanged generation returns the identical snapshot")
	assert.Equal(t, int64(1), rebuilds.Load())
}

func TestCache_InvalidateForcesRecompute(t *testing.T) {
	cache := NewCache()
	var rebuilds atomic.Int64
	rebuild := staticRebuild(&rebuilds)

	first, err := cache.Snapshot(context.Background(), rebuild)
	require.NoError(t, err)

	cache.Invalidate()

	second, err := cache.Snapshot(context.Background(), rebuild)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), rebuilds.Load())
	assert.Greater(t, second.Generation, first.Generation)
}

func TestCache_GenerationOnlyIncreases(t *testing.T) {
	cache := NewCache()

	prev := cache.Generation()
	for i := 0; i < 10; i++ {
		cache.Invalidate()
		cur := cache.Generation()
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestCache_RebuildErrorNotCached(t *testing.T) {
	cache := NewCache()
	failErr := errors.New("database down")
	calls := 0

	_, err := cache.Snapshot(context.Background(), func(context.Context) (*Snapshot, error) {
		calls++
		return nil, failErr
	})
	assert.ErrorIs(t, err, failErr)

	var rebuilds atomic.Int64
	snap, err := cache.Snapshot(context.Background(), staticRebuild(&rebuilds))
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Equal(t, 1, calls, "a failed rebuild leaves no entry behind")
}

func TestCache_MutationDuringRebuildForcesNextRecompute(t *testing.T) {
	cache := NewCache()

	// The rebuild observes an invalidation that lands mid-flight; the
	// published entry carries the older generation, so the next read
	// must recompute instead of serving the stale result.
	_, err := cache.Snapshot(context.Background(), func(context.Context) (*Snapshot, error) {
		cache.Invalidate()
		return &Snapshot{OverallState: domain.ServiceStateOutage}, nil
	})
	require.NoError(t, err)

	var rebuilds atomic.Int64
	fresh, err := cache.Snapshot(context.Background(), staticRebuild(&rebuilds))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rebuilds.Load())
	assert.Equal(t, domain.ServiceStateOperational, fresh.OverallState)
}

func TestCache_ConcurrentReadersAndWriters(t *testing.T) {
	cache := NewCache()
	var rebuilds atomic.Int64

	rebuild := func(context.Context) (*Snapshot, error) {
		rebuilds.Add(1)
		return &Snapshot{OverallState: domain.ServiceStateOperational}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap, err := cache.Snapshot(context.Background(), rebuild)
				assert.NoError(t, err)
				assert.NotNil(t, snap)
				assert.Equal(t, domain.ServiceStateOperational, snap.OverallState)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				cache.Invalidate()
			}
		}()
	}
	wg.Wait()

	// After the writers stop, one more read settles the cache and
	// subsequent reads are hits.
	_, err := cache.Snapshot(context.Background(), rebuild)
	require.NoError(t, err)
	settled := rebuilds.Load()
	for i := 0; i < 5; i++ {
		_, err := cache.Snapshot(context.Background(), rebuild)
		require.NoError(t, err)
	}
	assert.Equal(t, settled, rebuilds.Load())
}
