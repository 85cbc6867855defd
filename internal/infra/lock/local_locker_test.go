package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SingleHolder(t *testing.T) {
	locker := NewLocalLocker(time.Minute)

	release, ok, err := locker.TryAcquire(context.Background(), "attribution:b1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryAcquire(context.Background(), "attribution:b1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = locker.TryAcquire(context.Background(), "attribution:b2")
	assert.True(t, ok, "other keys are independent")

	release()
	_, ok, _ = locker.TryAcquire(context.Background(), "attribution:b1")
	assert.True(t, ok)
}

func TestLocalLocker_ExpiredLeaseTakenOver(t *testing.T) {
	locker := NewLocalLocker(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }

	staleRelease, ok, _ := locker.TryAcquire(context.Background(), "k")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = locker.TryAcquire(context.Background(), "k")
	require.True(t, ok)

	// The stale holder must not free the new lease.
	staleRelease()
	_, ok, _ = locker.TryAcquire(context.Background(), "k")
	assert.False(t, ok)
}

func TestLocalLocker_ConcurrentAcquire(t *testing.T) {
	locker := NewLocalLocker(time.Minute)

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := locker.TryAcquire(context.Background(), "k"); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
