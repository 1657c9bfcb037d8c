//go:build unit

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cinema-reservation/internal/infra/lock"
	"cinema-reservation/internal/pkg/errs"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*lock.RedisLockManager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return lock.NewRedisLockManager(client, nil, nil), mr
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("first caller wins, second is busy", func(t *testing.T) {
		m, mr := newManager(t)

		l, err := m.Acquire(ctx, "lock:unit:a", 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "lock:unit:a", l.Key)
		assert.NotEmpty(t, l.Token)

		got, err := mr.Get("lock:unit:a")
		require.NoError(t, err)
		assert.Equal(t, l.Token, got)

		_, err = m.Acquire(ctx, "lock:unit:a", 5*time.Second)
		assert.True(t, errs.Is(err, lock.ErrLockBusy))
	})

	t.Run("expired lock can be re-acquired", func(t *testing.T) {
		m, mr := newManager(t)

		_, err := m.Acquire(ctx, "k", time.Second)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)

		_, err = m.Acquire(ctx, "k", time.Second)
		assert.NoError(t, err)
	})

	t.Run("non-positive ttl is rejected", func(t *testing.T) {
		m, _ := newManager(t)

		_, err := m.Acquire(ctx, "k", 0)
		assert.True(t, errs.Is(err, lock.ErrInvalidTTL))
	})

	t.Run("store outage is reported as unavailable", func(t *testing.T) {
		m, mr := newManager(t)
		mr.Close()

		_, err := m.Acquire(ctx, "k", time.Second)
		require.Error(t, err)
		assert.True(t, errs.Is(err, lock.ErrLockUnavailable))
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("owner releases", func(t *testing.T) {
		m, mr := newManager(t)

		l, err := m.Acquire(ctx, "k", 5*time.Second)
		require.NoError(t, err)

		released, err := m.Release(ctx, l)
		require.NoError(t, err)
		assert.True(t, released)
		assert.False(t, mr.Exists("k"))
	})

	t.Run("stale owner cannot release the new owner's lock", func(t *testing.T) {
		m, mr := newManager(t)

		stale, err := m.Acquire(ctx, "k", time.Second)
		require.NoError(t, err)
		mr.FastForward(2 * time.Second)

		current, err := m.Acquire(ctx, "k", 5*time.Second)
		require.NoError(t, err)

		released, err := m.Release(ctx, stale)
		require.NoError(t, err)
		assert.False(t, released)

		got, err := mr.Get("k")
		require.NoError(t, err)
		assert.Equal(t, current.Token, got)
	})

	t.Run("double release is a no-op", func(t *testing.T) {
		m, _ := newManager(t)

		l, err := m.Acquire(ctx, "k", 5*time.Second)
		require.NoError(t, err)

		first, err := m.Release(ctx, l)
		require.NoError(t, err)
		second, err := m.Release(ctx, l)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
	})
}

func TestAcquireAll(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires in canonical order", func(t *testing.T) {
		m, _ := newManager(t)

		locks, err := m.AcquireAll(ctx, []string{"c", "a", "b", "a"}, 5*time.Second)
		require.NoError(t, err)
		require.Len(t, locks, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{locks[0].Key, locks[1].Key, locks[2].Key})
	})

	t.Run("rolls back every acquired lock when one key is busy", func(t *testing.T) {
		m, mr := newManager(t)

		_, err := m.Acquire(ctx, "c", 5*time.Second)
		require.NoError(t, err)

		locks, err := m.AcquireAll(ctx, []string{"a", "b", "c", "d"}, 5*time.Second)
		assert.Nil(t, locks)
		assert.True(t, errs.Is(err, lock.ErrLockBusy))

		assert.False(t, mr.Exists("a"))
		assert.False(t, mr.Exists("b"))
		assert.True(t, mr.Exists("c"))
		assert.False(t, mr.Exists("d"))
	})

	t.Run("overlapping sets in opposite orders never both succeed", func(t *testing.T) {
		m, _ := newManager(t)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := range 20 {
			keys := []string{"x", "y", "z"}
			if i%2 == 1 {
				keys = []string{"z", "y", "x"}
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := m.AcquireAll(ctx, keys, 5*time.Second); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c3b5e-8a9d-4c2b-9e7f-1a2b3c4d5e6f")

	assert.Equal(t, "lock:unit:6f1c3b5e-8a9d-4c2b-9e7f-1a2b3c4d5e6f", lock.UnitKey(id))
	assert.Equal(t, "debounce:abc", lock.DebounceKey("abc"))
	assert.Equal(t, []string{"a", "b"}, lock.CanonicalKeys([]string{"b", "a", "b"}))
}
