package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResourceLocker_Acquire(t *testing.T) {
	locker := NewInMemoryResourceLocker()
	ctx := context.Background()

	t.Run("acquires a free lock immediately", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "res-1", time.Second)
		require.NoError(t, err)
		release()
	})

	t.Run("different resources do not contend", func(t *testing.T) {
		releaseA, err := locker.Acquire(ctx, "res-a", time.Second)
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := locker.Acquire(ctx, "res-b", time.Second)
		require.NoError(t, err)
		releaseB()
	})

	t.Run("release is idempotent", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "res-2", time.Second)
		require.NoError(t, err)
		release()
		release()

		again, err := locker.Acquire(ctx, "res-2", time.Second)
		require.NoError(t, err)
		again()
	})

	t.Run("waits for a held lock", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "res-3", time.Second)
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			r, err := locker.Acquire(ctx, "res-3", time.Second)
			assert.NoError(t, err)
			r()
			close(acquired)
		}()

		// Give the goroutine time to block on the held lock
		time.Sleep(20 * time.Millisecond)
		select {
		case <-acquired:
			t.Fatal("lock acquired while still held")
		default:
		}

		release()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("waiter never acquired the released lock")
		}
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "res-4", time.Second)
		require.NoError(t, err)
		defer release()

		waitCtx, cancel := context.WithCancel(ctx)
		errCh := make(chan error, 1)
		go func() {
			_, err := locker.Acquire(waitCtx, "res-4", time.Second)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("cancelled waiter never returned")
		}
	})
}

func TestInMemoryResourceLocker_MutualExclusion(t *testing.T) {
	locker := NewInMemoryResourceLocker()
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "shared", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			// Unsynchronized increment; the race detector flags any overlap
			counter++
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, counter)
}
