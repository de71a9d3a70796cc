package cache

import (
	"context"
	"sync"
	"time"

	"github.com/socialsync/backend/internal/domain/platform"
)

// InMemoryResourceLocker implements platform.ResourceLocker with process-local
// mutexes. Suitable for single-instance deployments and tests; distributed
// deployments need RedisResourceLocker.
type InMemoryResourceLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

var _ platform.ResourceLocker = (*InMemoryResourceLocker)(nil)

// NewInMemoryResourceLocker creates a new in-memory locker
func NewInMemoryResourceLocker() *InMemoryResourceLocker {
	return &InMemoryResourceLocker{
		locks: make(map[string]chan struct{}),
	}
}

// Acquire takes the per-resource lock, waiting up to the same budget as the
// Redis implementation. The ttl parameter is ignored; in-process locks cannot
// leak past the process.
func (l *InMemoryResourceLocker) Acquire(ctx context.Context, externalID string, ttl time.Duration) (func(), error) {
	deadline := time.NewTimer(lockWaitBudget)
	defer deadline.Stop()

	for {
		l.mu.Lock()
		held, ok := l.locks[externalID]
		if !ok {
			ch := make(chan struct{})
			l.locks[externalID] = ch
			l.mu.Unlock()

			var once sync.Once
			release := func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, externalID)
					l.mu.Unlock()
					close(ch)
				})
			}
			return release, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, platform.ErrResourceLocked
		case <-held:
			// Holder released, try again
		}
	}
}
