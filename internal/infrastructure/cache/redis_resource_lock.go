package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/socialsync/backend/internal/domain/platform"
)

// DefaultLockTTL bounds how long arbitration may hold a per-resource lock
// before Redis reclaims it on our behalf.
const DefaultLockTTL = 15 * time.Second

// lockRetryInterval is how often Acquire polls a held lock.
const lockRetryInterval = 50 * time.Millisecond

// lockWaitBudget is the total time Acquire is willing to wait for a held lock.
const lockWaitBudget = 2 * time.Second

// releaseScript deletes the lock only when the caller still owns it, so a
// slow holder never releases a lock Redis already handed to someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisResourceLocker implements platform.ResourceLocker on Redis SETNX.
// Suitable for distributed deployments where multiple instances arbitrate
// claims for the same external resource.
type RedisResourceLocker struct {
	client    *redis.Client
	keyPrefix string
}

var _ platform.ResourceLocker = (*RedisResourceLocker)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisResourceLocker creates a locker with its own Redis connection
func NewRedisResourceLocker(cfg RedisConfig) (*RedisResourceLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResourceLockerWithClient(client, ""), nil
}

// NewRedisResourceLockerWithClient creates a locker with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisResourceLockerWithClient(client *redis.Client, keyPrefix string) *RedisResourceLocker {
	if keyPrefix == "" {
		keyPrefix = "platform:resource-lock:"
	}
	return &RedisResourceLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the per-resource lock via SET NX PX. The returned release
// function is safe to call more than once.
func (l *RedisResourceLocker) Acquire(ctx context.Context, externalID string, ttl time.Duration) (func(), error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	key := l.keyPrefix + externalID
	holder := uuid.New().String()

	deadline := time.Now().Add(lockWaitBudget)
	for {
		ok, err := l.client.SetNX(ctx, key, holder, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire resource lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, platform.ErrResourceLocked
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, holder).Err()
	}
	return release, nil
}

// Close closes the Redis client
func (l *RedisResourceLocker) Close() error {
	return l.client.Close()
}
