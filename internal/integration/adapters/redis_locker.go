// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/target-ledger/backend/internal/application/adapter"
)

// redisLocker implements the adapter.Locker interface with bsm/redislock.
type redisLocker struct {
	client     *redislock.Client
	retryEvery time.Duration
}

// NewRedisLocker creates a locker on the given Redis client. Obtain retries
// every retryEvery until the context or the TTL runs out; zero disables retries.
func NewRedisLocker(rdb *redis.Client, retryEvery time.Duration) adapter.Locker {
	return &redisLocker{
		client:     redislock.New(rdb),
		retryEvery: retryEvery,
	}
}

// Obtain takes the lock for key.
func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (adapter.Lock, error) {
	opts := &redislock.Options{RetryStrategy: redislock.NoRetry()}
	if l.retryEvery > 0 {
		opts.RetryStrategy = redislock.LimitRetry(redislock.LinearBackoff(l.retryEvery), int(ttl/l.retryEvery))
	}

	lock, err := l.client.Obtain(ctx, key, ttl, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, adapter.ErrLockNotObtained
		}
		return nil, err
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. Releasing an expired lock is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
