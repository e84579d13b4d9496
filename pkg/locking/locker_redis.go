package locking

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// LockerRedis is a LockerInterface shared between all instances using the same redis
type LockerRedis struct {
	locker *redislock.Client
	// MaxWait bounds how long Acquire retries
	MaxWait time.Duration
}

// NewLockerRedis builds a new LockerRedis instance
func NewLockerRedis(redisClient *redis.Client) *LockerRedis {
	return &LockerRedis{
		locker:  redislock.New(redisClient),
		MaxWait: time.Minute,
	}
}

// Acquire acquires a lock
func (l *LockerRedis) Acquire(ctx context.Context, key string, ttl time.Duration, tryOnlyOnce bool) (LockInterface, error) {
	var strategy redislock.RetryStrategy = redislock.LinearBackoff(500 * time.Millisecond)
	if tryOnlyOnce {
		strategy = redislock.NoRetry()
	}

	ctx, cancel := context.WithDeadline(ctx, time.Now().Add(l.MaxWait))
	defer cancel()

	obtained, err := l.locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: strategy,
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrNotObtained, key)
		}
		return nil, err
	}

	return &LockRedis{
		lock: obtained,
	}, nil
}

// LockRedis is a type of LockInterface
type LockRedis struct {
	lock *redislock.Lock
}

// Key Returns the key of the locking
func (l *LockRedis) Key() string {
	return l.lock.Key()
}

// Release will release the locking
func (l *LockRedis) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
