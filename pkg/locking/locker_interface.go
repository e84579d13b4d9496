package locking

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNotObtained is returned when a lock is held by someone else
var ErrNotObtained = errors.New("lock not obtained")

// LockerInterface represents a Locker
type LockerInterface interface {
	Acquire(ctx context.Context, key string, ttl time.Duration, tryOnlyOnce bool) (LockInterface, error)
}

// LockInterface represents a Lock
type LockInterface interface {
	Key() string
	Release(ctx context.Context) error
}
