package locking

import (
	"context"
	"sync"
	"time"
)

const memoryRetryInterval = 10 * time.Millisecond

// LockerMemory is a process local LockerInterface, the ttl is ignored
type LockerMemory struct {
	pool  sync.Pool
	locks sync.Map
}

// NewLockerMemory builds a new LockerMemory instance
func NewLockerMemory() *LockerMemory {
	locker := LockerMemory{}
	locker.pool = sync.Pool{
		New: func() interface{} {
			return new(sync.Mutex)
		},
	}

	return &locker
}

// Acquire waits for the lock until ctx is done, or tries once
func (l *LockerMemory) Acquire(ctx context.Context, key string, _ time.Duration, tryOnlyOnce bool) (LockInterface, error) {
	mutex := l.getLock(key)

	for !mutex.TryLock() {
		if tryOnlyOnce {
			return nil, ErrNotObtained
		}

		select {
		case <-ctx.Done():
			return nil, ErrNotObtained
		case <-time.After(memoryRetryInterval):
		}
	}

	var once sync.Once
	return &LockMemory{
		key: key,
		release: func() {
			once.Do(mutex.Unlock)
		},
	}, nil
}

func (l *LockerMemory) getLock(key string) *sync.Mutex {
	newLock := l.pool.Get()
	lock, loaded := l.locks.LoadOrStore(key, newLock)
	if loaded {
		l.pool.Put(newLock)
	}
	return lock.(*sync.Mutex)
}

// LockMemory is a memory implementation of a LockInterface
type LockMemory struct {
	key     string
	release func()
}

// Key returns a key
func (l *LockMemory) Key() string {
	return l.key
}

// Release releases a LockMemory
func (l *LockMemory) Release(_ context.Context) error {
	l.release()
	return nil
}
