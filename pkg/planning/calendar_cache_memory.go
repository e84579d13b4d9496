package planning

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// CalendarCacheMemory keeps the most recently used calendar entries of this process
type CalendarCacheMemory struct {
	Cache *lru.Cache
}

// NewCalendarCacheMemory initializes a new CalendarCacheMemory holding at most size entries
func NewCalendarCacheMemory(size int) (*CalendarCacheMemory, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &CalendarCacheMemory{
		Cache: cache,
	}, nil
}

// Add adds a CalendarCacheEntry to the cache
func (c *CalendarCacheMemory) Add(_ context.Context, key string, entry *CalendarCacheEntry) error {
	_ = c.Cache.Add(key, entry)
	return nil
}

// Invalidate removes a CalendarCacheEntry from the cache
func (c *CalendarCacheMemory) Invalidate(_ context.Context, key string) error {
	c.Cache.Remove(key)
	return nil
}

// Get retrieves a CalendarCacheEntry from the cache
func (c *CalendarCacheMemory) Get(_ context.Context, key string) (*CalendarCacheEntry, error) {
	result, ok := c.Cache.Get(key)
	if !ok {
		return nil, errors.Wrap(ErrCalendarCacheMiss, key)
	}

	entry, ok := result.(*CalendarCacheEntry)
	if !ok {
		return nil, errors.Errorf("cache entry %s was not a calendar cache entry", key)
	}

	return entry, nil
}
