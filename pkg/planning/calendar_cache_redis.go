package planning

import (
	"context"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// CalendarCacheRedis shares calendar entries between all instances
type CalendarCacheRedis struct {
	Cache *cache.Cache
	TTL   time.Duration
}

// NewCalendarCacheRedis initializes a new CalendarCacheRedis
func NewCalendarCacheRedis(redisClient *redis.Client) *CalendarCacheRedis {
	redisCache := cache.New(&cache.Options{
		Redis: redisClient,
	})

	return &CalendarCacheRedis{
		Cache: redisCache,
		TTL:   time.Hour,
	}
}

// Add adds a CalendarCacheEntry
func (c *CalendarCacheRedis) Add(ctx context.Context, key string, entry *CalendarCacheEntry) error {
	return c.Cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: entry,
		TTL:   c.TTL,
	})
}

// Invalidate invalidates an entry
func (c *CalendarCacheRedis) Invalidate(ctx context.Context, key string) error {
	err := c.Cache.Delete(ctx, key)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return err
	}

	return nil
}

// Get retrieves a CalendarCacheEntry
func (c *CalendarCacheRedis) Get(ctx context.Context, key string) (*CalendarCacheEntry, error) {
	result := CalendarCacheEntry{}
	err := c.Cache.Get(ctx, key, &result)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, errors.Wrap(ErrCalendarCacheMiss, key)
		}
		return nil, err
	}

	return &result, nil
}
