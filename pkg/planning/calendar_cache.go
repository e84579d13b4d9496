package planning

import (
	"context"

	"github.com/pkg/errors"
)

// ErrCalendarCacheMiss is returned when an employee has no cached calendar data
var ErrCalendarCacheMiss = errors.New("calendar cache miss")

// CalendarCacheEntry holds the days off of an employee
type CalendarCacheEntry struct {
	EmployeeID string
	DaysOff    map[string]string
}

// CalendarCacheInterface caches calendar data per employee
type CalendarCacheInterface interface {
	Add(ctx context.Context, key string, entry *CalendarCacheEntry) error
	Invalidate(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (*CalendarCacheEntry, error)
}
