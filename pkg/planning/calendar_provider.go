package planning

import (
	"context"
	"fmt"

	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/pkg/errors"
)

const vacationDayName = "Vacation"

// CalendarProvider extends the company calendar with the vacations of an employee
type CalendarProvider struct {
	Base      *date.BusinessHours
	Vacations executions.VacationRepositoryInterface
	Cache     CalendarCacheInterface
	Logger    logger.Interface
}

func calendarCacheKey(employeeID string) string {
	return fmt.Sprintf("calendar-%s", employeeID)
}

// ForEmployee returns the business hours of the employee
func (p *CalendarProvider) ForEmployee(ctx context.Context, employeeID string) (*date.BusinessHours, error) {
	daysOff, err := p.daysOff(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if len(daysOff) == 0 {
		return p.Base, nil
	}

	return p.Base.WithHolidays(daysOff), nil
}

func (p *CalendarProvider) daysOff(ctx context.Context, employeeID string) (map[string]string, error) {
	key := calendarCacheKey(employeeID)

	if p.Cache != nil {
		entry, err := p.Cache.Get(ctx, key)
		if err == nil {
			return entry.DaysOff, nil
		}
		if !errors.Is(err, ErrCalendarCacheMiss) {
			p.Logger.Error("could not read calendar cache", err)
		}
	}

	vacations, err := p.Vacations.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find vacations")
	}

	daysOff := make(map[string]string)
	for _, vacation := range vacations {
		for _, day := range vacation.Days(date.DayLayout) {
			daysOff[day] = vacationDayName
		}
	}

	if p.Cache != nil {
		err = p.Cache.Add(ctx, key, &CalendarCacheEntry{EmployeeID: employeeID, DaysOff: daysOff})
		if err != nil {
			p.Logger.Error("could not write calendar cache", err)
		}
	}

	return daysOff, nil
}

// Invalidate drops the cached days off of an employee
func (p *CalendarProvider) Invalidate(ctx context.Context, employeeID string) error {
	if p.Cache == nil {
		return nil
	}
	return p.Cache.Invalidate(ctx, calendarCacheKey(employeeID))
}
