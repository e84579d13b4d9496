package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/pkg/errors"
)

// now is the current time and is globally available to override it in tests
var now = time.Now

// CalendarProviderInterface resolves the business calendar of an employee
type CalendarProviderInterface interface {
	ForEmployee(ctx context.Context, employeeID string) (*date.BusinessHours, error)
}

// Service recalculates the planned schedule of an employee's work queue
type Service struct {
	repository executions.RepositoryInterface
	calendars  CalendarProviderInterface
	logger     logger.Interface
}

// NewService constructs a Service
func NewService(repository executions.RepositoryInterface, calendars CalendarProviderInterface, logger logger.Interface) *Service {
	return &Service{
		repository: repository,
		calendars:  calendars,
		logger:     logger,
	}
}

// queueCursor is the moment the next unit may start: the planned finish of the latest finished unit,
// or the start of today's working hours
func (s *Service) queueCursor(ctx context.Context, hours *date.BusinessHours, employeeID string) (time.Time, error) {
	last, err := s.repository.FindLastFinished(ctx, employeeID)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "could not find last finished work unit")
	}

	if last != nil && last.PlannedFinish != nil {
		return hours.Local(*last.PlannedFinish), nil
	}

	return hours.DayStart(now()), nil
}

// RecalculateQueue plans all schedulable units of an employee and stores the result in one write.
// Nothing is written if any unit can not be planned.
func (s *Service) RecalculateQueue(ctx context.Context, employeeID string) ([]executions.PlanningUpdate, error) {
	runID := uuid.New().String()

	hours, err := s.calendars.ForEmployee(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "could not resolve calendar")
	}

	units, err := s.repository.FindSchedulable(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find schedulable work units")
	}

	cursor, err := s.queueCursor(ctx, hours, employeeID)
	if err != nil {
		return nil, err
	}

	updates, err := Plan(hours, units, cursor)
	if err != nil {
		s.logger.Error(fmt.Sprintf("run %s: planning queue of employee %s failed", runID, employeeID), err)
		return nil, err
	}

	if len(updates) == 0 {
		s.logger.Debug(fmt.Sprintf("run %s: employee %s has nothing to plan", runID, employeeID))
		return updates, nil
	}

	err = s.repository.UpdatePlanning(ctx, updates)
	if err != nil {
		return nil, errors.Wrap(err, "could not store planning")
	}

	s.logger.Info(fmt.Sprintf("run %s: planned %d of %d work units of employee %s starting %s",
		runID, len(updates), len(units), employeeID, cursor.Format(time.RFC3339)))

	return updates, nil
}
