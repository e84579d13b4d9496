package executions

import (
	"context"

	"github.com/pkg/errors"
)

// ErrUnknownWorkUnit is returned when a planning update references a unit that does not exist
var ErrUnknownWorkUnit = errors.New("unknown work unit")

// RepositoryInterface is the work unit store the scheduler reads from and writes to
type RepositoryInterface interface {
	// FindSchedulable finds all units of the employee that are queued or in progress,
	// added to the schedule and belong to a queued or running task
	FindSchedulable(ctx context.Context, employeeID string) ([]WorkUnit, error)
	// FindLastFinished finds the finished unit with the latest planned finish, nil if there is none
	FindLastFinished(ctx context.Context, employeeID string) (*WorkUnit, error)
	// FindEmployeesWithQueue lists all employees that have at least one schedulable unit
	FindEmployeesWithQueue(ctx context.Context) ([]string, error)
	// UpdatePlanning writes planned start, planned finish and interruption of all units at once
	UpdatePlanning(ctx context.Context, updates []PlanningUpdate) error
}

// VacationRepositoryInterface finds employee vacations
type VacationRepositoryInterface interface {
	FindByEmployee(ctx context.Context, employeeID string) ([]Vacation, error)
}
