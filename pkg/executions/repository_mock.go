package executions

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MockRepository is an in memory work unit store for testing
type MockRepository struct {
	WorkUnits []*WorkUnit
	// Writes counts the calls of UpdatePlanning
	Writes int
	// UpdateError makes UpdatePlanning fail without touching any unit
	UpdateError error

	mutex sync.Mutex
}

// FindSchedulable finds all schedulable units in insertion order
func (r *MockRepository) FindSchedulable(_ context.Context, employeeID string) ([]WorkUnit, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var units []WorkUnit
	for _, unit := range r.WorkUnits {
		if unit.EmployeeID == employeeID && unit.IsSchedulable() {
			units = append(units, copyWorkUnit(unit))
		}
	}

	return units, nil
}

// FindLastFinished finds the finished unit with the latest planned finish
func (r *MockRepository) FindLastFinished(_ context.Context, employeeID string) (*WorkUnit, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var last *WorkUnit
	for _, unit := range r.WorkUnits {
		if unit.EmployeeID != employeeID || !unit.IsFinished() {
			continue
		}

		if last == nil || (unit.PlannedFinish != nil &&
			(last.PlannedFinish == nil || unit.PlannedFinish.After(*last.PlannedFinish))) {
			last = unit
		}
	}

	if last == nil {
		return nil, nil
	}

	found := copyWorkUnit(last)
	return &found, nil
}

// FindEmployeesWithQueue lists all employees with schedulable units, sorted
func (r *MockRepository) FindEmployeesWithQueue(_ context.Context) ([]string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	seen := make(map[string]bool)
	var employees []string
	for _, unit := range r.WorkUnits {
		if !unit.IsSchedulable() || seen[unit.EmployeeID] {
			continue
		}
		seen[unit.EmployeeID] = true
		employees = append(employees, unit.EmployeeID)
	}

	sort.Strings(employees)
	return employees, nil
}

// UpdatePlanning applies all updates or none
func (r *MockRepository) UpdatePlanning(_ context.Context, updates []PlanningUpdate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.UpdateError != nil {
		return r.UpdateError
	}

	byID := make(map[string]*WorkUnit, len(r.WorkUnits))
	for _, unit := range r.WorkUnits {
		byID[unit.ID] = unit
	}

	for _, update := range updates {
		if _, ok := byID[update.ID]; !ok {
			return errors.Wrap(ErrUnknownWorkUnit, update.ID)
		}
	}

	for _, update := range updates {
		unit := byID[update.ID]
		start, finish := update.PlannedStart, update.PlannedFinish
		unit.PlannedStart = &start
		unit.PlannedFinish = &finish
		unit.Interruption = update.Interruption
	}

	r.Writes++
	return nil
}

// FindByID returns a copy of the unit with the given id
func (r *MockRepository) FindByID(id string) (WorkUnit, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, unit := range r.WorkUnits {
		if unit.ID == id {
			return copyWorkUnit(unit), true
		}
	}
	return WorkUnit{}, false
}

func copyWorkUnit(unit *WorkUnit) WorkUnit {
	copied := *unit
	if unit.PlannedStart != nil {
		start := *unit.PlannedStart
		copied.PlannedStart = &start
	}
	if unit.PlannedFinish != nil {
		finish := *unit.PlannedFinish
		copied.PlannedFinish = &finish
	}
	if unit.Subtask != nil {
		subtask := *unit.Subtask
		copied.Subtask = &subtask
	}
	return copied
}

// MockVacationRepository is an in memory vacation store for testing
type MockVacationRepository struct {
	Vacations []Vacation
	// Calls counts the calls of FindByEmployee
	Calls int

	mutex sync.Mutex
}

// FindByEmployee finds all vacations of an employee
func (r *MockVacationRepository) FindByEmployee(_ context.Context, employeeID string) ([]Vacation, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Calls++

	var vacations []Vacation
	for _, vacation := range r.Vacations {
		if vacation.EmployeeID == employeeID {
			vacations = append(vacations, vacation)
		}
	}
	return vacations, nil
}
