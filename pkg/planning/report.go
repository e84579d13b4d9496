package planning

import (
	"context"
	"sort"
	"time"

	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/pkg/errors"
)

// QueueEntry is a scheduled unit as shown to the employee
type QueueEntry struct {
	ID                            string            `json:"id"`
	TaskID                        string            `json:"taskId"`
	ObjectCode                    string            `json:"objectCode"`
	Subtask                       string            `json:"subtask"`
	Status                        executions.Status `json:"status"`
	FixedDate                     bool              `json:"fixedDate"`
	PlannedStart                  *time.Time        `json:"plannedStart"`
	PlannedFinish                 *time.Time        `json:"plannedFinish"`
	Interruption                  time.Duration     `json:"interruption"`
	PlannedFinishWithInterruption *time.Time        `json:"plannedFinishWithInterruption"`
}

// PlannedFinishWithInterruption is the planned finish moved forward by the recorded interruption
func PlannedFinishWithInterruption(hours *date.BusinessHours, unit *executions.WorkUnit) *time.Time {
	if unit.PlannedFinish == nil {
		return nil
	}

	finish := *unit.PlannedFinish
	if unit.Interruption > 0 {
		finish = hours.Add(finish, unit.Interruption)
	}
	return &finish
}

// Queue lists the schedulable units of an employee by planned start, unplanned ones last
func (s *Service) Queue(ctx context.Context, employeeID string) ([]QueueEntry, error) {
	hours, err := s.calendars.ForEmployee(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "could not resolve calendar")
	}

	units, err := s.repository.FindSchedulable(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find schedulable work units")
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].PlannedStart == nil || units[j].PlannedStart == nil {
			return units[j].PlannedStart == nil && units[i].PlannedStart != nil
		}
		return units[i].PlannedStart.Before(*units[j].PlannedStart)
	})

	entries := make([]QueueEntry, 0, len(units))
	for i := range units {
		unit := &units[i]
		entry := QueueEntry{
			ID:                            unit.ID,
			TaskID:                        unit.Task.ID,
			ObjectCode:                    unit.Task.ObjectCode,
			Status:                        unit.Status,
			FixedDate:                     unit.FixedDate,
			PlannedStart:                  unit.PlannedStart,
			PlannedFinish:                 unit.PlannedFinish,
			Interruption:                  unit.Interruption,
			PlannedFinishWithInterruption: PlannedFinishWithInterruption(hours, unit),
		}
		if unit.Subtask != nil {
			entry.Subtask = unit.Subtask.Name
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
