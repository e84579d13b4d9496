package planning

import (
	"sort"
	"time"

	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/pkg/errors"
)

// statusPriority orders units that are already being worked on before queued ones
var statusPriority = map[executions.Status]int{
	executions.StatusInProgress: 0,
	executions.StatusQueued:     1,
}

func priorityOf(status executions.Status) int {
	priority, ok := statusPriority[status]
	if !ok {
		return len(statusPriority)
	}
	return priority
}

// fixedWindows collects the planned windows of fixed units, units without a complete window are ignored
func fixedWindows(hours *date.BusinessHours, units []executions.WorkUnit) []date.Timespan {
	var windows []date.Timespan
	for _, unit := range units {
		if !unit.FixedDate || unit.PlannedStart == nil || unit.PlannedFinish == nil {
			continue
		}

		window := date.Timespan{Start: hours.Local(*unit.PlannedStart), End: hours.Local(*unit.PlannedFinish)}
		if window.End.Before(window.Start) {
			continue
		}
		windows = append(windows, window)
	}

	return windows
}

// orderQueue returns the non fixed units in execution order: first those already planned,
// by status priority and planned start, then the unplanned ones by status priority
func orderQueue(units []executions.WorkUnit) []executions.WorkUnit {
	var planned, unplanned []executions.WorkUnit
	for _, unit := range units {
		if unit.FixedDate {
			continue
		}
		if unit.PlannedStart != nil {
			planned = append(planned, unit)
		} else {
			unplanned = append(unplanned, unit)
		}
	}

	sort.SliceStable(planned, func(i, j int) bool {
		pi, pj := priorityOf(planned[i].Status), priorityOf(planned[j].Status)
		if pi != pj {
			return pi < pj
		}
		return planned[i].PlannedStart.Before(*planned[j].PlannedStart)
	})

	sort.SliceStable(unplanned, func(i, j int) bool {
		return priorityOf(unplanned[i].Status) < priorityOf(unplanned[j].Status)
	})

	return append(planned, unplanned...)
}

// nominalDuration is the business time a unit needs
func nominalDuration(hours *date.BusinessHours, unit *executions.WorkUnit) (time.Duration, error) {
	if unit.PlannedStart != nil && unit.PlannedFinish != nil && unit.PlannedStart.Before(*unit.PlannedFinish) {
		if duration := hours.Difference(*unit.PlannedStart, *unit.PlannedFinish); duration > 0 {
			return duration, nil
		}
	}

	if unit.Subtask == nil || unit.Subtask.Duration <= 0 {
		return 0, errors.Wrapf(ErrMissingDuration, "work unit %s", unit.ID)
	}

	return unit.Subtask.Duration, nil
}

// place schedules a unit at the cursor and resolves its collision with the blocked periods
func place(hours *date.BusinessHours, blocked []date.Timespan, unitID string, cursor time.Time, duration time.Duration) executions.PlanningUpdate {
	start := hours.Normalize(cursor)
	finish := hours.Add(start, duration)
	var interruption time.Duration

	for _, period := range blocked {
		if period.ContainsStartOf(start) {
			start = hours.Normalize(period.End)
			finish = hours.Add(start, duration)
			break
		}

		if period.ContainsEndOf(finish) || (date.TimeBeforeOrEquals(start, period.Start) && date.TimeAfterOrEquals(finish, period.End)) {
			interruption = hours.Difference(period.Start, period.End)
			break
		}
	}

	return executions.PlanningUpdate{
		ID:            unitID,
		PlannedStart:  hours.Local(start),
		PlannedFinish: hours.Local(finish),
		Interruption:  interruption,
	}
}

// Plan computes the planning of all non fixed units starting at cursor.
// It does not touch the units, fixed units get no update.
func Plan(hours *date.BusinessHours, units []executions.WorkUnit, cursor time.Time) (updates []executions.PlanningUpdate, err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			calendarErr, ok := r.(error)
			if !ok {
				panic(r)
			}

			switch {
			case errors.Is(calendarErr, date.ErrHorizonExceeded):
				updates, err = nil, errors.Wrapf(ErrDurationTooLong, "work unit %s: %v", current, calendarErr)
			case errors.Is(calendarErr, date.ErrConfiguration), errors.Is(calendarErr, date.ErrOrderingViolation):
				updates, err = nil, calendarErr
			default:
				panic(r)
			}
		}
	}()

	blocked := date.MergeTimespans(fixedWindows(hours, units))
	queue := orderQueue(units)

	updates = make([]executions.PlanningUpdate, 0, len(queue))
	for i := range queue {
		current = queue[i].ID
		duration, err := nominalDuration(hours, &queue[i])
		if err != nil {
			return nil, err
		}

		update := place(hours, blocked, queue[i].ID, cursor, duration)
		updates = append(updates, update)
		cursor = update.PlannedFinish
	}

	return updates, nil
}
