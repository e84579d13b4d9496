package planning

import (
	"testing"
	"time"

	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/pkg/errors"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func officeHours() *date.BusinessHours {
	return &date.BusinessHours{
		Location: time.UTC,
		WorkDays: []date.WorkDayRule{{Start: 9 * time.Hour, End: 18 * time.Hour, Weekdays: weekdays}},
		Lunches:  []date.LunchTimeRule{{Start: 13 * time.Hour, End: 14 * time.Hour, Weekdays: weekdays}},
	}
}

// monday returns a time on monday 2024-03-04
func monday(hour int, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func timePointer(t time.Time) *time.Time {
	return &t
}

func queued(id string, duration time.Duration) executions.WorkUnit {
	return executions.WorkUnit{
		ID:         id,
		EmployeeID: "employee",
		Task:       executions.TaskRef{ID: "task-" + id, Status: executions.TaskInProgress},
		Subtask:    &executions.SubtaskRef{ID: "subtask-" + id, Duration: duration, AddToSchedule: true},
		Status:     executions.StatusQueued,
	}
}

func fixed(id string, start time.Time, finish time.Time) executions.WorkUnit {
	unit := queued(id, finish.Sub(start))
	unit.FixedDate = true
	unit.PlannedStart = timePointer(start)
	unit.PlannedFinish = timePointer(finish)
	return unit
}

func planned(id string, start time.Time, finish time.Time) executions.WorkUnit {
	unit := queued(id, time.Hour)
	unit.PlannedStart = timePointer(start)
	unit.PlannedFinish = timePointer(finish)
	return unit
}

func assertUpdate(t *testing.T, update executions.PlanningUpdate, id string, start time.Time, finish time.Time, interruption time.Duration) {
	t.Helper()
	if update.ID != id || !update.PlannedStart.Equal(start) || !update.PlannedFinish.Equal(finish) || update.Interruption != interruption {
		t.Errorf("got %s [%s, %s] interruption %s, wanted %s [%s, %s] interruption %s",
			update.ID, update.PlannedStart, update.PlannedFinish, update.Interruption,
			id, start, finish, interruption)
	}
}

func TestPlan_MondayScenario(t *testing.T) {
	hours := officeHours()
	hours.WorkDays = []date.WorkDayRule{{Start: 9 * time.Hour, End: 18 * time.Hour, Weekdays: weekdays[:4]}}

	updates, err := Plan(hours, []executions.WorkUnit{queued("1", 4*time.Hour), queued("2", 4*time.Hour)}, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	assertUpdate(t, updates[0], "1", monday(9, 0), monday(13, 0), 0)
	assertUpdate(t, updates[1], "2", monday(14, 0), monday(18, 0), 0)
}

func TestPlan_Collisions(t *testing.T) {
	var collisionTests = []struct {
		name         string
		units        []executions.WorkUnit
		cursor       time.Time
		start        time.Time
		finish       time.Time
		interruption time.Duration
	}{
		{
			name:   "start inside fixed period is pushed forward",
			units:  []executions.WorkUnit{fixed("f", monday(10, 0), monday(12, 0)), queued("u", time.Hour)},
			cursor: monday(10, 30),
			start:  monday(12, 0),
			finish: monday(13, 0),
		},
		{
			name:   "start at fixed period start is pushed forward",
			units:  []executions.WorkUnit{fixed("f", monday(10, 0), monday(12, 0)), queued("u", time.Hour)},
			cursor: monday(10, 0),
			start:  monday(12, 0),
			finish: monday(13, 0),
		},
		{
			name:         "unit containing fixed period records interruption",
			units:        []executions.WorkUnit{fixed("f", monday(10, 0), monday(11, 0)), queued("u", 3*time.Hour)},
			cursor:       monday(9, 0),
			start:        monday(9, 0),
			finish:       monday(12, 0),
			interruption: time.Hour,
		},
		{
			name:         "finish inside fixed period records interruption",
			units:        []executions.WorkUnit{fixed("f", monday(11, 0), monday(12, 0)), queued("u", 150*time.Minute)},
			cursor:       monday(9, 0),
			start:        monday(9, 0),
			finish:       monday(11, 30),
			interruption: time.Hour,
		},
		{
			name:   "finish at fixed period start is no collision",
			units:  []executions.WorkUnit{fixed("f", monday(11, 0), monday(12, 0)), queued("u", 2*time.Hour)},
			cursor: monday(9, 0),
			start:  monday(9, 0),
			finish: monday(11, 0),
		},
		{
			name:   "pushed start skips lunch",
			units:  []executions.WorkUnit{fixed("f", monday(11, 0), monday(13, 0)), queued("u", time.Hour)},
			cursor: monday(12, 0),
			start:  monday(14, 0),
			finish: monday(15, 0),
		},
		{
			name: "overlapping fixed periods are merged before the check",
			units: []executions.WorkUnit{
				fixed("f1", monday(9, 0), monday(10, 0)),
				fixed("f2", monday(9, 30), monday(11, 0)),
				queued("u", time.Hour),
			},
			cursor: monday(9, 45),
			start:  monday(11, 0),
			finish: monday(12, 0),
		},
	}

	for _, tt := range collisionTests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := Plan(officeHours(), tt.units, tt.cursor)
			if err != nil {
				t.Fatal(err)
			}
			if len(updates) != 1 {
				t.Fatalf("expected one update, got %v", updates)
			}
			assertUpdate(t, updates[0], "u", tt.start, tt.finish, tt.interruption)
		})
	}
}

func TestPlan_CursorIgnoresInterruption(t *testing.T) {
	units := []executions.WorkUnit{
		fixed("f", monday(11, 0), monday(12, 0)),
		queued("a", 150*time.Minute),
		queued("b", time.Hour),
	}

	updates, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	assertUpdate(t, updates[0], "a", monday(9, 0), monday(11, 30), time.Hour)
	// b starts where a finishes, inside the fixed period, and is pushed behind it
	assertUpdate(t, updates[1], "b", monday(12, 0), monday(13, 0), 0)
}

func TestPlan_WeekendSkip(t *testing.T) {
	hours := officeHours()
	hours.Lunches = nil

	friday := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	updates, err := Plan(hours, []executions.WorkUnit{queued("u", 8*time.Hour)}, friday)
	if err != nil {
		t.Fatal(err)
	}

	assertUpdate(t, updates[0], "u", friday, monday(16, 0), 0)
}

func TestPlan_OrderPreservation(t *testing.T) {
	units := []executions.WorkUnit{
		planned("late", monday(15, 0), monday(16, 0)),
		queued("new", time.Hour),
		planned("early", monday(10, 0), monday(11, 0)),
	}

	updates, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	var order []string
	for _, update := range updates {
		order = append(order, update.ID)
	}
	if len(order) != 3 || order[0] != "early" || order[1] != "late" || order[2] != "new" {
		t.Errorf("unexpected order %v", order)
	}
	if updates[0].PlannedStart.After(updates[1].PlannedStart) {
		t.Errorf("early unit starts after late unit")
	}
}

func TestPlan_StatusPriority(t *testing.T) {
	running := planned("running", monday(15, 0), monday(16, 0))
	running.Status = executions.StatusInProgress

	waiting := queued("waiting", time.Hour)
	unplannedRunning := queued("unplanned-running", time.Hour)
	unplannedRunning.Status = executions.StatusInProgress

	units := []executions.WorkUnit{
		planned("queued", monday(9, 0), monday(10, 0)),
		running,
		waiting,
		unplannedRunning,
	}

	updates, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"running", "queued", "unplanned-running", "waiting"}
	for i, update := range updates {
		if update.ID != want[i] {
			t.Errorf("position %d: got %s, wanted %s", i, update.ID, want[i])
		}
	}
}

func TestPlan_NoBusinessTimeGaps(t *testing.T) {
	hours := officeHours()
	durations := []time.Duration{30 * time.Minute, 4 * time.Hour, 7 * time.Hour, 90 * time.Minute, 9 * time.Hour}

	var units []executions.WorkUnit
	for i, duration := range durations {
		units = append(units, queued(string(rune('a'+i)), duration))
	}

	updates, err := Plan(hours, units, monday(11, 0))
	if err != nil {
		t.Fatal(err)
	}

	for i, update := range updates {
		if got := hours.Difference(update.PlannedStart, update.PlannedFinish); got != durations[i] {
			t.Errorf("unit %s: business time %s, wanted %s", update.ID, got, durations[i])
		}
		if i > 0 && !update.PlannedStart.Equal(hours.Normalize(updates[i-1].PlannedFinish)) {
			t.Errorf("unit %s does not start where the previous one finished", update.ID)
		}
	}
}

func TestPlan_NominalDurationFromPlannedWindow(t *testing.T) {
	// the existing window spans lunch and is worth 3 business hours
	unit := planned("u", monday(11, 0), monday(15, 0))
	unit.Subtask.Duration = 10 * time.Hour

	updates, err := Plan(officeHours(), []executions.WorkUnit{unit}, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	assertUpdate(t, updates[0], "u", monday(9, 0), monday(12, 0), 0)
}

func TestPlan_EmptyPlannedWindowFallsBackToSubtask(t *testing.T) {
	// saturday window has no business time
	unit := planned("u", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	unit.Subtask.Duration = 2 * time.Hour

	updates, err := Plan(officeHours(), []executions.WorkUnit{unit}, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	assertUpdate(t, updates[0], "u", monday(9, 0), monday(11, 0), 0)
}

func TestPlan_MissingDuration(t *testing.T) {
	broken := queued("broken", 0)

	updates, err := Plan(officeHours(), []executions.WorkUnit{queued("ok", time.Hour), broken}, monday(9, 0))
	if !errors.Is(err, ErrMissingDuration) {
		t.Fatalf("expected ErrMissingDuration, got %v", err)
	}
	if updates != nil {
		t.Errorf("expected no updates, got %v", updates)
	}
}

func TestPlan_UnplannedInProgressMovesAheadOnSecondRun(t *testing.T) {
	started := queued("started", time.Hour)
	started.Status = executions.StatusInProgress
	units := []executions.WorkUnit{planned("waiting", monday(9, 0), monday(10, 0)), started}

	first, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}
	assertUpdate(t, first[0], "waiting", monday(9, 0), monday(10, 0), 0)
	assertUpdate(t, first[1], "started", monday(10, 0), monday(11, 0), 0)

	applyUpdates(units, first)

	// once planned, the in progress unit is ordered by status priority
	second, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}
	assertUpdate(t, second[0], "started", monday(9, 0), monday(10, 0), 0)
	assertUpdate(t, second[1], "waiting", monday(10, 0), monday(11, 0), 0)

	applyUpdates(units, second)
	third, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}
	assertUpdate(t, third[0], "started", monday(9, 0), monday(10, 0), 0)
	assertUpdate(t, third[1], "waiting", monday(10, 0), monday(11, 0), 0)
}

func applyUpdates(units []executions.WorkUnit, updates []executions.PlanningUpdate) {
	for i := range units {
		for _, update := range updates {
			if update.ID == units[i].ID {
				units[i].PlannedStart = timePointer(update.PlannedStart)
				units[i].PlannedFinish = timePointer(update.PlannedFinish)
			}
		}
	}
}

func TestPlan_DurationBeyondHorizon(t *testing.T) {
	huge := queued("huge", 100000*time.Hour)

	updates, err := Plan(officeHours(), []executions.WorkUnit{queued("ok", time.Hour), huge}, monday(9, 0))
	if !errors.Is(err, ErrDurationTooLong) {
		t.Fatalf("expected ErrDurationTooLong, got %v", err)
	}
	if errors.Is(err, date.ErrConfiguration) {
		t.Errorf("a long unit is no calendar misconfiguration: %v", err)
	}
	if updates != nil {
		t.Errorf("expected no updates, got %v", updates)
	}
}

func TestPlan_FixedUnitsGetNoUpdate(t *testing.T) {
	units := []executions.WorkUnit{fixed("f", monday(10, 0), monday(12, 0))}

	updates, err := Plan(officeHours(), units, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 0 {
		t.Errorf("expected no updates, got %v", updates)
	}
}

func TestPlan_IncompleteFixedWindowIsIgnored(t *testing.T) {
	incomplete := queued("f", time.Hour)
	incomplete.FixedDate = true
	incomplete.PlannedStart = timePointer(monday(9, 0))

	updates, err := Plan(officeHours(), []executions.WorkUnit{incomplete, queued("u", time.Hour)}, monday(9, 0))
	if err != nil {
		t.Fatal(err)
	}

	assertUpdate(t, updates[0], "u", monday(9, 0), monday(10, 0), 0)
}

func TestPlan_CalendarWithoutWorkingTime(t *testing.T) {
	hours := &date.BusinessHours{Location: time.UTC}

	_, err := Plan(hours, []executions.WorkUnit{queued("u", time.Hour)}, monday(9, 0))
	if !errors.Is(err, date.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
