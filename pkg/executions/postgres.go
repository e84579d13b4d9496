package executions

import (
	"context"
	"time"

	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// SchemaSQL creates the tables the postgres repositories read from
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	object_code TEXT NOT NULL DEFAULT '',
	exec_status VARCHAR(2) NOT NULL DEFAULT 'IW'
);

CREATE TABLE IF NOT EXISTS subtasks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	duration INTERVAL,
	add_to_schedule BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	subtask_id TEXT REFERENCES subtasks(id) ON DELETE SET NULL,
	exec_status VARCHAR(2) NOT NULL DEFAULT 'IW',
	fixed_date BOOLEAN NOT NULL DEFAULT FALSE,
	planned_start TIMESTAMP,
	planned_finish TIMESTAMP,
	interruption INTERVAL NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS vacations (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_employee ON executions(employee_id, exec_status);
CREATE INDEX IF NOT EXISTS idx_vacations_employee ON vacations(employee_id);
`

const selectWorkUnits = `
SELECT e.id, e.employee_id, t.id, t.object_code, t.exec_status,
	s.id, s.name, (EXTRACT(EPOCH FROM s.duration) * 1000000)::BIGINT, s.add_to_schedule,
	e.exec_status, e.fixed_date, e.planned_start, e.planned_finish,
	(EXTRACT(EPOCH FROM e.interruption) * 1000000)::BIGINT
FROM executions e
JOIN tasks t ON t.id = e.task_id
LEFT JOIN subtasks s ON s.id = e.subtask_id
`

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, SchemaSQL)
	return err
}

// PostgresRepository reads work units from the relational ERP layout.
// Timestamps are stored without a zone and read as wall clock times in Location.
type PostgresRepository struct {
	Pool     *pgxpool.Pool
	Location *time.Location
	Logger   logger.Interface
}

func (r *PostgresRepository) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// toWallClock keeps the clock reading of t in the repository location and drops the zone
func (r *PostgresRepository) toWallClock(t time.Time) time.Time {
	t = t.In(r.location())
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (r *PostgresRepository) fromWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), r.location())
}

func (r *PostgresRepository) scanWorkUnit(row pgx.Row) (WorkUnit, error) {
	var unit WorkUnit
	var subtaskID, subtaskName *string
	var subtaskDuration *int64
	var addToSchedule *bool
	var plannedStart, plannedFinish *time.Time
	var interruption int64

	err := row.Scan(&unit.ID, &unit.EmployeeID, &unit.Task.ID, &unit.Task.ObjectCode, &unit.Task.Status,
		&subtaskID, &subtaskName, &subtaskDuration, &addToSchedule,
		&unit.Status, &unit.FixedDate, &plannedStart, &plannedFinish, &interruption)
	if err != nil {
		return WorkUnit{}, err
	}

	if subtaskID != nil {
		unit.Subtask = &SubtaskRef{ID: *subtaskID}
		if subtaskName != nil {
			unit.Subtask.Name = *subtaskName
		}
		if subtaskDuration != nil {
			unit.Subtask.Duration = time.Duration(*subtaskDuration) * time.Microsecond
		}
		if addToSchedule != nil {
			unit.Subtask.AddToSchedule = *addToSchedule
		}
	}

	if plannedStart != nil {
		start := r.fromWallClock(*plannedStart)
		unit.PlannedStart = &start
	}
	if plannedFinish != nil {
		finish := r.fromWallClock(*plannedFinish)
		unit.PlannedFinish = &finish
	}
	unit.Interruption = time.Duration(interruption) * time.Microsecond

	return unit, nil
}

// FindSchedulable finds all schedulable units of an employee in storage order
func (r *PostgresRepository) FindSchedulable(ctx context.Context, employeeID string) ([]WorkUnit, error) {
	rows, err := r.Pool.Query(ctx, selectWorkUnits+`
		WHERE e.employee_id = $1 AND e.exec_status = ANY($2) AND t.exec_status = ANY($3) AND s.add_to_schedule
		ORDER BY e.id`,
		employeeID, statusStrings(SchedulableStatuses), taskStatusStrings(SchedulableTaskStatuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []WorkUnit{}
	for rows.Next() {
		unit, err := r.scanWorkUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	return units, rows.Err()
}

// FindLastFinished finds the finished unit with the latest planned finish
func (r *PostgresRepository) FindLastFinished(ctx context.Context, employeeID string) (*WorkUnit, error) {
	row := r.Pool.QueryRow(ctx, selectWorkUnits+`
		WHERE e.employee_id = $1 AND e.exec_status = ANY($2) AND t.exec_status = ANY($3)
		ORDER BY e.planned_finish DESC NULLS LAST
		LIMIT 1`,
		employeeID, statusStrings(FinishedStatuses), taskStatusStrings(FinishedTaskStatuses))

	unit, err := r.scanWorkUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &unit, nil
}

// FindEmployeesWithQueue lists all employees that have schedulable units
func (r *PostgresRepository) FindEmployeesWithQueue(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT DISTINCT e.employee_id
		FROM executions e
		JOIN tasks t ON t.id = e.task_id
		JOIN subtasks s ON s.id = e.subtask_id
		WHERE e.exec_status = ANY($1) AND t.exec_status = ANY($2) AND s.add_to_schedule
		ORDER BY e.employee_id`,
		statusStrings(SchedulableStatuses), taskStatusStrings(SchedulableTaskStatuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []string{}
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return nil, err
		}
		employees = append(employees, employeeID)
	}

	return employees, rows.Err()
}

// UpdatePlanning writes all planning updates in a single transaction
func (r *PostgresRepository) UpdatePlanning(ctx context.Context, updates []PlanningUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, update := range updates {
		batch.Queue(`
			UPDATE executions
			SET planned_start = $2, planned_finish = $3, interruption = $4 * INTERVAL '1 microsecond'
			WHERE id = $1`,
			update.ID, r.toWallClock(update.PlannedStart), r.toWallClock(update.PlannedFinish),
			update.Interruption.Microseconds())
	}

	return pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)

		for _, update := range updates {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return errors.Wrap(err, update.ID)
			}
			if tag.RowsAffected() != 1 {
				results.Close()
				return errors.Wrap(ErrUnknownWorkUnit, update.ID)
			}
		}

		return results.Close()
	})
}

// PostgresVacationRepository reads vacations from postgres
type PostgresVacationRepository struct {
	Pool     *pgxpool.Pool
	Location *time.Location
}

// FindByEmployee finds all vacations of an employee
func (r *PostgresVacationRepository) FindByEmployee(ctx context.Context, employeeID string) ([]Vacation, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, employee_id, start_date, end_date
		FROM vacations
		WHERE employee_id = $1
		ORDER BY start_date`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	location := r.Location
	if location == nil {
		location = time.UTC
	}

	vacations := []Vacation{}
	for rows.Next() {
		var vacation Vacation
		if err := rows.Scan(&vacation.ID, &vacation.EmployeeID, &vacation.StartDate, &vacation.EndDate); err != nil {
			return nil, err
		}
		vacation.StartDate = time.Date(vacation.StartDate.Year(), vacation.StartDate.Month(), vacation.StartDate.Day(), 0, 0, 0, 0, location)
		vacation.EndDate = time.Date(vacation.EndDate.Year(), vacation.EndDate.Month(), vacation.EndDate.Day(), 0, 0, 0, 0, location)
		vacations = append(vacations, vacation)
	}

	return vacations, rows.Err()
}
