package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// NightlyJob recalculates every employee with a non empty queue, the default cursor moves with the date
type NightlyJob struct {
	Repository   executions.RepositoryInterface
	Calendars    *CalendarProvider
	Recalculator *Recalculator
	Logger       logger.Interface

	cron *cron.Cron
}

// Schedule registers the job with a five field cron expression evaluated in location
func (j *NightlyJob) Schedule(spec string, location *time.Location) error {
	if location == nil {
		location = time.Local
	}

	j.cron = cron.New(cron.WithLocation(location))
	_, err := j.cron.AddFunc(spec, func() {
		err := j.Run(context.Background())
		if err != nil {
			j.Logger.Error("nightly recalculation failed", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid cron expression %q", spec)
	}

	return nil
}

// Start starts the scheduler in its own goroutine
func (j *NightlyJob) Start() {
	j.cron.Start()
}

// Stop stops the scheduler, the returned context is done once a running job finished
func (j *NightlyJob) Stop() context.Context {
	if j.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return j.cron.Stop()
}

// Run refreshes the calendars and recalculates all queues once
func (j *NightlyJob) Run(ctx context.Context) error {
	employeeIDs, err := j.Repository.FindEmployeesWithQueue(ctx)
	if err != nil {
		return errors.Wrap(err, "could not find employees with a queue")
	}

	if j.Calendars != nil {
		for _, employeeID := range employeeIDs {
			err := j.Calendars.Invalidate(ctx, employeeID)
			if err != nil {
				j.Logger.Error(fmt.Sprintf("could not invalidate calendar of employee %s", employeeID), err)
			}
		}
	}

	results, err := j.Recalculator.RecalculateMany(ctx, employeeIDs)

	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
		}
	}
	j.Logger.Info(fmt.Sprintf("nightly recalculation finished for %d employees, %d failed", len(results), failed))

	return err
}
