package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/locking"
	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLockTTL     = time.Minute
	defaultConcurrency = 4
)

// QueueRecalculatorInterface recalculates the queue of a single employee
type QueueRecalculatorInterface interface {
	RecalculateQueue(ctx context.Context, employeeID string) ([]executions.PlanningUpdate, error)
}

// EmployeeResult is the outcome of the recalculation of one employee in a batch
type EmployeeResult struct {
	EmployeeID string `json:"employeeId"`
	Planned    int    `json:"planned"`
	Error      string `json:"error,omitempty"`
}

// Recalculator serializes recalculations per employee
type Recalculator struct {
	Service     QueueRecalculatorInterface
	Locker      locking.LockerInterface
	Logger      logger.Interface
	LockTTL     time.Duration
	Concurrency int
}

func lockKey(employeeID string) string {
	return fmt.Sprintf("planning-queue-%s", employeeID)
}

// Recalculate recalculates the queue of an employee while holding the employee's lock
func (r *Recalculator) Recalculate(ctx context.Context, employeeID string) ([]executions.PlanningUpdate, error) {
	ttl := r.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	lock, err := r.Locker.Acquire(ctx, lockKey(employeeID), ttl, false)
	if err != nil {
		return nil, errors.Wrapf(err, "could not lock queue of employee %s", employeeID)
	}

	defer func() {
		err := lock.Release(context.Background())
		if err != nil {
			r.Logger.Error(fmt.Sprintf("could not release lock %s", lock.Key()), err)
		}
	}()

	return r.Service.RecalculateQueue(ctx, employeeID)
}

// RecalculateMany recalculates independent employees in parallel.
// A failing employee does not stop the others, the first failure is returned next to all results.
func (r *Recalculator) RecalculateMany(ctx context.Context, employeeIDs []string) ([]EmployeeResult, error) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]EmployeeResult, len(employeeIDs))

	wg := errgroup.Group{}
	wg.SetLimit(concurrency)

	for index, employeeID := range employeeIDs {
		index, employeeID := index, employeeID

		wg.Go(func() error {
			results[index].EmployeeID = employeeID

			updates, err := r.Recalculate(ctx, employeeID)
			if err != nil {
				results[index].Error = err.Error()
				r.Logger.Error(fmt.Sprintf("recalculation of employee %s failed", employeeID), err)
				return errors.Wrap(err, employeeID)
			}

			results[index].Planned = len(updates)
			return nil
		})
	}

	err := wg.Wait()
	return results, err
}
