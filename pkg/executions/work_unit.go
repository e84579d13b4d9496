package executions

import (
	"time"
)

// Status is the execution status of a WorkUnit, values match the ERP status codes
type Status string

// Execution statuses
const (
	StatusQueued     Status = "IW"
	StatusInProgress Status = "IP"
	StatusOnHold     Status = "OH"
	StatusOnChecking Status = "OC"
	StatusDone       Status = "HD"
)

// TaskStatus is the execution status of the parent task
type TaskStatus string

// Task statuses
const (
	TaskQueued     TaskStatus = "IW"
	TaskInProgress TaskStatus = "IP"
	TaskOnHold     TaskStatus = "OH"
	TaskDone       TaskStatus = "HD"
	TaskSent       TaskStatus = "ST"
)

// SchedulableStatuses are the statuses of work units that get rescheduled
var SchedulableStatuses = []Status{StatusQueued, StatusInProgress}

// SchedulableTaskStatuses are the statuses a parent task needs for its units to be rescheduled
var SchedulableTaskStatuses = []TaskStatus{TaskQueued, TaskInProgress}

// FinishedStatuses are the statuses of work units that count as finished work
var FinishedStatuses = []Status{StatusDone, StatusOnChecking}

// FinishedTaskStatuses are the parent task statuses considered when looking for finished work
var FinishedTaskStatuses = []TaskStatus{TaskInProgress, TaskDone, TaskSent}

// TaskRef is the part of the parent task a WorkUnit carries along
type TaskRef struct {
	ID         string     `json:"id" bson:"id"`
	ObjectCode string     `json:"objectCode" bson:"objectCode"`
	Status     TaskStatus `json:"status" bson:"status"`
}

// SubtaskRef is the subtask definition a WorkUnit executes
type SubtaskRef struct {
	ID            string        `json:"id" bson:"id"`
	Name          string        `json:"name" bson:"name"`
	Duration      time.Duration `json:"duration" bson:"duration"`
	AddToSchedule bool          `json:"addToSchedule" bson:"addToSchedule"`
}

// WorkUnit is an employee's assignment to a subtask of a task, it carries the planned schedule
type WorkUnit struct {
	ID            string        `json:"id" bson:"_id"`
	EmployeeID    string        `json:"employeeId" bson:"employeeId"`
	Task          TaskRef       `json:"task" bson:"task"`
	Subtask       *SubtaskRef   `json:"subtask" bson:"subtask"`
	Status        Status        `json:"status" bson:"status"`
	FixedDate     bool          `json:"fixedDate" bson:"fixedDate"`
	PlannedStart  *time.Time    `json:"plannedStart" bson:"plannedStart"`
	PlannedFinish *time.Time    `json:"plannedFinish" bson:"plannedFinish"`
	Interruption  time.Duration `json:"interruption" bson:"interruption"`
}

// PlanningUpdate is the scheduler's output for a single WorkUnit
type PlanningUpdate struct {
	ID            string        `json:"id"`
	PlannedStart  time.Time     `json:"plannedStart"`
	PlannedFinish time.Time     `json:"plannedFinish"`
	Interruption  time.Duration `json:"interruption"`
}

// Vacation is a period an employee is away, StartDate inclusive and EndDate exclusive
type Vacation struct {
	ID         string    `json:"id" bson:"_id"`
	EmployeeID string    `json:"employeeId" bson:"employeeId"`
	StartDate  time.Time `json:"startDate" bson:"startDate"`
	EndDate    time.Time `json:"endDate" bson:"endDate"`
}

// In moves both dates to midnight of their day as seen in location
func (v Vacation) In(location *time.Location) Vacation {
	if location == nil {
		return v
	}

	start := v.StartDate.In(location)
	end := v.EndDate.In(location)
	v.StartDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, location)
	v.EndDate = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, location)

	return v
}

// Days returns every day of the vacation formatted with layout
func (v *Vacation) Days(layout string) []string {
	var days []string
	for day := v.StartDate; day.Before(v.EndDate); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(layout))
	}
	return days
}

func hasStatus(status Status, statuses []Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func hasTaskStatus(status TaskStatus, statuses []TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsSchedulable reports whether the scheduler is responsible for the unit
func (w *WorkUnit) IsSchedulable() bool {
	return hasStatus(w.Status, SchedulableStatuses) &&
		w.Subtask != nil && w.Subtask.AddToSchedule &&
		hasTaskStatus(w.Task.Status, SchedulableTaskStatuses)
}

// IsFinished reports whether the unit counts as finished work for the queue cursor
func (w *WorkUnit) IsFinished() bool {
	return hasStatus(w.Status, FinishedStatuses) && hasTaskStatus(w.Task.Status, FinishedTaskStatuses)
}

func statusStrings(statuses []Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func taskStatusStrings(statuses []TaskStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
