package executions

import (
	"context"
	"time"

	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBRepository stores work units in a mongo collection
type MongoDBRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

func schedulableFilter(employeeID string) bson.D {
	return bson.D{
		{Key: "employeeId", Value: employeeID},
		{Key: "status", Value: bson.M{"$in": statusStrings(SchedulableStatuses)}},
		{Key: "subtask.addToSchedule", Value: true},
		{Key: "task.status", Value: bson.M{"$in": taskStatusStrings(SchedulableTaskStatuses)}},
	}
}

// FindSchedulable finds all schedulable units of an employee in storage order
func (r *MongoDBRepository) FindSchedulable(ctx context.Context, employeeID string) ([]WorkUnit, error) {
	units := []WorkUnit{}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"_id": 1})

	cursor, err := r.DB.Find(ctx, schedulableFilter(employeeID), findOptions)
	if err != nil {
		return nil, err
	}

	err = cursor.All(ctx, &units)
	if err != nil {
		return nil, err
	}

	return units, nil
}

// FindLastFinished finds the finished unit with the latest planned finish
func (r *MongoDBRepository) FindLastFinished(ctx context.Context, employeeID string) (*WorkUnit, error) {
	unit := WorkUnit{}

	findOptions := options.FindOne()
	findOptions.SetSort(bson.M{"plannedFinish": -1})

	filter := bson.D{
		{Key: "employeeId", Value: employeeID},
		{Key: "status", Value: bson.M{"$in": statusStrings(FinishedStatuses)}},
		{Key: "task.status", Value: bson.M{"$in": taskStatusStrings(FinishedTaskStatuses)}},
	}

	err := r.DB.FindOne(ctx, filter, findOptions).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &unit, nil
}

// FindEmployeesWithQueue lists all employees that have schedulable units
func (r *MongoDBRepository) FindEmployeesWithQueue(ctx context.Context) ([]string, error) {
	filter := bson.D{
		{Key: "status", Value: bson.M{"$in": statusStrings(SchedulableStatuses)}},
		{Key: "subtask.addToSchedule", Value: true},
		{Key: "task.status", Value: bson.M{"$in": taskStatusStrings(SchedulableTaskStatuses)}},
	}

	values, err := r.DB.Distinct(ctx, "employeeId", filter)
	if err != nil {
		return nil, err
	}

	employees := make([]string, 0, len(values))
	for _, value := range values {
		employeeID, ok := value.(string)
		if !ok {
			r.Logger.Info("Skipping employee id of unexpected type")
			continue
		}
		employees = append(employees, employeeID)
	}

	return employees, nil
}

// UpdatePlanning writes all planning updates in one ordered bulk write
func (r *MongoDBRepository) UpdatePlanning(ctx context.Context, updates []PlanningUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(updates))
	for _, update := range updates {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": update.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"plannedStart":  update.PlannedStart,
				"plannedFinish": update.PlannedFinish,
				"interruption":  update.Interruption,
			}}))
	}

	result, err := r.DB.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return err
	}

	if result.MatchedCount != int64(len(updates)) {
		return errors.Wrapf(ErrUnknownWorkUnit, "matched %d of %d work units", result.MatchedCount, len(updates))
	}

	return nil
}

// MongoDBVacationRepository stores vacations in a mongo collection.
// Dates are decoded as UTC and moved to Location.
type MongoDBVacationRepository struct {
	DB       *mongo.Collection
	Location *time.Location
}

// FindByEmployee finds all vacations of an employee
func (r *MongoDBVacationRepository) FindByEmployee(ctx context.Context, employeeID string) ([]Vacation, error) {
	vacations := []Vacation{}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"startDate": 1})

	cursor, err := r.DB.Find(ctx, bson.M{"employeeId": employeeID}, findOptions)
	if err != nil {
		return nil, err
	}

	err = cursor.All(ctx, &vacations)
	if err != nil {
		return nil, err
	}

	for i := range vacations {
		vacations[i] = vacations[i].In(r.Location)
	}

	return vacations, nil
}
