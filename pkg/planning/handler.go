package planning

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/itaplanner/planner-backend/pkg/communication"
	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/locking"
	"github.com/itaplanner/planner-backend/pkg/logger"
)

// BatchRequest is the body of a batch recalculation
type BatchRequest struct {
	EmployeeIDs []string `json:"employeeIds" validate:"required,min=1,max=500,dive,required"`
}

// ErrorStatuses maps planning errors to HTTP statuses
var ErrorStatuses = []communication.ErrorStatus{
	{Err: ErrMissingDuration, Status: http.StatusUnprocessableEntity, Message: "A work unit of the queue has no duration"},
	{Err: ErrDurationTooLong, Status: http.StatusUnprocessableEntity, Message: "A work unit of the queue is too long to be planned"},
	{Err: executions.ErrUnknownWorkUnit, Status: http.StatusConflict, Message: "The queue changed during recalculation"},
	{Err: locking.ErrNotObtained, Status: http.StatusConflict, Message: "The queue is being recalculated already"},
	{Err: date.ErrConfiguration, Status: http.StatusInternalServerError, Message: "The business calendar is misconfigured"},
}

// Handler handles all queue planning API calls
type Handler struct {
	Service         *Service
	Recalculator    *Recalculator
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// RegisterRoutes adds the planning routes to the router
func (handler *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/employees/{employeeID}/queue", handler.GetQueue).Methods(http.MethodGet)
	r.HandleFunc("/employees/{employeeID}/queue/recalculate", handler.RecalculateQueue).Methods(http.MethodPost)
	r.HandleFunc("/queue/recalculate", handler.RecalculateBatch).Methods(http.MethodPost)
}

// GetQueue is the route for listing an employee's planned queue
func (handler *Handler) GetQueue(writer http.ResponseWriter, request *http.Request) {
	employeeID := mux.Vars(request)["employeeID"]

	entries, err := handler.Service.Queue(request.Context(), employeeID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not load queue", err)
		return
	}

	handler.ResponseManager.Respond(writer, entries)
}

// RecalculateQueue is the route for recalculating an employee's queue
func (handler *Handler) RecalculateQueue(writer http.ResponseWriter, request *http.Request) {
	employeeID := mux.Vars(request)["employeeID"]

	_, err := handler.Recalculator.Recalculate(request.Context(), employeeID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not recalculate queue", err)
		return
	}

	handler.ResponseManager.RespondWithNoContent(writer)
}

// RecalculateBatch is the route for recalculating the queues of several employees
func (handler *Handler) RecalculateBatch(writer http.ResponseWriter, request *http.Request) {
	body := BatchRequest{}

	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	v := validator.New()
	err = v.Struct(body)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	results, err := handler.Recalculator.RecalculateMany(request.Context(), body.EmployeeIDs)
	if err != nil {
		handler.ResponseManager.RespondWithStatus(writer, results, http.StatusMultiStatus)
		return
	}

	handler.ResponseManager.Respond(writer, results)
}
