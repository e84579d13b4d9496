package planning

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/itaplanner/planner-backend/pkg/communication"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/locking"
	"github.com/itaplanner/planner-backend/pkg/logger"
)

func newTestRouter(repository *executions.MockRepository) *mux.Router {
	service := newTestService(repository)
	handler := &Handler{
		Service:         service,
		Recalculator:    &Recalculator{Service: service, Locker: locking.NewLockerMemory(), Logger: logger.Logger{}},
		Logger:          logger.Logger{},
		ResponseManager: &communication.ResponseManager{Logger: logger.Logger{}, Statuses: ErrorStatuses},
	}

	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestHandler_RecalculateQueue(t *testing.T) {
	withNow(t, monday(7, 0))

	repository := &executions.MockRepository{WorkUnits: unitPointers(queued("a", time.Hour))}
	router := newTestRouter(repository)

	request := httptest.NewRequest(http.MethodPost, "/employees/employee/queue/recalculate", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("got status %d: %s", recorder.Code, recorder.Body.String())
	}

	request = httptest.NewRequest(http.MethodGet, "/employees/employee/queue", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("got status %d", recorder.Code)
	}

	var entries []QueueEntry
	if err := json.Unmarshal(recorder.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].PlannedStart == nil || !entries[0].PlannedStart.Equal(monday(9, 0)) {
		t.Errorf("unexpected queue %+v", entries)
	}
}

func TestHandler_RecalculateQueueMissingDuration(t *testing.T) {
	withNow(t, monday(7, 0))

	repository := &executions.MockRepository{WorkUnits: unitPointers(queued("broken", 0))}
	router := newTestRouter(repository)

	request := httptest.NewRequest(http.MethodPost, "/employees/employee/queue/recalculate", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d", recorder.Code)
	}
}

func TestHandler_RecalculateQueueDurationTooLong(t *testing.T) {
	withNow(t, monday(7, 0))

	repository := &executions.MockRepository{WorkUnits: unitPointers(queued("huge", 100000*time.Hour))}
	router := newTestRouter(repository)

	request := httptest.NewRequest(http.MethodPost, "/employees/employee/queue/recalculate", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d: %s", recorder.Code, recorder.Body.String())
	}
	if repository.Writes != 0 {
		t.Errorf("expected no writes, got %d", repository.Writes)
	}
}

func TestHandler_RecalculateBatch(t *testing.T) {
	withNow(t, monday(7, 0))

	repository := &executions.MockRepository{WorkUnits: unitPointers(queued("a", time.Hour))}
	router := newTestRouter(repository)

	var batchTests = []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"employeeIds": ["employee", "nobody"]}`, status: http.StatusOK},
		{name: "empty list", body: `{"employeeIds": []}`, status: http.StatusBadRequest},
		{name: "empty id", body: `{"employeeIds": [""]}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"employeeIds": `, status: http.StatusBadRequest},
	}

	for _, tt := range batchTests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/queue/recalculate", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			if recorder.Code != tt.status {
				t.Errorf("got status %d, wanted %d: %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}

	unit, _ := repository.FindByID("a")
	if unit.PlannedStart == nil {
		t.Error("batch did not plan the queue")
	}
}

func TestHandler_RecalculateBatchPartialFailure(t *testing.T) {
	withNow(t, monday(7, 0))

	broken := queued("broken", 0)
	broken.EmployeeID = "broken"

	repository := &executions.MockRepository{WorkUnits: unitPointers(queued("a", time.Hour), broken)}
	router := newTestRouter(repository)

	request := httptest.NewRequest(http.MethodPost, "/queue/recalculate", strings.NewReader(`{"employeeIds": ["employee", "broken"]}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusMultiStatus {
		t.Fatalf("got status %d", recorder.Code)
	}

	var results []EmployeeResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Planned != 1 || results[1].Error == "" {
		t.Errorf("unexpected results %+v", results)
	}
}
