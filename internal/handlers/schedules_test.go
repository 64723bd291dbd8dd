package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"heating_control/internal/models"
	"heating_control/internal/repository"
	"heating_control/internal/service"
)

func TestScheduleHandlers_CRUDAndDayTypes(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	schedules := &mockSchedules{
		schedules: []models.Schedule{
			{ID: "workday", Name: "Workday"},
			{ID: "weekend", Name: "Weekend"},
		},
		schedule: &models.Schedule{ID: "workday", Name: "Workday"},
		dayTypes: []models.DayType{
			{ID: "work_day"},
			{ID: "weekend_day"},
		},
	}
	s := &service.Service{Authorization: auth, Schedules: schedules}
	r := newTestRouter(s)

	// List
	w := doJSON(r, http.MethodGet, "/api/v1/schedules/", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count     int               `json:"count"`
		Schedules []models.Schedule `json:"schedules"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Schedules) != 2 {
		t.Fatalf("unexpected list response: %+v", out)
	}

	// Get
	w = doJSON(r, http.MethodGet, "/api/v1/schedules/workday", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d, body=%s", w.Code, w.Body.String())
	}
	if schedules.lastID != "workday" {
		t.Fatalf("expected Get called with workday, got %q", schedules.lastID)
	}

	// Day types (static segment must not be swallowed by the :id route)
	w = doJSON(r, http.MethodGet, "/api/v1/schedules/daytypes", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("daytypes status=%d, body=%s", w.Code, w.Body.String())
	}
	var dt struct {
		Count    int              `json:"count"`
		DayTypes []models.DayType `json:"day_types"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &dt)
	if dt.Count != 2 {
		t.Fatalf("unexpected daytypes response: %+v", dt)
	}

	// Create → 201
	w = doJSON(r, http.MethodPost, "/api/v1/schedules/", `{"id":"eco","name":"Eco week"}`, "valid")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d, body=%s", w.Code, w.Body.String())
	}

	// Delete
	w = doJSON(r, http.MethodDelete, "/api/v1/schedules/eco", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status=%d, body=%s", w.Code, w.Body.String())
	}
}

func TestScheduleHandlers_Errors(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	// Not found → 404
	schedules := &mockSchedules{err: fmt.Errorf("schedule %q: %w", "missing", repository.ErrNotFound)}
	s := &service.Service{Authorization: auth, Schedules: schedules}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/api/v1/schedules/missing", "", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body=%s)", w.Code, w.Body.String())
	}

	// Validation failure → 400
	schedules.err = fmt.Errorf("week must define all seven days")
	w = doJSON(r, http.MethodPost, "/api/v1/schedules/", `{"id":"bad","name":"Bad"}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body=%s)", w.Code, w.Body.String())
	}
}
