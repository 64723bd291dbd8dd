package repository

import (
	"context"
	"errors"
	"testing"

	"heating_control/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockZoneRepo(t *testing.T) (*ZoneSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewZoneSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func zoneColumns() []string {
	return []string{"id", "name", "thermostats", "temp_sensors", "humidity_sensors", "schedule_id", "enabled"}
}

func TestZoneSQLite_Get(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows(zoneColumns()).
		AddRow("living", "Living Room",
			`["climate.trv_living"]`, `["sensor.living_temp"]`, `[]`,
			"workday", true)

	mock.ExpectQuery("SELECT id, name, thermostats, temp_sensors, humidity_sensors, schedule_id, enabled FROM zones WHERE id=\\?").
		WithArgs("living").
		WillReturnRows(rows)

	z, err := repo.Get(context.Background(), "living")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Name != "Living Room" || z.ScheduleID != "workday" || !z.Enabled {
		t.Fatalf("unexpected zone: %+v", z)
	}
	if len(z.Thermostats) != 1 || z.Thermostats[0] != "climate.trv_living" {
		t.Fatalf("unexpected thermostats: %+v", z.Thermostats)
	}
	if len(z.HumiditySensors) != 0 {
		t.Fatalf("expected no humidity sensors, got %+v", z.HumiditySensors)
	}
}

func TestZoneSQLite_Get_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, name, thermostats, temp_sensors, humidity_sensors, schedule_id, enabled FROM zones WHERE id=\\?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(zoneColumns()))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestZoneSQLite_Create(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO zones").
		WithArgs("bedroom", "Bedroom",
			`["climate.trv_bedroom"]`, `["sensor.bedroom_temp"]`, `["sensor.bedroom_humidity"]`,
			"", true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), models.Zone{
		ID:              "bedroom",
		Name:            "Bedroom",
		Thermostats:     []string{"climate.trv_bedroom"},
		TempSensors:     []string{"sensor.bedroom_temp"},
		HumiditySensors: []string{"sensor.bedroom_humidity"},
		Enabled:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestZoneSQLite_Update_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	mock.ExpectExec("UPDATE zones SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), models.Zone{ID: "missing", Name: "Missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestZoneSQLite_Delete(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM zones WHERE id=\\?").
		WithArgs("attic").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "attic"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestZoneSQLite_AssignSchedule_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockZoneRepo(t)
	defer cleanup()

	mock.ExpectExec("UPDATE zones SET schedule_id=\\? WHERE id=\\?").
		WithArgs("workday", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AssignSchedule(context.Background(), "missing", "workday")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
