package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"heating_control/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockEventRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewEventSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestEventSQLite_Append_FillsDefaults(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO mode_events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "MODE_CHANGE", "mode changed to eco", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), models.ModeEvent{
		Type:        "mode_change",
		Description: "mode changed to eco",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventSQLite_Append_WithMetadata(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO mode_events").
		WithArgs("evt-1", at.Format("2006-01-02 15:04:05"), "RESTORE", "timer fired", `{"from":"ventilation","to":"default"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), models.ModeEvent{
		EventID:     "evt-1",
		OccurredAt:  at,
		Type:        "RESTORE",
		Description: "timer fired",
		Metadata:    map[string]string{"from": "ventilation", "to": "default"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventSQLite_Append_DBError(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO mode_events").
		WillReturnError(errors.New("disk full"))

	err := repo.Append(context.Background(), models.ModeEvent{Type: "ERROR", Description: "boom"})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEventSQLite_List_NoFilters(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	t1 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("a", t1, "MODE_CHANGE", "to eco", `{"zones":2}`).
		AddRow("b", t2, "RESTORE", "back to default", nil)

	mock.ExpectQuery("SELECT id, occurred_at, type, message, meta FROM mode_events").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EventID != "a" || got[0].Type != "MODE_CHANGE" {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	meta, ok := got[0].Metadata.(map[string]any)
	if !ok {
		t.Fatalf("expected parsed metadata map, got %T", got[0].Metadata)
	}
	if meta["zones"] != float64(2) {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil metadata for second event, got %+v", got[1].Metadata)
	}
}

func TestEventSQLite_List_WithFilters(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("a", from.Add(time.Hour), "MODE_CHANGE", "to stay_home", nil)

	mock.ExpectQuery("SELECT id, occurred_at, type, message, meta FROM mode_events WHERE occurred_at >= \\? AND occurred_at <= \\? AND type = \\? ORDER BY occurred_at ASC").
		WithArgs(from, to, "MODE_CHANGE").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), from, to, "mode_change")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "a" {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestEventSQLite_List_RowError(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("a", time.Now(), "ERROR", "broken", nil).
		RowError(0, errors.New("read failed"))

	mock.ExpectQuery("SELECT id, occurred_at, type, message, meta FROM mode_events").
		WillReturnRows(rows)

	if _, err := repo.List(context.Background(), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
