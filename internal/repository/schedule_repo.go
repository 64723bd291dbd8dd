package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"heating_control/internal/models"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite { return &ScheduleSQLite{db: db} }

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const selectScheduleSQL = `SELECT id, name, description, enabled, week, created_at, updated_at FROM schedules`

func (r *ScheduleSQLite) List(ctx context.Context) ([]models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, selectScheduleSQL+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Schedule, 0, 8)
	for rows.Next() {
		s, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ScheduleSQLite) Get(ctx context.Context, id string) (*models.Schedule, error) {
	row := r.db.QueryRowContext(ctx, selectScheduleSQL+` WHERE id=?`, id)
	s, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schedule %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleSQLite) Create(ctx context.Context, s models.Schedule) error {
	week, err := json.Marshal(s.Week)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO schedules (id, name, description, enabled, week, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Description, s.Enabled, string(week), now, now)
	if err != nil {
		return fmt.Errorf("insert schedule %q: %w", s.ID, err)
	}
	return nil
}

func (r *ScheduleSQLite) Update(ctx context.Context, s models.Schedule) error {
	week, err := json.Marshal(s.Week)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedules SET name=?, description=?, enabled=?, week=?, updated_at=?
		WHERE id=?
	`, s.Name, s.Description, s.Enabled, string(week), time.Now().UTC(), s.ID)
	if err != nil {
		return fmt.Errorf("update schedule %q: %w", s.ID, err)
	}
	return requireRowAffected(res, s.ID)
}

func (r *ScheduleSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %q: %w", id, err)
	}
	return requireRowAffected(res, id)
}

func scanSchedule(scan func(...any) error) (models.Schedule, error) {
	var (
		s           models.Schedule
		description sql.NullString
		week        string
	)
	if err := scan(&s.ID, &s.Name, &description, &s.Enabled, &week, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return models.Schedule{}, err
	}
	if description.Valid {
		s.Description = description.String
	}
	if err := json.Unmarshal([]byte(week), &s.Week); err != nil {
		return models.Schedule{}, fmt.Errorf("decode week for schedule %q: %w", s.ID, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
