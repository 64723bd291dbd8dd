package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"heating_control/internal/models"
)

type DayTypeSQLite struct {
	db *sql.DB
}

func NewDayTypeSQLite(db *sql.DB) *DayTypeSQLite { return &DayTypeSQLite{db: db} }

var _ DayTypeRepo = (*DayTypeSQLite)(nil)

func (r *DayTypeSQLite) List(ctx context.Context) ([]models.DayType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, schedule, description FROM day_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DayType, 0, 8)
	for rows.Next() {
		var (
			dt          models.DayType
			description sql.NullString
		)
		if err := rows.Scan(&dt.ID, &dt.Schedule, &description); err != nil {
			return nil, err
		}
		if description.Valid {
			dt.Description = description.String
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

func (r *DayTypeSQLite) Get(ctx context.Context, id string) (*models.DayType, error) {
	var (
		dt          models.DayType
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, schedule, description FROM day_types WHERE id=?`, id).
		Scan(&dt.ID, &dt.Schedule, &description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("day type %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if description.Valid {
		dt.Description = description.String
	}
	return &dt, nil
}
