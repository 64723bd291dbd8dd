package repository

import (
	"context"
	"database/sql"
	"time"

	"heating_control/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type ZoneRepo interface {
	List(ctx context.Context) ([]models.Zone, error)
	Get(ctx context.Context, id string) (*models.Zone, error)
	Create(ctx context.Context, z models.Zone) error
	Update(ctx context.Context, z models.Zone) error
	Delete(ctx context.Context, id string) error
	AssignSchedule(ctx context.Context, zoneID, scheduleID string) error
}

type ScheduleRepo interface {
	List(ctx context.Context) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, s models.Schedule) error
	Update(ctx context.Context, s models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type DayTypeRepo interface {
	List(ctx context.Context) ([]models.DayType, error)
	Get(ctx context.Context, id string) (*models.DayType, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ModeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ModeEvent, error)
}

type Repository struct {
	Zones     ZoneRepo
	Schedules ScheduleRepo
	DayTypes  DayTypeRepo
	Events    EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Zones:     NewZoneSQLite(db),
		Schedules: NewScheduleSQLite(db),
		DayTypes:  NewDayTypeSQLite(db),
		Events:    NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
