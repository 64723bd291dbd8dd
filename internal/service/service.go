package service

import (
	"context"
	"time"

	"heating_control/internal/logger"
	"heating_control/internal/models"
	"heating_control/internal/repository"
)

// HubClient is the slice of the hass client the services depend on.
type HubClient interface {
	CallService(domain, service, entityID string, data map[string]any) bool
	Snapshot() map[string]models.EntityState
	SelectValue(entityID string) (string, bool)
	Status() models.ConnectionStatus
}

// Dispatcher translates desired thermostat behavior into hub commands.
type Dispatcher interface {
	SetHVACMode(thermostatID, hvacMode string) bool
	PublishWeeklySchedule(thermostatID string, week map[string]string) bool
	SelectOption(entityID, option string) bool
}

// ModeRequest carries the parameters of a mode transition.
type ModeRequest struct {
	Mode models.SystemMode
	// Force re-applies the mode even when it is already current.
	Force bool
	// ActiveZones limits stay_home heating to the listed zones; nil means all.
	ActiveZones []string
	// RestoreAt is the absolute restore instant for timer mode.
	RestoreAt time.Time
	// VentilationMinutes is the off period for ventilation mode; 0 uses the default.
	VentilationMinutes int
}

// ModeInfo describes the current regime and any pending restore.
type ModeInfo struct {
	Current          models.SystemMode `json:"current_mode"`
	Previous         models.SystemMode `json:"previous_mode"`
	RestoreTarget    models.SystemMode `json:"restore_target,omitempty"`
	RestoreAt        *time.Time        `json:"restore_at,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds,omitempty"`
}

// Modes owns the single global operating mode and all deferred restores.
type Modes interface {
	SetMode(ctx context.Context, req ModeRequest) error
	CancelTimer(ctx context.Context) error
	Current() models.SystemMode
	Info() ModeInfo
	RestoreFromHub(ctx context.Context) error
}

// Zones manages the zone directory and aggregated zone status.
type Zones interface {
	List(ctx context.Context) ([]models.Zone, error)
	ListEnabled(ctx context.Context) ([]models.Zone, error)
	Get(ctx context.Context, id string) (*models.Zone, error)
	Create(ctx context.Context, z models.Zone) error
	Update(ctx context.Context, z models.Zone) error
	Delete(ctx context.Context, id string) error
	AssignSchedule(ctx context.Context, zoneID, scheduleID string) error
	Status(ctx context.Context, id string) (*ZoneStatus, error)
}

// Schedules manages schedule definitions and their wire-format expansion.
type Schedules interface {
	List(ctx context.Context) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, s models.Schedule) error
	Update(ctx context.Context, s models.Schedule) error
	Delete(ctx context.Context, id string) error
	DayTypes(ctx context.Context) ([]models.DayType, error)
	// WeekSchedule expands a schedule id to day -> wire string.
	WeekSchedule(ctx context.Context, scheduleID string) (map[string]string, error)
	// StayHomeWeek expands a schedule with swapDay replaced by the weekend pattern.
	StayHomeWeek(ctx context.Context, scheduleID, swapDay string) (map[string]string, error)
}

// Status exposes the read-only live snapshot.
type Status interface {
	Snapshot(ctx context.Context) (SystemStatus, error)
	HubStatus() models.ConnectionStatus
}

// EventLog exposes the append-only mode audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ModeEvent, error)
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// LogFilter supports audit history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "MODE_CHANGE", "RESTORE", "ERROR"
}

// Service aggregates all sub-services.
type Service struct {
	Modes
	Zones
	Schedules
	Status
	EventLog
	Authorization
}

// Config carries the wiring knobs the services need beyond their repos.
type Config struct {
	// ModeEntityID is the hub input_select reflecting the current mode.
	ModeEntityID string
	// TopicNamespace prefixes device publish topics (e.g. "zigbee2mqtt").
	TopicNamespace string
	// DeviceNames maps thermostat entity ids to publish device names.
	DeviceNames map[string]string
}

// NewService wires repositories and the hub client into concrete services.
func NewService(repos *repository.Repository, hub HubClient, cfg Config, log *logger.Logger) *Service {
	dispatcher := NewDeviceDispatcher(hub, cfg.TopicNamespace, cfg.DeviceNames, log)
	zones := NewZoneService(repos.Zones, hub)
	schedules := NewScheduleService(repos.Schedules, repos.DayTypes)
	modes := NewModeService(dispatcher, zones, schedules, repos.Events, hub, cfg.ModeEntityID, log)
	return &Service{
		Modes:         modes,
		Zones:         zones,
		Schedules:     schedules,
		Status:        NewStatusService(hub, zones, modes),
		EventLog:      NewEventLogService(repos.Events),
		Authorization: NewAuthService(repos.Auth),
	}
}
