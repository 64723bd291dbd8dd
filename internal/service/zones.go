package service

import (
	"context"
	"fmt"

	"heating_control/internal/models"
	"heating_control/internal/repository"
)

// ThermostatStatus is the live view of one thermostat inside a zone.
type ThermostatStatus struct {
	EntityID    string   `json:"entity_id"`
	Name        string   `json:"name,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	CurrentTemp *float64 `json:"current_temperature,omitempty"`
	TargetTemp  *float64 `json:"target_temperature,omitempty"`
	Available   bool     `json:"available"`
}

// ZoneStatus joins a zone's configuration with the live hub snapshot.
// Averages cover only the sensors currently reporting a value.
type ZoneStatus struct {
	Zone        models.Zone        `json:"zone"`
	Thermostats []ThermostatStatus `json:"thermostats"`
	AvgTemp     *float64           `json:"average_temperature,omitempty"`
	AvgHumidity *float64           `json:"average_humidity,omitempty"`
}

// ZoneService manages the zone directory.
type ZoneService struct {
	repo repository.ZoneRepo
	hub  HubClient
}

func NewZoneService(repo repository.ZoneRepo, hub HubClient) *ZoneService {
	return &ZoneService{repo: repo, hub: hub}
}

var _ Zones = (*ZoneService)(nil)

func (s *ZoneService) List(ctx context.Context) ([]models.Zone, error) {
	return s.repo.List(ctx)
}

// ListEnabled returns the zones the orchestrator is allowed to command.
func (s *ZoneService) ListEnabled(ctx context.Context) ([]models.Zone, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	enabled := make([]models.Zone, 0, len(all))
	for _, z := range all {
		if z.Enabled {
			enabled = append(enabled, z)
		}
	}
	return enabled, nil
}

func (s *ZoneService) Get(ctx context.Context, id string) (*models.Zone, error) {
	return s.repo.Get(ctx, id)
}

func (s *ZoneService) Create(ctx context.Context, z models.Zone) error {
	if err := validateZone(z); err != nil {
		return err
	}
	return s.repo.Create(ctx, z)
}

func (s *ZoneService) Update(ctx context.Context, z models.Zone) error {
	if err := validateZone(z); err != nil {
		return err
	}
	return s.repo.Update(ctx, z)
}

func (s *ZoneService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ZoneService) AssignSchedule(ctx context.Context, zoneID, scheduleID string) error {
	return s.repo.AssignSchedule(ctx, zoneID, scheduleID)
}

// Status builds the live view of one zone from the warm entity cache.
// Entities missing from the cache are reported unavailable rather than
// omitted, so the response shape is stable across hub reconnects.
func (s *ZoneService) Status(ctx context.Context, id string) (*ZoneStatus, error) {
	zone, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := s.hub.Snapshot()

	status := &ZoneStatus{
		Zone:        *zone,
		Thermostats: make([]ThermostatStatus, 0, len(zone.Thermostats)),
	}
	for _, entityID := range zone.Thermostats {
		ts := ThermostatStatus{EntityID: entityID}
		if e, ok := snapshot[entityID]; ok && e.Thermostat != nil {
			ts.Name = e.Thermostat.Name
			ts.Mode = e.Thermostat.Mode
			ts.CurrentTemp = e.Thermostat.CurrentTemp
			ts.TargetTemp = e.Thermostat.TargetTemp
			ts.Available = e.Thermostat.Available
		}
		status.Thermostats = append(status.Thermostats, ts)
	}
	status.AvgTemp = averageSensor(snapshot, zone.TempSensors)
	status.AvgHumidity = averageSensor(snapshot, zone.HumiditySensors)
	return status, nil
}

func averageSensor(snapshot map[string]models.EntityState, ids []string) *float64 {
	var sum float64
	var n int
	for _, id := range ids {
		e, ok := snapshot[id]
		if !ok || e.Sensor == nil || !e.Sensor.Available || e.Sensor.Value == nil {
			continue
		}
		sum += *e.Sensor.Value
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func validateZone(z models.Zone) error {
	if z.ID == "" {
		return fmt.Errorf("zone id is required")
	}
	if z.Name == "" {
		return fmt.Errorf("zone name is required")
	}
	if len(z.Thermostats) == 0 {
		return fmt.Errorf("zone %q has no thermostats", z.ID)
	}
	return nil
}
