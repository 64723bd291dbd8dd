package service

import (
	"context"

	"heating_control/internal/models"
)

// SystemStatus is the top-level live snapshot served over HTTP and pushed
// to websocket subscribers.
type SystemStatus struct {
	Mode       ModeInfo                `json:"mode"`
	Connection models.ConnectionStatus `json:"hub_connection"`
	Zones      []ZoneStatus            `json:"zones"`
}

// StatusService assembles the system snapshot from the mode orchestrator,
// the zone directory and the hub entity cache.
type StatusService struct {
	hub   HubClient
	zones Zones
	modes Modes
}

func NewStatusService(hub HubClient, zones Zones, modes Modes) *StatusService {
	return &StatusService{hub: hub, zones: zones, modes: modes}
}

var _ Status = (*StatusService)(nil)

// HubStatus reports the hub session state without touching storage.
func (s *StatusService) HubStatus() models.ConnectionStatus {
	return s.hub.Status()
}

// Snapshot builds the full system view. A zone whose status cannot be
// read is skipped rather than failing the whole snapshot; the hub cache
// is in memory so the only realistic failure is a missing zone row.
func (s *StatusService) Snapshot(ctx context.Context) (SystemStatus, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return SystemStatus{}, err
	}

	status := SystemStatus{
		Mode:       s.modes.Info(),
		Connection: s.hub.Status(),
		Zones:      make([]ZoneStatus, 0, len(zones)),
	}
	for _, z := range zones {
		zs, err := s.zones.Status(ctx, z.ID)
		if err != nil {
			continue
		}
		status.Zones = append(status.Zones, *zs)
	}
	return status, nil
}
