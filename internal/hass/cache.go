package hass

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"heating_control/internal/models"
)

// stateCache holds the last observed state per monitored entity. Writes
// happen only from the connect sequence and the listen loop; readers get
// point-in-time copies, entries are replaced wholesale.
type stateCache struct {
	mu       sync.RWMutex
	entities map[string]models.EntityState
}

func newStateCache() *stateCache {
	return &stateCache{entities: make(map[string]models.EntityState)}
}

// update classifies the raw state into its variant and replaces the cached
// entry. Returns false when the entity id matches no known category.
func (c *stateCache) update(raw rawState) (models.EntityState, bool) {
	entity, ok := classify(raw)
	if !ok {
		return models.EntityState{}, false
	}
	c.mu.Lock()
	c.entities[entity.EntityID] = entity
	c.mu.Unlock()
	return entity, true
}

func (c *stateCache) get(entityID string) (models.EntityState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[entityID]
	return e, ok
}

// snapshot returns a copy of the whole cache.
func (c *stateCache) snapshot() map[string]models.EntityState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.EntityState, len(c.entities))
	for id, e := range c.entities {
		out[id] = e
	}
	return out
}

// classify decides the entity variant once, at ingestion. Thermostats are
// climate.* entities; sensors split into temperature and humidity by the
// measurement kind in their id; input_select.* entities become selects.
func classify(raw rawState) (models.EntityState, bool) {
	available := raw.State != "unavailable"
	ts := parseTimestamp(raw.LastUpdated)
	name := attrString(raw.Attributes, "friendly_name")

	switch {
	case strings.HasPrefix(raw.EntityID, "climate."):
		t := &models.ThermostatState{
			EntityID:    raw.EntityID,
			Name:        name,
			CurrentTemp: attrFloat(raw.Attributes, "current_temperature"),
			TargetTemp:  attrFloat(raw.Attributes, "temperature"),
			Mode:        raw.State,
			Available:   available,
			LastUpdated: ts,
		}
		return models.EntityState{EntityID: raw.EntityID, Kind: models.KindThermostat, Thermostat: t}, true

	case strings.HasPrefix(raw.EntityID, "sensor.") && strings.Contains(strings.ToLower(raw.EntityID), "temp"):
		return sensorEntity(raw, models.KindTempSensor, "°C", name, available, ts), true

	case strings.HasPrefix(raw.EntityID, "sensor.") && strings.Contains(strings.ToLower(raw.EntityID), "humid"):
		return sensorEntity(raw, models.KindHumSensor, "%", name, available, ts), true

	case strings.HasPrefix(raw.EntityID, "input_select."):
		sel := &models.SelectState{
			EntityID:    raw.EntityID,
			Name:        name,
			Options:     attrStrings(raw.Attributes, "options"),
			Available:   available,
			LastUpdated: ts,
		}
		if available {
			sel.Value = raw.State
		}
		return models.EntityState{EntityID: raw.EntityID, Kind: models.KindSelect, Select: sel}, true
	}
	return models.EntityState{}, false
}

func sensorEntity(raw rawState, kind models.EntityKind, defaultUnit, name string, available bool, ts time.Time) models.EntityState {
	s := &models.SensorState{
		EntityID:    raw.EntityID,
		Name:        name,
		Unit:        defaultUnit,
		Available:   available,
		LastUpdated: ts,
	}
	if u := attrString(raw.Attributes, "unit_of_measurement"); u != "" {
		s.Unit = u
	}
	if available {
		if v, err := strconv.ParseFloat(raw.State, 64); err == nil {
			s.Value = &v
		}
	}
	return models.EntityState{EntityID: raw.EntityID, Kind: kind, Sensor: s}
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func attrFloat(attrs map[string]any, key string) *float64 {
	switch v := attrs[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func attrStrings(attrs map[string]any, key string) []string {
	raw, ok := attrs[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
