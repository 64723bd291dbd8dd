package models

import "time"

// Device-level HVAC modes understood by the TRVZB thermostats.
// Distinct from SystemMode, which is the orchestration-level regime.
const (
	HVACModeOff  = "off"
	HVACModeHeat = "heat"
	HVACModeAuto = "auto"
)

// EntityKind tags the variant stored for a hub entity. The kind is decided
// once at ingestion from the entity id prefix (and measurement kind for
// sensors), never re-sniffed by consumers.
type EntityKind string

const (
	KindThermostat EntityKind = "thermostat"
	KindTempSensor EntityKind = "temperature_sensor"
	KindHumSensor  EntityKind = "humidity_sensor"
	KindSelect     EntityKind = "select"
)

// ThermostatState is the cached snapshot of a climate entity.
type ThermostatState struct {
	EntityID    string    `json:"entity_id"`
	Name        string    `json:"name,omitempty"`
	CurrentTemp *float64  `json:"current_temperature,omitempty"`
	TargetTemp  *float64  `json:"target_temperature,omitempty"`
	Mode        string    `json:"mode,omitempty"` // off | heat | auto
	Available   bool      `json:"available"`
	LastUpdated time.Time `json:"last_updated"`
}

// SensorState is the cached snapshot of a temperature or humidity sensor.
type SensorState struct {
	EntityID    string    `json:"entity_id"`
	Name        string    `json:"name,omitempty"`
	Value       *float64  `json:"value,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Available   bool      `json:"available"`
	LastUpdated time.Time `json:"last_updated"`
}

// SelectState is the cached snapshot of an input_select entity.
type SelectState struct {
	EntityID    string    `json:"entity_id"`
	Name        string    `json:"name,omitempty"`
	Value       string    `json:"value,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Available   bool      `json:"available"`
	LastUpdated time.Time `json:"last_updated"`
}

// EntityState is the tagged union stored per entity id. Exactly one of the
// variant pointers is non-nil, matching Kind. Entries are immutable value
// objects: the cache replaces them wholesale, never mutates in place.
type EntityState struct {
	EntityID   string           `json:"entity_id"`
	Kind       EntityKind       `json:"kind"`
	Thermostat *ThermostatState `json:"thermostat,omitempty"`
	Sensor     *SensorState     `json:"sensor,omitempty"`
	Select     *SelectState     `json:"select,omitempty"`
}

// ConnectionStatus of the hub session. Owned solely by the hass client.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)
