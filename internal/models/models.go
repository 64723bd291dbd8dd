package models

import "time"

// SystemMode is the single global heating regime. Exactly one value is
// current at any instant for the whole controller.
type SystemMode string

const (
	ModeDefault     SystemMode = "default"     // zones follow their assigned schedules
	ModeStayHome    SystemMode = "stay_home"   // current day swapped to weekend pattern
	ModeEco         SystemMode = "eco"         // eco schedule everywhere
	ModeTimer       SystemMode = "timer"       // off until an absolute restore time
	ModeVentilation SystemMode = "ventilation" // off for N minutes, then back to previous
	ModeManual      SystemMode = "manual"      // unsupervised heat
	ModeOff         SystemMode = "off"
)

// ParseSystemMode validates a mode string. Legacy persisted values from
// earlier deployments are mapped to their current names.
func ParseSystemMode(s string) (SystemMode, bool) {
	switch SystemMode(s) {
	case ModeDefault, ModeStayHome, ModeEco, ModeTimer, ModeVentilation, ModeManual, ModeOff:
		return SystemMode(s), true
	}
	if s == "holiday" { // pre-rename alias of eco
		return ModeEco, true
	}
	return "", false
}

// Zone groups thermostats and sensors controlled as a unit.
type Zone struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Thermostats     []string `json:"thermostats"`
	TempSensors     []string `json:"temperature_sensors,omitempty"`
	HumiditySensors []string `json:"humidity_sensors,omitempty"`
	ScheduleID      string   `json:"schedule_id,omitempty"` // currently assigned schedule
	Enabled         bool     `json:"enabled"`
}

// WeekPlan maps weekday names ("monday".."sunday") to day type ids.
type WeekPlan map[string]string

// Weekdays in calendar order, index 0 = Monday to match time.Weekday math.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Schedule is a named week composition of day type references.
type Schedule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Week        WeekPlan  `json:"week"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// DayType is a reusable day template in TRVZB wire format:
// six "HH:MM/temp" tokens, the first always "00:00/...".
type DayType struct {
	ID          string `json:"id"`
	Schedule    string `json:"schedule"`
	Description string `json:"description,omitempty"`
}

// ModeEvent is one entry of the mode-change audit log.
type ModeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGE | RESTORE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Audit event types.
const (
	EventModeChange = "MODE_CHANGE"
	EventRestore    = "RESTORE"
	EventError      = "ERROR"
)

// User is an API account.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
