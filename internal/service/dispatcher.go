package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"heating_control/internal/logger"
)

// Retry policy for fire-and-forget schedule publishes.
const (
	publishMaxAttempts = 3
	publishBaseBackoff = 1 * time.Second
)

// deviceNameRe guards the publish topic against injection: names outside
// this class are rejected before any transport write.
var deviceNameRe = regexp.MustCompile(`^[a-z0-9\s()]+$`)

// DeviceDispatcher is a thin policy layer over the hub client: it knows the
// concrete commands a thermostat understands and retries schedule publishes
// with bounded backoff.
type DeviceDispatcher struct {
	hub HubClient

	topicNamespace string
	deviceNames    map[string]string // thermostat entity id -> publish device name

	sleep func(time.Duration) // injectable for tests
	log   *logger.Logger
}

func NewDeviceDispatcher(hub HubClient, topicNamespace string, deviceNames map[string]string, log *logger.Logger) *DeviceDispatcher {
	return &DeviceDispatcher{
		hub:            hub,
		topicNamespace: topicNamespace,
		deviceNames:    deviceNames,
		sleep:          time.Sleep,
		log:            log,
	}
}

var _ Dispatcher = (*DeviceDispatcher)(nil)

// SetHVACMode switches a thermostat between off/heat/auto.
func (d *DeviceDispatcher) SetHVACMode(thermostatID, hvacMode string) bool {
	ok := d.hub.CallService("climate", "set_hvac_mode", thermostatID, map[string]any{
		"hvac_mode": hvacMode,
	})
	if !ok {
		d.log.Errorw("set_hvac_mode_failed", "thermostat", thermostatID, "hvac_mode", hvacMode)
	}
	return ok
}

// SelectOption writes an option to a hub input_select entity.
func (d *DeviceDispatcher) SelectOption(entityID, option string) bool {
	ok := d.hub.CallService("input_select", "select_option", entityID, map[string]any{
		"option": option,
	})
	if !ok {
		d.log.Errorw("select_option_failed", "entity_id", entityID, "option", option)
	}
	return ok
}

// PublishWeeklySchedule pushes a week of wire-format day strings to a
// thermostat through the hub's MQTT bridge. Delivery is fire-and-forget, so
// the publish is retried with exponential backoff before giving up.
func (d *DeviceDispatcher) PublishWeeklySchedule(thermostatID string, week map[string]string) bool {
	deviceName, ok := d.deviceNames[thermostatID]
	if !ok || deviceName == "" {
		d.log.Errorw("no_device_mapping", "thermostat", thermostatID)
		return false
	}
	if !deviceNameRe.MatchString(deviceName) {
		d.log.Errorw("invalid_device_name", "thermostat", thermostatID, "device_name", deviceName)
		return false
	}

	payload, err := json.Marshal(map[string]any{"weekly_schedule": week})
	if err != nil {
		d.log.Errorw("schedule_payload_marshal_failed", "thermostat", thermostatID, "err", err)
		return false
	}
	topic := fmt.Sprintf("%s/%s/set", d.topicNamespace, deviceName)

	for attempt := 1; attempt <= publishMaxAttempts; attempt++ {
		if d.hub.CallService("mqtt", "publish", "", map[string]any{
			"topic":   topic,
			"payload": string(payload),
		}) {
			d.log.Infow("schedule_published", "thermostat", thermostatID, "topic", topic, "attempt", attempt)
			return true
		}
		if attempt < publishMaxAttempts {
			wait := publishBaseBackoff << (attempt - 1) // 1s, 2s, 4s
			d.log.Warnw("schedule_publish_retry", "thermostat", thermostatID, "attempt", attempt, "wait", wait.String())
			d.sleep(wait)
		}
	}

	d.log.Errorw("schedule_publish_failed", "thermostat", thermostatID, "attempts", publishMaxAttempts)
	return false
}
