package hass

import (
	"testing"

	"heating_control/internal/models"
)

func TestClassify_Thermostat(t *testing.T) {
	raw := rawState{
		EntityID: "climate.living_trv",
		State:    "heat",
		Attributes: map[string]any{
			"friendly_name":       "Living TRV",
			"current_temperature": 19.5,
			"temperature":         21.0,
		},
		LastUpdated: "2025-11-05T10:00:00Z",
	}

	e, ok := classify(raw)
	if !ok {
		t.Fatal("climate entity not classified")
	}
	if e.Kind != models.KindThermostat || e.Thermostat == nil {
		t.Fatalf("entity: %+v", e)
	}
	th := e.Thermostat
	if th.Mode != "heat" || !th.Available || th.Name != "Living TRV" {
		t.Fatalf("thermostat: %+v", th)
	}
	if th.CurrentTemp == nil || *th.CurrentTemp != 19.5 {
		t.Fatalf("current temp: %v", th.CurrentTemp)
	}
	if th.TargetTemp == nil || *th.TargetTemp != 21.0 {
		t.Fatalf("target temp: %v", th.TargetTemp)
	}
}

func TestClassify_SensorsByMeasurementKind(t *testing.T) {
	cases := []struct {
		entityID string
		state    string
		kind     models.EntityKind
		value    float64
	}{
		{"sensor.living_temperature", "20.4", models.KindTempSensor, 20.4},
		{"sensor.bedroom_Temp", "18", models.KindTempSensor, 18},
		{"sensor.living_humidity", "55", models.KindHumSensor, 55},
	}

	for _, tc := range cases {
		e, ok := classify(rawState{EntityID: tc.entityID, State: tc.state})
		if !ok {
			t.Fatalf("%s not classified", tc.entityID)
		}
		if e.Kind != tc.kind {
			t.Fatalf("%s kind=%s, want %s", tc.entityID, e.Kind, tc.kind)
		}
		if e.Sensor == nil || e.Sensor.Value == nil || *e.Sensor.Value != tc.value {
			t.Fatalf("%s sensor: %+v", tc.entityID, e.Sensor)
		}
	}
}

func TestClassify_Select(t *testing.T) {
	raw := rawState{
		EntityID: "input_select.heating_mode",
		State:    "eco",
		Attributes: map[string]any{
			"options": []any{"default", "eco", "off"},
		},
	}

	e, ok := classify(raw)
	if !ok {
		t.Fatal("input_select not classified")
	}
	if e.Kind != models.KindSelect || e.Select == nil {
		t.Fatalf("entity: %+v", e)
	}
	if e.Select.Value != "eco" || len(e.Select.Options) != 3 {
		t.Fatalf("select: %+v", e.Select)
	}
}

func TestClassify_UnavailableEntity(t *testing.T) {
	e, ok := classify(rawState{EntityID: "sensor.office_temperature", State: "unavailable"})
	if !ok {
		t.Fatal("unavailable sensor not classified")
	}
	if e.Sensor.Available {
		t.Fatal("unavailable sensor marked available")
	}
	if e.Sensor.Value != nil {
		t.Fatalf("unavailable sensor carries value: %v", *e.Sensor.Value)
	}
}

func TestClassify_UnknownCategoryDropped(t *testing.T) {
	for _, id := range []string{"light.kitchen", "sensor.power_meter", "switch.boiler"} {
		if _, ok := classify(rawState{EntityID: id, State: "on"}); ok {
			t.Fatalf("%s should not classify", id)
		}
	}
}

func TestStateCache_ReplaceAndSnapshot(t *testing.T) {
	c := newStateCache()

	if _, ok := c.update(rawState{EntityID: "climate.a", State: "off"}); !ok {
		t.Fatal("update rejected")
	}
	if _, ok := c.update(rawState{EntityID: "climate.a", State: "heat"}); !ok {
		t.Fatal("replacement rejected")
	}

	e, ok := c.get("climate.a")
	if !ok || e.Thermostat.Mode != "heat" {
		t.Fatalf("entry not replaced: %+v", e)
	}

	snap := c.snapshot()
	snap["climate.a"] = models.EntityState{} // must not affect the cache
	if e, _ := c.get("climate.a"); e.Thermostat == nil {
		t.Fatal("snapshot is not a copy")
	}
}
