package hass

import "encoding/json"

// Message types of the hub websocket protocol.
const (
	msgAuthRequired    = "auth_required"
	msgAuth            = "auth"
	msgAuthOK          = "auth_ok"
	msgAuthInvalid     = "auth_invalid"
	msgGetStates       = "get_states"
	msgSubscribeEvents = "subscribe_events"
	msgCallService     = "call_service"
	msgResult          = "result"
	msgEvent           = "event"

	eventStateChanged = "state_changed"
)

// serverMessage is the envelope of every inbound frame.
type serverMessage struct {
	ID      int64           `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Event   *eventPayload   `json:"event,omitempty"`
	Message string          `json:"message,omitempty"` // error detail on auth_invalid
}

type eventPayload struct {
	EventType string    `json:"event_type"`
	Data      eventData `json:"data"`
}

type eventData struct {
	EntityID string    `json:"entity_id"`
	NewState *rawState `json:"new_state"`
}

// rawState is an entity state as the hub reports it, before variant dispatch.
type rawState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastUpdated string         `json:"last_updated"`
}

type authRequest struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

type commandRequest struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type subscribeRequest struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	EventType string `json:"event_type"`
}

type callServiceRequest struct {
	ID          int64          `json:"id"`
	Type        string         `json:"type"`
	Domain      string         `json:"domain"`
	Service     string         `json:"service"`
	ServiceData map[string]any `json:"service_data"`
}
