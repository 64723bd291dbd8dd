package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"heating_control/internal/logger"
	"heating_control/internal/models"
)

// Timing configuration for the hub session.
const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second

	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
)

var (
	ErrUnexpectedMessage = errors.New("unexpected message from hub")
	ErrAuthRejected      = errors.New("hub rejected credentials")
)

// Subscriber receives every state change of a monitored entity. Returned
// errors are logged and never abort the listen loop.
type Subscriber func(entityID string, state models.EntityState) error

// Config holds the connection parameters for the hub.
type Config struct {
	URL         string
	AccessToken string
	// Monitored lists the entity ids retained in the cache; everything else
	// observed on the event stream is dropped to bound memory.
	Monitored []string
}

// Client maintains one logical websocket session against the hub: auth
// handshake, warm bulk-loaded cache, event subscription and unbounded
// reconnection with exponential backoff.
type Client struct {
	url       string
	token     string
	monitored map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
	conn    *websocket.Conn

	statusMu sync.Mutex
	status   models.ConnectionStatus

	msgID int64

	cache *stateCache

	subsMu sync.Mutex
	subs   []Subscriber

	reconnecting atomic.Bool

	log *logger.Logger
}

// New builds a client; Connect must be called before use.
func New(cfg Config, log *logger.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	monitored := make(map[string]struct{}, len(cfg.Monitored))
	for _, id := range cfg.Monitored {
		monitored[id] = struct{}{}
	}
	return &Client{
		url:       cfg.URL,
		token:     cfg.AccessToken,
		monitored: monitored,
		ctx:       ctx,
		cancel:    cancel,
		status:    models.StatusDisconnected,
		cache:     newStateCache(),
		log:       log,
	}
}

// Status returns the current connection status.
func (c *Client) Status() models.ConnectionStatus {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}

func (c *Client) setStatus(s models.ConnectionStatus) {
	c.statusMu.Lock()
	c.status = s
	c.statusMu.Unlock()
}

// Snapshot returns a point-in-time copy of the entity cache.
func (c *Client) Snapshot() map[string]models.EntityState {
	return c.cache.snapshot()
}

// Entity returns the cached state for one entity id.
func (c *Client) Entity(entityID string) (models.EntityState, bool) {
	return c.cache.get(entityID)
}

// SelectValue returns the current value of a cached input_select entity.
func (c *Client) SelectValue(entityID string) (string, bool) {
	e, ok := c.cache.get(entityID)
	if !ok || e.Kind != models.KindSelect || !e.Select.Available {
		return "", false
	}
	return e.Select.Value, true
}

// Subscribe registers a callback invoked on every monitored state change.
func (c *Client) Subscribe(fn Subscriber) {
	c.subsMu.Lock()
	c.subs = append(c.subs, fn)
	c.subsMu.Unlock()
}

// Connect opens the transport, authenticates, bulk-loads the cache and
// subscribes to change events. The cache is fully warmed when Connect
// returns nil. It does not retry synchronously; failures leave the client
// in the error status.
func (c *Client) Connect(ctx context.Context) error {
	c.setStatus(models.StatusConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.setStatus(models.StatusError)
		return fmt.Errorf("dial hub: %w", err)
	}

	if err := c.authenticate(conn); err != nil {
		c.setStatus(models.StatusError)
		_ = conn.Close()
		return err
	}

	if err := c.fetchInitialStates(conn); err != nil {
		c.setStatus(models.StatusError)
		_ = conn.Close()
		return fmt.Errorf("bulk state fetch: %w", err)
	}

	if err := c.subscribeStateChanges(conn); err != nil {
		c.setStatus(models.StatusError)
		_ = conn.Close()
		return fmt.Errorf("subscribe events: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{}) // handshake done, stream is open-ended

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	c.setStatus(models.StatusConnected)
	c.log.Infow("hub_connected", "url", c.url, "cached_entities", len(c.cache.snapshot()))

	go c.listen(conn)
	return nil
}

// Close tears the session down permanently.
func (c *Client) Close() {
	c.cancel()
	c.writeMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.writeMu.Unlock()
	c.setStatus(models.StatusDisconnected)
}

// authenticate performs the challenge/response handshake.
func (c *Client) authenticate(conn *websocket.Conn) error {
	var challenge serverMessage
	if err := readMessage(conn, &challenge); err != nil {
		return fmt.Errorf("read auth challenge: %w", err)
	}
	if challenge.Type != msgAuthRequired {
		return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedMessage, msgAuthRequired, challenge.Type)
	}

	if err := writeMessage(conn, authRequest{Type: msgAuth, AccessToken: c.token}); err != nil {
		return fmt.Errorf("send credentials: %w", err)
	}

	var verdict serverMessage
	if err := readMessage(conn, &verdict); err != nil {
		return fmt.Errorf("read auth verdict: %w", err)
	}
	switch verdict.Type {
	case msgAuthOK:
		return nil
	case msgAuthInvalid:
		return fmt.Errorf("%w: %s", ErrAuthRejected, verdict.Message)
	default:
		return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedMessage, msgAuthOK, verdict.Type)
	}
}

// fetchInitialStates issues get_states and populates the cache from the
// response before returning, so callers observe a warm cache.
func (c *Client) fetchInitialStates(conn *websocket.Conn) error {
	id := c.nextID()
	if err := writeMessage(conn, commandRequest{ID: id, Type: msgGetStates}); err != nil {
		return err
	}

	// The subscription is not active yet, so the next result frame with our
	// id is the bulk snapshot; skip anything else.
	for {
		var msg serverMessage
		if err := readMessage(conn, &msg); err != nil {
			return err
		}
		if msg.Type != msgResult || msg.ID != id {
			continue
		}
		if !msg.Success {
			return errors.New("hub refused get_states")
		}
		var states []rawState
		if err := json.Unmarshal(msg.Result, &states); err != nil {
			return fmt.Errorf("decode states: %w", err)
		}
		loaded := 0
		for _, raw := range states {
			if _, ok := c.monitored[raw.EntityID]; !ok {
				continue
			}
			if _, ok := c.cache.update(raw); ok {
				loaded++
			}
		}
		c.log.Infow("initial_states_loaded", "loaded", loaded, "monitored", len(c.monitored))
		return nil
	}
}

func (c *Client) subscribeStateChanges(conn *websocket.Conn) error {
	return writeMessage(conn, subscribeRequest{
		ID:        c.nextID(),
		Type:      msgSubscribeEvents,
		EventType: eventStateChanged,
	})
}

// listen consumes inbound frames until the transport closes, then marks the
// session disconnected and launches the reconnect loop.
func (c *Client) listen(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return // deliberate shutdown
			default:
			}
			c.log.Warnw("hub_connection_lost", "err", err)
			c.setStatus(models.StatusDisconnected)
			go c.reconnectLoop()
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.log.Errorw("hub_message_decode_failed", "err", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg serverMessage) {
	if msg.Type != msgEvent || msg.Event == nil || msg.Event.EventType != eventStateChanged {
		return
	}
	data := msg.Event.Data
	if data.NewState == nil {
		return // entity removed; superseded entries are simply dropped
	}
	if _, ok := c.monitored[data.EntityID]; !ok {
		return
	}

	entity, ok := c.cache.update(*data.NewState)
	if !ok {
		return
	}
	c.notify(data.EntityID, entity)
}

func (c *Client) notify(entityID string, entity models.EntityState) {
	c.subsMu.Lock()
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.subsMu.Unlock()

	for _, fn := range subs {
		if err := fn(entityID, entity); err != nil {
			c.log.Errorw("state_subscriber_failed", "entity_id", entityID, "err", err)
		}
	}
}

// reconnectLoop retries Connect with exponential backoff until it succeeds
// or the client is closed. There is no attempt cap: the controller must
// keep trying for as long as the process lives.
func (c *Client) reconnectLoop() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return // a loop is already running
	}
	defer c.reconnecting.Store(false)

	backoff := initialBackoff
	for {
		c.log.Infow("hub_reconnect_scheduled", "backoff", backoff.String())
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(backoff):
		}

		if err := c.Connect(c.ctx); err == nil {
			c.log.Infow("hub_reconnected")
			return
		} else {
			c.log.Warnw("hub_reconnect_failed", "err", err)
		}
		backoff = nextBackoff(backoff)
	}
}

// nextBackoff doubles the delay up to the cap.
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// CallService sends a fire-and-forget command. True means the frame was
// written to the transport, not that the hub executed it; the effect, if
// any, arrives later as a state_changed event. Write failures are logged
// and reported as false, never raised.
func (c *Client) CallService(domain, service, entityID string, data map[string]any) bool {
	serviceData := make(map[string]any, len(data)+1)
	if entityID != "" {
		serviceData["entity_id"] = entityID
	}
	for k, v := range data {
		serviceData[k] = v
	}

	req := callServiceRequest{
		ID:          c.nextID(),
		Type:        msgCallService,
		Domain:      domain,
		Service:     service,
		ServiceData: serviceData,
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		c.log.Errorw("call_service_no_connection", "domain", domain, "service", service)
		return false
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(req); err != nil {
		c.log.Errorw("call_service_write_failed", "domain", domain, "service", service, "err", err)
		return false
	}
	c.log.Debugw("call_service_sent", "domain", domain, "service", service, "entity_id", entityID)
	return true
}

func (c *Client) nextID() int64 {
	return atomic.AddInt64(&c.msgID, 1)
}

func readMessage(conn *websocket.Conn, out *serverMessage) error {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func writeMessage(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
