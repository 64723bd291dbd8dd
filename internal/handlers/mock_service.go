package handlers

import (
	"context"
	"net/http"
	"time"

	"heating_control/internal/models"
	"heating_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockModes struct {
	setModeErr      error
	cancelErr       error
	restoreErr      error
	current         models.SystemMode
	info            service.ModeInfo
	lastSetMode     service.ModeRequest
	setModeCalls    int
	cancelCalls     int
	restoreHubCalls int
}

func (m *mockModes) SetMode(ctx context.Context, req service.ModeRequest) error {
	m.setModeCalls++
	m.lastSetMode = req
	return m.setModeErr
}
func (m *mockModes) CancelTimer(ctx context.Context) error {
	m.cancelCalls++
	return m.cancelErr
}
func (m *mockModes) Current() models.SystemMode { return m.current }
func (m *mockModes) Info() service.ModeInfo     { return m.info }
func (m *mockModes) RestoreFromHub(ctx context.Context) error {
	m.restoreHubCalls++
	return m.restoreErr
}

type mockZones struct {
	zones     []models.Zone
	zone      *models.Zone
	status    *service.ZoneStatus
	err       error
	lastID    string
	lastZone  models.Zone
	lastSched string
}

func (m *mockZones) List(ctx context.Context) ([]models.Zone, error)        { return m.zones, m.err }
func (m *mockZones) ListEnabled(ctx context.Context) ([]models.Zone, error) { return m.zones, m.err }
func (m *mockZones) Get(ctx context.Context, id string) (*models.Zone, error) {
	m.lastID = id
	return m.zone, m.err
}
func (m *mockZones) Create(ctx context.Context, z models.Zone) error {
	m.lastZone = z
	return m.err
}
func (m *mockZones) Update(ctx context.Context, z models.Zone) error {
	m.lastZone = z
	return m.err
}
func (m *mockZones) Delete(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}
func (m *mockZones) AssignSchedule(ctx context.Context, zoneID, scheduleID string) error {
	m.lastID = zoneID
	m.lastSched = scheduleID
	return m.err
}
func (m *mockZones) Status(ctx context.Context, id string) (*service.ZoneStatus, error) {
	m.lastID = id
	return m.status, m.err
}

type mockSchedules struct {
	schedules []models.Schedule
	schedule  *models.Schedule
	dayTypes  []models.DayType
	week      map[string]string
	err       error
	lastID    string
}

func (m *mockSchedules) List(ctx context.Context) ([]models.Schedule, error) {
	return m.schedules, m.err
}
func (m *mockSchedules) Get(ctx context.Context, id string) (*models.Schedule, error) {
	m.lastID = id
	return m.schedule, m.err
}
func (m *mockSchedules) Create(ctx context.Context, s models.Schedule) error { return m.err }
func (m *mockSchedules) Update(ctx context.Context, s models.Schedule) error { return m.err }
func (m *mockSchedules) Delete(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}
func (m *mockSchedules) DayTypes(ctx context.Context) ([]models.DayType, error) {
	return m.dayTypes, m.err
}
func (m *mockSchedules) WeekSchedule(ctx context.Context, scheduleID string) (map[string]string, error) {
	m.lastID = scheduleID
	return m.week, m.err
}
func (m *mockSchedules) StayHomeWeek(ctx context.Context, scheduleID, swapDay string) (map[string]string, error) {
	m.lastID = scheduleID
	return m.week, m.err
}

type mockStatus struct {
	snapshot service.SystemStatus
	hub      models.ConnectionStatus
	err      error
}

func (m *mockStatus) Snapshot(ctx context.Context) (service.SystemStatus, error) {
	return m.snapshot, m.err
}
func (m *mockStatus) HubStatus() models.ConnectionStatus { return m.hub }

type mockEventLog struct {
	resp     []models.ModeEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ModeEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
