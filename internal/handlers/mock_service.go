package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	mer "meross_emulator"
	"meross_emulator/internal/models"
	"meross_emulator/internal/service"

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

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDevices struct {
	devices     []service.DeviceInfo
	defaultID   string
	snapshot    models.Descriptor
	electricity models.ElectricityPayload
	consumption models.ConsumptionXPayload
	reply       mer.Message
	err         error

	mu          sync.Mutex
	lastUUID    string
	lastRequest mer.Message
}

func (m *mockDevices) ListDevices(ctx context.Context) []service.DeviceInfo {
	return m.devices
}
func (m *mockDevices) DefaultDevice() string {
	return m.defaultID
}
func (m *mockDevices) Snapshot(ctx context.Context, uuid string) (models.Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUUID = uuid
	return m.snapshot, m.err
}
func (m *mockDevices) Electricity(ctx context.Context, uuid string) (models.ElectricityPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUUID = uuid
	return m.electricity, m.err
}
func (m *mockDevices) ConsumptionX(ctx context.Context, uuid string) (models.ConsumptionXPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUUID = uuid
	return m.consumption, m.err
}
func (m *mockDevices) Dispatch(ctx context.Context, uuid string, req mer.Message) (mer.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUUID = uuid
	m.lastRequest = req
	return m.reply, m.err
}

func (m *mockDevices) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUUID
}

type mockEventLog struct {
	resp       []models.DeviceEvent
	err        error
	lastDevice string
	lastFrom   time.Time
	lastTo     time.Time
	lastType   string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastDevice = f.DeviceID
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
