package service

import (
	"context"
	"time"

	mer "meross_emulator"
	"meross_emulator/internal/logger"
	"meross_emulator/internal/models"
	"meross_emulator/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Devices exposes the emulated devices: polling, protocol dispatch and snapshots.
type Devices interface {
	ListDevices(ctx context.Context) []DeviceInfo
	DefaultDevice() string
	Snapshot(ctx context.Context, uuid string) (models.Descriptor, error)
	Electricity(ctx context.Context, uuid string) (models.ElectricityPayload, error)
	ConsumptionX(ctx context.Context, uuid string) (models.ConsumptionXPayload, error)
	Dispatch(ctx context.Context, uuid string, req mer.Message) (mer.Message, error)
}

// EventLog exposes append-only device logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Simulator polls every device in the background the way a host integration
// would, and persists snapshots. Stop via context cancellation.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Devices
	EventLog
	Simulator
	Authorization
}

// NewService wires the repository layer into concrete services. The returned
// DeviceService is also the registration entry point used at startup.
func NewService(repos *repository.Repository, auth AuthConfig, log *logger.Logger) (*Service, *DeviceService) {
	devices := NewDeviceService(repos.Descriptors, repos.EventRepo, log)
	return &Service{
		Devices:       devices,
		EventLog:      NewEventLogService(repos.EventRepo),
		Simulator:     NewSimulatorService(devices, log),
		Authorization: NewAuthService(repos.Auth, auth),
	}, devices
}
