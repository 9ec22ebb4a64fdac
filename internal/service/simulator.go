package service

import (
	"context"
	"time"

	"meross_emulator/internal/logger"
)

// persistEvery is the number of ticks between snapshot saves.
const persistEvery = 10

// SimulatorService polls every device the way a host integration would.
type SimulatorService struct {
	devices *DeviceService
	log     *logger.Logger
}

// NewSimulatorService returns a simulator over devices.
func NewSimulatorService(devices *DeviceService, log *logger.Logger) *SimulatorService {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatorService{devices: devices, log: log}
}

// Run ticks at the given interval until ctx is canceled. A non-positive tick
// disables polling; snapshots are still saved on exit.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	defer s.persist(context.WithoutCancel(ctx))

	if tick <= 0 {
		<-ctx.Done()
		return
	}

	t := time.NewTicker(tick)
	defer t.Stop()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Step(ctx)
			ticks++
			if ticks%persistEvery == 0 {
				s.persist(ctx)
			}
		}
	}
}

// Step polls electricity then consumption on every registered device.
func (s *SimulatorService) Step(ctx context.Context) {
	for _, id := range s.devices.IDs() {
		if _, err := s.devices.Electricity(ctx, id); err != nil {
			s.log.Warnw("simulator_electricity_failed", "device", id, "err", err)
		}
		if _, err := s.devices.ConsumptionX(ctx, id); err != nil {
			s.log.Warnw("simulator_consumption_failed", "device", id, "err", err)
		}
	}
}

func (s *SimulatorService) persist(ctx context.Context) {
	if err := s.devices.Persist(ctx); err != nil {
		s.log.Errorw("snapshot_persist_failed", "err", err)
	}
}
