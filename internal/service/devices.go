package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	mer "meross_emulator"
	"meross_emulator/internal/emulator"
	"meross_emulator/internal/logger"
	"meross_emulator/internal/models"
	"meross_emulator/internal/repository"
)

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDuplicateDevice = errors.New("device already registered")
	ErrSignMismatch    = errors.New("sign mismatch")
)

// deviceSlot owns one emulated device. mu serializes every poll on it.
type deviceSlot struct {
	mu  sync.Mutex
	dev *emulator.Device
	key string
}

// DeviceService hosts the emulated devices.
type DeviceService struct {
	descriptors repository.DescriptorRepo
	events      repository.EventRepo
	log         *logger.Logger
	now         func() time.Time

	mu    sync.RWMutex
	slots map[string]*deviceSlot
	order []string
}

var _ Devices = (*DeviceService)(nil)

func NewDeviceService(descriptors repository.DescriptorRepo, events repository.EventRepo, log *logger.Logger) *DeviceService {
	if log == nil {
		log = logger.Nop()
	}
	return &DeviceService{
		descriptors: descriptors,
		events:      events,
		log:         log,
		now:         time.Now,
		slots:       make(map[string]*deviceSlot),
	}
}

// SetClock replaces the wall clock used as device epoch.
func (s *DeviceService) SetClock(now func() time.Time) {
	s.now = now
}

// Register starts emulating seed. A previously persisted snapshot of the same
// uuid replaces the seed's namespace payloads; settings (key, timezone,
// bug_compatible) always come from the seed.
func (s *DeviceService) Register(ctx context.Context, seed models.Descriptor, opts ...emulator.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[seed.UUID]; ok {
		return fmt.Errorf("%s: %w", seed.UUID, ErrDuplicateDevice)
	}

	desc, err := seed.Clone()
	if err != nil {
		return fmt.Errorf("copy descriptor %s: %w", seed.UUID, err)
	}
	if s.descriptors != nil {
		saved, err := s.descriptors.Load(ctx, seed.UUID)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", seed.UUID, err)
		}
		if saved != nil {
			desc.Namespaces = saved.Namespaces
			s.log.Infow("device_snapshot_restored", "device", seed.UUID)
		}
	}

	dev, err := emulator.NewDevice(&desc, s.now().Unix(), opts...)
	if err != nil {
		return err
	}
	s.slots[desc.UUID] = &deviceSlot{dev: dev, key: desc.Key}
	s.order = append(s.order, desc.UUID)
	s.log.Infow("device_registered", "device", desc.UUID, "type", desc.Type,
		"timezone", desc.Timezone, "rollover", policyName(dev))
	return nil
}

// policyName reports the rollover policy of dev, "" when it has no ledger.
func policyName(dev *emulator.Device) string {
	if a := dev.Accumulator(); a != nil {
		return a.Policy().String()
	}
	return ""
}

func (s *DeviceService) slot(uuid string) (*deviceSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[uuid]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uuid, ErrDeviceNotFound)
	}
	return slot, nil
}

// IDs returns the registered uuids in registration order.
func (s *DeviceService) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// DefaultDevice is the first registered uuid, "" when none.
func (s *DeviceService) DefaultDevice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

func (s *DeviceService) ListDevices(ctx context.Context) []DeviceInfo {
	out := make([]DeviceInfo, 0)
	for _, id := range s.IDs() {
		slot, err := s.slot(id)
		if err != nil {
			continue
		}
		slot.mu.Lock()
		d := slot.dev.Descriptor()
		info := DeviceInfo{
			UUID:          d.UUID,
			Type:          d.Type,
			Timezone:      d.Timezone,
			BugCompatible: d.BugCompatible,
			Namespaces:    []string{mer.NSSystemAll},
		}
		if d.Namespaces.Electricity != nil {
			info.Namespaces = append(info.Namespaces, mer.NSControlElectricity)
		}
		if d.Namespaces.ConsumptionX != nil {
			info.Namespaces = append(info.Namespaces, mer.NSControlConsumptionX)
		}
		slot.mu.Unlock()
		out = append(out, info)
	}
	return out
}

// Snapshot returns a detached copy of the live descriptor.
func (s *DeviceService) Snapshot(ctx context.Context, uuid string) (models.Descriptor, error) {
	slot, err := s.slot(uuid)
	if err != nil {
		return models.Descriptor{}, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.dev.Descriptor().Clone()
}

// Electricity samples a new reading on uuid.
func (s *DeviceService) Electricity(ctx context.Context, uuid string) (models.ElectricityPayload, error) {
	slot, err := s.slot(uuid)
	if err != nil {
		return models.ElectricityPayload{}, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	p, err := slot.dev.Electricity()
	if err != nil {
		return models.ElectricityPayload{}, err
	}
	return *p, nil
}

// ConsumptionX integrates energy on uuid up to now and returns the ledger.
func (s *DeviceService) ConsumptionX(ctx context.Context, uuid string) (models.ConsumptionXPayload, error) {
	slot, err := s.slot(uuid)
	if err != nil {
		return models.ConsumptionXPayload{}, err
	}
	slot.mu.Lock()
	p, c, err := slot.dev.ConsumptionX(s.now().Unix())
	var out models.ConsumptionXPayload
	if err == nil {
		out.ConsumptionX = slices.Clone(p.ConsumptionX)
	}
	slot.mu.Unlock()
	if err != nil {
		return models.ConsumptionXPayload{}, err
	}
	s.recordCommit(ctx, uuid, c, out.ConsumptionX)
	return out, nil
}

// Dispatch handles a protocol request addressed to uuid and returns the reply.
// Protocol-level failures are answered with an ERROR message and a nil error.
func (s *DeviceService) Dispatch(ctx context.Context, uuid string, req mer.Message) (mer.Message, error) {
	slot, err := s.slot(uuid)
	if err != nil {
		return mer.Message{}, err
	}
	now := s.now()
	from := mer.ResponseTopic(uuid)
	ns := req.Header.Namespace

	if slot.key != "" && !req.Header.Verify(slot.key) {
		s.recordError(ctx, uuid, ErrSignMismatch, ns)
		return errorReply(req, slot.key, from, now, mer.ErrorCodeSign, ErrSignMismatch)
	}

	slot.mu.Lock()
	res, herr := slot.dev.Handle(now.Unix(), ns, req.Header.Method)
	var (
		reply  mer.Message
		ledger []models.EnergyRecord
	)
	if herr == nil {
		// the payload is live device state: marshal before releasing the lock
		reply, err = mer.BuildMessage(ns, res.Method, res.Payload, slot.key, from, req.Header.MessageID, now)
		if p, ok := res.Payload.(*models.ConsumptionXPayload); ok {
			ledger = slices.Clone(p.ConsumptionX)
		}
	}
	slot.mu.Unlock()

	if herr != nil {
		s.recordError(ctx, uuid, herr, ns)
		code := mer.ErrorCodeNotSupported
		if errors.Is(herr, emulator.ErrMethodNotAllowed) {
			code = mer.ErrorCodeMethodNotAllowed
		}
		return errorReply(req, slot.key, from, now, code, herr)
	}
	if err != nil {
		return mer.Message{}, err
	}
	s.recordCommit(ctx, uuid, res.Commit, ledger)
	return reply, nil
}

func errorReply(req mer.Message, key, from string, now time.Time, code int, cause error) (mer.Message, error) {
	payload := mer.ErrorPayload{Error: mer.ErrorDetail{Code: code, Detail: cause.Error()}}
	return mer.BuildMessage(req.Header.Namespace, mer.MethodError, payload, key, from, req.Header.MessageID, now)
}

// Persist saves a snapshot of every device.
func (s *DeviceService) Persist(ctx context.Context) error {
	if s.descriptors == nil {
		return nil
	}
	var errs []error
	for _, id := range s.IDs() {
		snap, err := s.Snapshot(ctx, id)
		if err == nil {
			err = s.descriptors.Save(ctx, snap)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("persist %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *DeviceService) recordCommit(ctx context.Context, uuid string, c emulator.Commit, ledger []models.EnergyRecord) {
	if c.Delta == 0 {
		return
	}
	last := ledger[len(ledger)-1]
	s.log.Debugw("consumption_commit", "device", uuid, "delta_wh", c.Delta, "date", last.Date, "value", last.Value)
	if c.Evicted != nil {
		s.appendEvent(ctx, models.DeviceEvent{
			DeviceID:    uuid,
			Type:        models.EventEvict,
			Description: "Ledger full; evicted " + c.Evicted.Date,
			Metadata:    map[string]any{"date": c.Evicted.Date, "time": c.Evicted.Time, "value": c.Evicted.Value},
		})
	}
	if c.Rollover {
		s.appendEvent(ctx, models.DeviceEvent{
			DeviceID:    uuid,
			Type:        models.EventRollover,
			Description: "Day bucket opened for " + last.Date,
			Metadata:    map[string]any{"date": last.Date, "value": last.Value, "delta": c.Delta, "entries": len(ledger)},
		})
	}
}

func (s *DeviceService) recordError(ctx context.Context, uuid string, cause error, namespace string) {
	s.log.Infow("device_request_rejected", "device", uuid, "namespace", namespace, "err", cause)
	s.appendEvent(ctx, models.DeviceEvent{
		DeviceID:    uuid,
		Type:        models.EventError,
		Description: cause.Error(),
		Metadata:    map[string]any{"namespace": namespace},
	})
}

func (s *DeviceService) appendEvent(ctx context.Context, e models.DeviceEvent) {
	if s.events == nil {
		return
	}
	e.OccurredAt = s.now().UTC()
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("device_event_append_failed", "device", e.DeviceID, "type", e.Type, "err", err)
	}
}
