package emulator

import (
	"errors"
	"fmt"
	"time"

	mer "meross_emulator"
	"meross_emulator/internal/models"
)

var (
	ErrNamespaceNotSupported = errors.New("namespace not supported")
	ErrMethodNotAllowed      = errors.New("method not allowed")
)

// Device emulates one appliance on top of its descriptor.
// Device is not safe for concurrent use; callers serialize polls.
type Device struct {
	desc        *models.Descriptor
	loc         *time.Location
	sampler     *PowerSampler
	accumulator *EnergyAccumulator
}

type options struct {
	rnd    Rand
	policy *RolloverPolicy
}

// Option customizes NewDevice.
type Option func(*options)

// WithRand sets the random source of the power sampler.
func WithRand(r Rand) Option {
	return func(o *options) { o.rnd = r }
}

// WithRolloverPolicy overrides the policy derived from the descriptor.
func WithRolloverPolicy(p RolloverPolicy) Option {
	return func(o *options) { o.policy = &p }
}

// NewDevice builds the emulators for every namespace desc carries.
// epoch is the device clock at instantiation.
func NewDevice(desc *models.Descriptor, epoch int64, opts ...Option) (*Device, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	loc, err := LoadZone(desc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("device %s: timezone %q: %w", desc.UUID, desc.Timezone, err)
	}
	policy := PolicyFor(desc.BugCompatible)
	if o.policy != nil {
		policy = *o.policy
	}

	d := &Device{desc: desc, loc: loc}
	power := 0
	if ns := desc.Namespaces.Electricity; ns != nil {
		d.sampler = NewPowerSampler(&ns.Electricity, o.rnd)
		power = d.sampler.Power()
	}
	if ns := desc.Namespaces.ConsumptionX; ns != nil {
		d.accumulator = NewEnergyAccumulator(&ns.ConsumptionX, epoch, power, loc, policy)
	}
	return d, nil
}

// ID returns the device uuid.
func (d *Device) ID() string { return d.desc.UUID }

// Descriptor returns the live descriptor.
func (d *Device) Descriptor() *models.Descriptor { return d.desc }

// Location returns the device timezone, nil meaning UTC.
func (d *Device) Location() *time.Location { return d.loc }

// Accumulator returns the consumption emulator, nil if not exposed.
func (d *Device) Accumulator() *EnergyAccumulator { return d.accumulator }

// Sampler returns the electricity emulator, nil if not exposed.
func (d *Device) Sampler() *PowerSampler { return d.sampler }

// Electricity samples a new reading.
func (d *Device) Electricity() (*models.ElectricityPayload, error) {
	if d.sampler == nil {
		return nil, fmt.Errorf("%s: %w", mer.NSControlElectricity, ErrNamespaceNotSupported)
	}
	d.sampler.SamplePower()
	return d.desc.Namespaces.Electricity, nil
}

// ConsumptionX integrates up to now using the latest sampled power.
func (d *Device) ConsumptionX(now int64) (*models.ConsumptionXPayload, Commit, error) {
	if d.accumulator == nil {
		return nil, Commit{}, fmt.Errorf("%s: %w", mer.NSControlConsumptionX, ErrNamespaceNotSupported)
	}
	power := 0
	if d.sampler != nil {
		power = d.sampler.Power()
	}
	c := d.accumulator.Sample(now, power)
	return d.desc.Namespaces.ConsumptionX, c, nil
}
