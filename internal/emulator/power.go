package emulator

import (
	"math/rand/v2"

	"meross_emulator/internal/models"
)

// Electrical limits and perturbation windows.
const (
	MaxPower              = 3_600_000 // mW
	BurstDelta            = 1_000_000 // mW
	NoiseDelta            = 1000      // mW
	VoltageJitter         = 20        // 0.1 V
	DefaultVoltageAverage = 2280      // 0.1 V

	burstOdds = 6 // one burst every burstOdds samples on average
)

// Rand is the source of uniform integers. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// randInt draws a uniform integer in [lo, hi].
func randInt(r Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// PowerSampler fabricates successive electricity readings by random walk.
type PowerSampler struct {
	reading        *models.Electricity
	voltageAverage int
	power          int
	rnd            Rand
}

// NewPowerSampler binds a sampler to reading. The reading's voltage becomes the
// baseline; a baseline that could reach zero volts under jitter falls back to
// DefaultVoltageAverage.
func NewPowerSampler(reading *models.Electricity, rnd Rand) *PowerSampler {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	avg := reading.Voltage
	if avg <= VoltageJitter {
		avg = DefaultVoltageAverage
	}
	return &PowerSampler{
		reading:        reading,
		voltageAverage: avg,
		power:          clampPower(reading.Power),
		rnd:            rnd,
	}
}

// Power returns the power of the latest sample in mW.
func (s *PowerSampler) Power() int {
	return s.power
}

// VoltageAverage returns the voltage baseline in 0.1 V.
func (s *PowerSampler) VoltageAverage() int {
	return s.voltageAverage
}

// SamplePower advances the random walk and writes the new triple into the
// bound reading.
func (s *PowerSampler) SamplePower() models.Electricity {
	r := s.reading
	power := r.Power
	if s.rnd.IntN(burstOdds) == 0 {
		power += randInt(s.rnd, -BurstDelta, BurstDelta)
	} else {
		power += randInt(s.rnd, -NoiseDelta, NoiseDelta)
	}
	s.power = clampPower(power)
	r.Power = s.power

	r.Voltage = s.voltageAverage + randInt(s.rnd, -VoltageJitter, VoltageJitter)
	r.Current = currentFor(r.Power, r.Voltage)
	return *r
}

func clampPower(p int) int {
	return max(0, min(p, MaxPower))
}

// currentFor returns floor(10*power/voltage) in mA.
func currentFor(power, voltage int) int {
	if voltage <= 0 {
		return 0
	}
	return 10 * power / voltage
}
