package emulator

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meross_emulator/internal/models"
)

func TestSamplePower_NoiseStep(t *testing.T) {
	reading := &models.Electricity{
		Channel: 0,
		Current: 34,
		Voltage: 2274,
		Power:   1015,
		Config:  json.RawMessage(`{"voltageRatio":188,"electricityRatio":100}`),
	}
	s := NewPowerSampler(reading, script(noise(-400, 7)...))
	s.voltageAverage = 2280

	got := s.SamplePower()

	assert.Equal(t, 615, got.Power)
	assert.Equal(t, 2287, got.Voltage)
	assert.Equal(t, 10*615/2287, got.Current)
	assert.InDelta(t, 1015, got.Power, NoiseDelta)
	assert.GreaterOrEqual(t, got.Voltage, 2260)
	assert.LessOrEqual(t, got.Voltage, 2300)
	assert.JSONEq(t, `{"voltageRatio":188,"electricityRatio":100}`, string(got.Config))

	// the bound reading and the cached power follow the sample
	assert.Equal(t, got, *reading)
	assert.Equal(t, 615, s.Power())
}

func TestSamplePower_BurstClamps(t *testing.T) {
	cases := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"upper bound", 3_500_000, BurstDelta, MaxPower},
		{"lower bound", 200_000, -BurstDelta, 0},
		{"inside", 1_000_000, 250_000, 1_250_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reading := &models.Electricity{Power: tc.start, Voltage: 2300}
			s := NewPowerSampler(reading, script(burst(tc.delta, 0)...))

			got := s.SamplePower()
			assert.Equal(t, tc.want, got.Power)
			assert.Equal(t, tc.want, s.Power())
			assert.Equal(t, 2300, got.Voltage)
			assert.Equal(t, 10*tc.want/2300, got.Current)
		})
	}
}

func TestNewPowerSampler_Baseline(t *testing.T) {
	s := NewPowerSampler(&models.Electricity{Voltage: 0}, script())
	assert.Equal(t, DefaultVoltageAverage, s.VoltageAverage())

	s = NewPowerSampler(&models.Electricity{Voltage: VoltageJitter}, script())
	assert.Equal(t, DefaultVoltageAverage, s.VoltageAverage())

	s = NewPowerSampler(&models.Electricity{Voltage: 2301, Power: 5_000_000}, script())
	assert.Equal(t, 2301, s.VoltageAverage())
	assert.Equal(t, MaxPower, s.Power())
}

func TestSamplePower_Invariants(t *testing.T) {
	reading := &models.Electricity{Power: 1015, Voltage: 2274}
	s := NewPowerSampler(reading, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 20_000; i++ {
		got := s.SamplePower()
		require.GreaterOrEqual(t, got.Power, 0)
		require.LessOrEqual(t, got.Power, MaxPower)
		require.GreaterOrEqual(t, got.Voltage, 2274-VoltageJitter)
		require.LessOrEqual(t, got.Voltage, 2274+VoltageJitter)
		require.Equal(t, 10*got.Power/got.Voltage, got.Current)
		require.Equal(t, got.Power, s.Power())
	}
}

func TestCurrentFor_GuardsVoltage(t *testing.T) {
	assert.Equal(t, 0, currentFor(1000, 0))
	assert.Equal(t, 0, currentFor(1000, -5))
	assert.Equal(t, 43, currentFor(10_000, 2274))
}
