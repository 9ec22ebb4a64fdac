package emulator

import (
	"math"
	"slices"
	"time"

	"meross_emulator/internal/models"
)

const (
	// LedgerCapacity is the number of day buckets a device keeps.
	LedgerCapacity = 30

	// mW*s summed over both trapezoid ends -> Wh
	trapezoidDivisor = 7_200_000

	sentinelDate = "1970-01-01"
)

// Commit describes what a consumption sample did to the ledger.
type Commit struct {
	Delta    int64 // Wh committed, 0 when nothing crossed a whole Wh
	Rollover bool  // a new day bucket was opened
	Evicted  *models.EnergyRecord
}

// EnergyAccumulator integrates power over time into the day-bucketed ledger.
type EnergyAccumulator struct {
	ledger *[]models.EnergyRecord
	loc    *time.Location
	policy RolloverPolicy

	energy    float64 // Wh not yet committed
	lastPower int
	lastEpoch int64
}

// NewEnergyAccumulator binds an accumulator to ledger, normalizing it first:
// an empty ledger gets the sentinel record, otherwise it is sorted by time and
// trimmed to LedgerCapacity keeping the most recent buckets.
func NewEnergyAccumulator(ledger *[]models.EnergyRecord, epoch int64, power int, loc *time.Location, policy RolloverPolicy) *EnergyAccumulator {
	normalizeLedger(ledger)
	return &EnergyAccumulator{
		ledger:    ledger,
		loc:       loc,
		policy:    policy,
		lastPower: power,
		lastEpoch: epoch,
	}
}

func normalizeLedger(ledger *[]models.EnergyRecord) {
	if len(*ledger) == 0 {
		*ledger = append(*ledger, models.EnergyRecord{Date: sentinelDate, Time: 0, Value: 1})
		return
	}
	slices.SortStableFunc(*ledger, func(a, b models.EnergyRecord) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	if n := len(*ledger); n > LedgerCapacity {
		*ledger = slices.Clone((*ledger)[n-LedgerCapacity:])
	}
}

// Fraction returns the integrated energy not yet committed, in Wh.
func (a *EnergyAccumulator) Fraction() float64 {
	return a.energy
}

// Policy returns the configured rollover policy.
func (a *EnergyAccumulator) Policy() RolloverPolicy {
	return a.policy
}

// Ledger returns the live ledger.
func (a *EnergyAccumulator) Ledger() []models.EnergyRecord {
	return *a.ledger
}

// SampleConsumption integrates the interval since the previous call and
// returns the ledger.
func (a *EnergyAccumulator) SampleConsumption(now int64, power int) []models.EnergyRecord {
	a.Sample(now, power)
	return *a.ledger
}

// Sample is SampleConsumption reporting what changed.
func (a *EnergyAccumulator) Sample(now int64, power int) Commit {
	// a clock stepping backwards contributes nothing
	if elapsed := now - a.lastEpoch; elapsed > 0 {
		a.energy += float64(power+a.lastPower) * float64(elapsed) / trapezoidDivisor
	}
	a.lastEpoch = now
	a.lastPower = power

	if a.energy < 1.0 {
		return Commit{}
	}
	whole := math.Floor(a.energy)
	a.energy -= whole
	return a.commit(now, int64(whole))
}

func (a *EnergyAccumulator) commit(now int64, delta int64) Commit {
	date := LocalDate(now, a.loc)
	ledger := *a.ledger
	last := &ledger[len(ledger)-1]
	// keep time non-decreasing even if the clock went back since the last commit
	stamp := max(now, last.Time)

	if last.Date == date {
		last.Time = stamp
		last.Value += delta
		return Commit{Delta: delta}
	}

	c := Commit{Delta: delta, Rollover: true}
	record := models.EnergyRecord{
		Date:  date,
		Time:  stamp,
		Value: a.policy.seed(last.Value, delta),
	}
	if len(ledger) >= LedgerCapacity {
		evicted := ledger[0]
		c.Evicted = &evicted
		ledger = slices.Delete(ledger, 0, 1)
	}
	*a.ledger = append(ledger, record)
	return c
}
