package emulator

import "fmt"

// RolloverPolicy selects how a new day's ledger bucket is seeded.
type RolloverPolicy int

const (
	// RolloverCarryOver reproduces the firmware defect where the daily counter
	// is never reset: the new bucket starts from the previous bucket's total
	// plus the committed delta.
	RolloverCarryOver RolloverPolicy = iota
	// RolloverReset starts the new bucket at zero. The delta that triggered the
	// commit is dropped, matching the reference firmware.
	RolloverReset
)

// PolicyFor maps the bug_compatible setting to a policy.
func PolicyFor(bugCompatible bool) RolloverPolicy {
	if bugCompatible {
		return RolloverCarryOver
	}
	return RolloverReset
}

// seed returns the value of the bucket opened on a new day.
func (p RolloverPolicy) seed(previous, delta int64) int64 {
	switch p {
	case RolloverReset:
		return 0
	default:
		return previous + delta
	}
}

func (p RolloverPolicy) String() string {
	switch p {
	case RolloverCarryOver:
		return "carry_over"
	case RolloverReset:
		return "reset"
	default:
		return fmt.Sprintf("RolloverPolicy(%d)", int(p))
	}
}
