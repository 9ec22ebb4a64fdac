package emulator

import "fmt"

// scriptedRand replays fixed draws, failing loudly when a draw is out of range.
type scriptedRand struct {
	draws []int
	next  int
}

func script(draws ...int) *scriptedRand { return &scriptedRand{draws: draws} }

func (s *scriptedRand) IntN(n int) int {
	if s.next >= len(s.draws) {
		panic("scriptedRand exhausted")
	}
	v := s.draws[s.next]
	s.next++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("draw %d out of range [0,%d)", v, n))
	}
	return v
}

// noise scripts a noise step of delta mW and a voltage jitter of dv.
func noise(delta, dv int) []int {
	return []int{1, delta + NoiseDelta, dv + VoltageJitter}
}

// burst scripts a burst step of delta mW and a voltage jitter of dv.
func burst(delta, dv int) []int {
	return []int{0, delta + BurstDelta, dv + VoltageJitter}
}
