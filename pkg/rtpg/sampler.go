// Package rtpg implements random test pattern generation: Plain
// (fault-dropping PPSFP loop) and WSA (switching-activity-constrained,
// with a Metropolis-style "P2" acceptance variant). Grounded on the
// teacher's runFanAlgorithm iteration-cap idiom (pkg/algorithm/fan.go) for
// the four stopping rules, and on the seeded-Sampler pattern in
// jhkimqd-chaos-utils/pkg/fuzz/sampler.go for random-vector and
// bit-flip-neighbor generation.
package rtpg

import (
	"math/rand"

	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/testvector"
)

// Sampler wraps a seeded RNG, mirroring jhkimqd-chaos-utils's Sampler
// struct: one small stateful object producing every random artifact an
// RTPG run needs, so a run is fully reproducible from its seed.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a Sampler seeded with seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// RandomVector fills a fresh width-wide TestVector with independent random
// 0/1 lanes (never X — RTPG always drives a fully-specified pattern).
func (s *Sampler) RandomVector(width int) *testvector.TestVector {
	tv := testvector.NewTestVector(width, false)
	for i := range tv.Frame0 {
		tv.Frame0[i] = pbit.FromBool(s.rng.Intn(2) == 1)
	}
	return tv
}

// geometricFlipCount samples the "~count bits flipped" distribution spec.md
// 4.6 describes for the WSA neighbor move: nbits independent Bernoulli(0.8)
// attempts, count = number of successes.
func (s *Sampler) geometricFlipCount(nbits int) int {
	count := 0
	for i := 0; i < nbits; i++ {
		if s.rng.Float64() < 0.8 {
			count++
		}
	}
	return count
}

// Neighbor returns a copy of tv with geometricFlipCount(len(tv.Frame0))
// distinct lanes flipped, the move WSA-P2's Metropolis search explores
// from the current vector.
func (s *Sampler) Neighbor(tv *testvector.TestVector) *testvector.TestVector {
	width := len(tv.Frame0)
	out := testvector.NewTestVector(width, false)
	copy(out.Frame0, tv.Frame0)

	count := s.geometricFlipCount(width)
	if count > width {
		count = width
	}
	flipped := make(map[int]bool, count)
	for len(flipped) < count {
		idx := s.rng.Intn(width)
		if flipped[idx] {
			continue
		}
		flipped[idx] = true
		out.Frame0[idx] = flipNotX(tv.Frame0[idx])
	}
	return out
}

func flipNotX(p pbit.Pair) pbit.Pair {
	if p.V1 != 0 {
		return pbit.Zero()
	}
	return pbit.One()
}
