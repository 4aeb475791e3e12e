package rtpg

import (
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// WSAConfig adds the switching-activity constraint to Config: vectors
// whose WSA exceeds Limit are rejected (plain WSA) or accepted only
// probabilistically (P2 Metropolis).
type WSAConfig struct {
	Config
	Limit float64
	// P2 enables the Metropolis-style acceptance walk; when false, a
	// vector is simply rejected outright whenever its WSA exceeds Limit,
	// with no probabilistic acceptance.
	P2 bool
}

// WSA runs RTPG-WSA: each random candidate's switching activity (measured
// as the toggle count between the previous accepted vector's frame and
// the candidate's, fsim.Simulator.WSA) is evaluated against Limit before
// the candidate is allowed into the deck. Grounded on spec.md 4.6's
// "RTPG-WSA" paragraph, including the "P2" Metropolis acceptance rule.
type WSA struct {
	Net     *tpg.Network
	DB      *fault.DB
	Sim     *fsim.Simulator
	Sampler *Sampler
	Config  WSAConfig
}

// NewWSA creates a WSA RTPG runner seeded with seed.
func NewWSA(net *tpg.Network, db *fault.DB, sim *fsim.Simulator, seed int64, cfg WSAConfig) *WSA {
	return &WSA{Net: net, DB: db, Sim: sim, Sampler: NewSampler(seed), Config: cfg}
}

func (w *WSA) width() int { return len(w.Net.PIs) + len(w.Net.PPIs) }

func (w *WSA) allCovered() bool {
	for _, fid := range w.DB.Representatives() {
		if !w.DB.Skip(fid) {
			return false
		}
	}
	return true
}

// evaluate implements spec.md 4.6's evaluate(wsa, thv): 1 below the limit,
// linearly decaying toward 0 beyond it.
func evaluate(wsa int, limit float64) float64 {
	thv := limit
	if float64(wsa) < thv {
		return 1
	}
	return 1 - (float64(wsa)-thv)/thv
}

// accept decides a Metropolis move from the current score v0 to a
// candidate's score v1: always accept an improving or equal move, accept a
// worsening move with probability v1/v0 otherwise.
func (w *WSA) accept(v0, v1 float64) bool {
	if v1 >= v0 {
		return true
	}
	if v0 <= 0 {
		return false
	}
	return w.Sampler.rng.Float64() < v1/v0
}

// Run executes the WSA random-pattern walk, returning every accepted
// vector that also detected at least one fault, in generation order. The
// walk maintains one "current" vector; each round proposes a neighbor (P2)
// or a fresh random draw (plain WSA), scores it by evaluate(wsa, Limit),
// and keeps or discards it (plain WSA: discarded when its WSA exceeds
// Limit; P2: the Metropolis rule in accept) before running PPSFP
// fault-dropping against the accepted vector.
func (w *WSA) Run() []*testvector.TestVector {
	var out []*testvector.TestVector
	width := w.width()
	current := w.Sampler.RandomVector(width)
	zero := allZeroFrame(width)
	v0 := evaluate(w.Sim.WSA(zero, current.Frame0), w.Config.Limit)

	patterns := 0
	unproductive := 0

	// Rejected candidates spend no pattern budget, so a run stuck rejecting
	// forever would otherwise never hit PatternBudget or MaxI; tries caps
	// the total number of proposals regardless of acceptance, the same
	// safety-limit idiom as the teacher's runFanAlgorithm maxIterations.
	const maxTries = 100000
	tries := 0

	for {
		if w.allCovered() {
			break
		}
		if w.Config.PatternBudget > 0 && patterns >= w.Config.PatternBudget {
			break
		}
		if w.Config.MaxI > 0 && unproductive >= w.Config.MaxI {
			break
		}
		if tries >= maxTries {
			break
		}
		tries++

		var candidate *testvector.TestVector
		if w.Config.P2 {
			candidate = w.Sampler.Neighbor(current)
		} else {
			candidate = w.Sampler.RandomVector(width)
		}
		v1 := evaluate(w.Sim.WSA(current.Frame0, candidate.Frame0), w.Config.Limit)

		// A rejected candidate is simply dropped: the current vector and v0
		// carry forward unchanged, and no pattern budget is spent on it.
		// Plain WSA has no Metropolis walk; evaluate is below 1 exactly
		// when the candidate's WSA exceeds Limit.
		if w.Config.P2 {
			if !w.accept(v0, v1) {
				continue
			}
		} else if v1 < 1 {
			continue
		}

		patterns++
		current, v0 = candidate, v1

		deck := testvector.NewDeck()
		deck.Add(candidate)

		newFaults := 0
		detected := false
		for _, fid := range w.DB.Representatives() {
			if w.DB.Skip(fid) {
				continue
			}
			mask := w.Sim.PPSFP(deck, fid)
			if mask&1 == 0 {
				continue
			}
			w.DB.Faults[fid].Status = fault.Detected
			w.DB.SetSkip(fid)
			newFaults++
			detected = true
		}
		if detected {
			out = append(out, candidate)
		}

		if newFaults < w.Config.MinF {
			unproductive++
		} else {
			unproductive = 0
		}
	}

	return out
}

func allZeroFrame(width int) []pbit.Pair {
	frame := make([]pbit.Pair, width)
	for i := range frame {
		frame[i] = pbit.Zero()
	}
	return frame
}
