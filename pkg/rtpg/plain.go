package rtpg

import (
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// Config bounds an RTPG run: PatternBudget caps the vectors generated, a
// round that detects fewer than MinF new faults counts as unproductive, and
// the run stops after MaxI consecutive unproductive rounds; a single round
// under MinF does not stop the run by itself. Coverage (every fault
// detected) is always checked regardless of Config.
type Config struct {
	PatternBudget int
	MinF          int
	MaxI          int
}

// Plain runs RTPG-plain: repeatedly fill a deck with random vectors, run
// PPSFP against every still-undetected representative fault, and keep
// every vector that detected at least one fault. Grounded on spec.md
// 4.6's "RTPG-plain" paragraph; the iteration-cap idiom mirrors the
// teacher's runFanAlgorithm safety limit (pkg/algorithm/fan.go).
type Plain struct {
	Net     *tpg.Network
	DB      *fault.DB
	Sim     *fsim.Simulator
	Sampler *Sampler
	Config  Config
}

// NewPlain creates a Plain RTPG runner seeded with seed.
func NewPlain(net *tpg.Network, db *fault.DB, sim *fsim.Simulator, seed int64, cfg Config) *Plain {
	return &Plain{Net: net, DB: db, Sim: sim, Sampler: NewSampler(seed), Config: cfg}
}

func (p *Plain) width() int { return len(p.Net.PIs) + len(p.Net.PPIs) }

// allCovered reports whether every representative fault is already
// detected or otherwise skipped — the spec.md 4.6 "(a) every fault is
// detected" stopping rule.
func (p *Plain) allCovered() bool {
	for _, fid := range p.DB.Representatives() {
		if !p.DB.Skip(fid) {
			return false
		}
	}
	return true
}

// Run executes rounds until coverage, budget exhaustion, or unproductivity,
// returning every vector that detected at least one fault, in the order
// generated.
func (p *Plain) Run() []*testvector.TestVector {
	var out []*testvector.TestVector
	patterns := 0
	unproductive := 0

	for {
		if p.allCovered() {
			break
		}
		if p.Config.PatternBudget > 0 && patterns >= p.Config.PatternBudget {
			break
		}
		if p.Config.MaxI > 0 && unproductive >= p.Config.MaxI {
			break
		}

		deck := testvector.NewDeck()
		for !deck.Full() {
			if p.Config.PatternBudget > 0 && patterns >= p.Config.PatternBudget {
				break
			}
			deck.Add(p.Sampler.RandomVector(p.width()))
			patterns++
		}
		if len(deck.Vectors) == 0 {
			break
		}

		laneDetected := make([]bool, len(deck.Vectors))
		newFaults := 0
		for _, fid := range p.DB.Representatives() {
			if p.DB.Skip(fid) {
				continue
			}
			mask := p.Sim.PPSFP(deck, fid)
			if mask == 0 {
				continue
			}
			p.DB.Faults[fid].Status = fault.Detected
			p.DB.SetSkip(fid)
			newFaults++
			for lane := range deck.Vectors {
				if mask&(1<<uint(lane)) != 0 {
					laneDetected[lane] = true
				}
			}
		}

		for lane, got := range laneDetected {
			if got {
				out = append(out, deck.Vectors[lane])
			}
		}

		if newFaults < p.Config.MinF {
			unproductive++
		} else {
			unproductive = 0
		}
	}

	return out
}
