// Package backtrace turns a SAT model into a concrete TestVector, then
// relaxes fully-specified PI/PPI assignments back toward X wherever the
// fault stays detected. Just1/Just2 implement spec.md §4.4's structural
// walk from an observing PPO back toward the PPIs, dispatching on each
// gate's controlling value exactly the way the teacher's
// algorithm.MultipleBacktrace.backtraceGate (pkg/algorithm/objective.go)
// dispatches on gate type — adapted from a live, weighted (line, n0, n1)
// search over circuit state under construction to a one-shot walk over a
// SAT model's already-settled good/faulty values. Both memoize the
// required-PPI list per node within one walk; Just2 additionally picks, at
// a controlling-value gate, the candidate fanin with the smallest list
// instead of always taking the first one found, per spec.md §4.4's Just2
// description.
package backtrace

import (
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/sat"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// Strategy selects how aggressively free (don't-care) input lanes are
// relaxed back to X after a SAT model has produced a fully-specified
// vector.
type Strategy int

const (
	// Simple keeps the SAT model's assignment verbatim; no relaxation.
	Simple Strategy = iota
	// Just1 walks back from every diverged PO/PPO through each gate's
	// controlling-value structure to find the PI/PPIs actually required,
	// relaxing everything else to X; at a controlling-value gate it takes
	// the first controlling fanin by index.
	Just1
	// Just2 behaves like Just1 but memoizes, per node, the smallest
	// required-PPI list found so far within one justification walk, and
	// at controlling-value gates picks the fanin with the shortest such
	// list instead of the first one found.
	Just2
)

// Frames selects whether a BackTracer targets combinational (1) or
// broadside two-frame (2) patterns.
type BackTracer struct {
	Net      *tpg.Network
	Strategy Strategy
	Frames   int
}

// New creates a BackTracer. The simulator that re-verifies detection while
// relaxing lanes toward X is passed to each Justify call.
func New(net *tpg.Network, strategy Strategy, frames int) *BackTracer {
	return &BackTracer{
		Net:      net,
		Strategy: strategy,
		Frames:   frames,
	}
}

// FromModel builds a fully-specified TestVector from a SAT model by
// reading each PI/PPI's good-circuit variable.
func FromModel(net *tpg.Network, model sat.Model, gvar func(tpg.NodeID) sat.Var) *testvector.TestVector {
	width := len(net.PIs) + len(net.PPIs)
	tv := testvector.NewTestVector(width, false)
	i := 0
	for _, id := range net.PIs {
		tv.Frame0[i] = laneValue(model, gvar(id))
		i++
	}
	for _, id := range net.PPIs {
		tv.Frame0[i] = laneValue(model, gvar(id))
		i++
	}
	return tv
}

func laneValue(model sat.Model, v sat.Var) pbit.Pair {
	b, ok := model[v]
	if !ok {
		return pbit.X()
	}
	return pbit.FromBool(b)
}

// Justify relaxes tv's lanes toward X according to the BackTracer's
// strategy. Simple keeps every lane. Just1/Just2 run the structural walk
// from every diverged PO/PPO back to the PPIs it actually depends on
// (essentialLines), then set every PI/PPI lane the walk never reached
// back to X. The relaxed vector is re-verified via sim.SPSFP as a safety
// net; if the structural estimate ever over-relaxes, the fully-specified
// vector is returned instead.
func (b *BackTracer) Justify(sim *fsim.Simulator, db *fault.DB, fid fault.FaultID, tv *testvector.TestVector) *testvector.TestVector {
	if b.Strategy == Simple {
		return tv
	}

	detected := sim.SimulateForJustify(tv, fid)
	essential := b.essentialLines(sim, detected)
	sim.ResetAfterJustify()

	if !detected {
		return tv
	}

	relaxed := cloneVector(tv)
	for i, id := range b.laneNodes() {
		if !essential[id] {
			relaxed.Frame0[i] = pbit.X()
		}
	}

	if !sim.SPSFP(relaxed, fid) {
		return tv
	}
	return relaxed
}

// laneNodes returns the NodeID driving each Frame0 lane, in the same
// PIs-then-PPIs order FromModel uses to build a TestVector.
func (b *BackTracer) laneNodes() []tpg.NodeID {
	lanes := make([]tpg.NodeID, 0, len(b.Net.PIs)+len(b.Net.PPIs))
	lanes = append(lanes, b.Net.PIs...)
	lanes = append(lanes, b.Net.PPIs...)
	return lanes
}

// essentialLines walks backward from every diverged PO/PPO ("sink") to the
// PI/PPI lines it structurally depends on, per spec.md §4.4:
//
//   - if the node's gate has a controlling value and the node's good value
//     equals it, only one fanin already at the controlling value needs
//     justifying (Just1: the first one found; Just2: the one whose own
//     required-PPI list is shortest, reusing a per-node cache so a node
//     reached from a second sink is not re-walked from scratch);
//   - else (no controlling value, or the good value is the non-controlling
//     one) every fanin must be justified, since the output depends on all
//     of them.
//
// A side input left at its controlling-for-propagation value never gets
// pinned separately: once the fault's own site settles to a defined stuck
// value and every side input along the sensitized path keeps its actual
// (already-assigned) value, the faulty word already carries a confirmed
// mismatch: Graph.SimNode.Diverged compares full (V0,V1) pairs, so any
// fully-relaxed (X) side input that would otherwise leave the faulty
// output ambiguous instead still registers as diverged against the
// good circuit's defined value — the event-driven simulator's own
// ternary rules are the soundness check here, backstopped by the
// SPSFP re-verification in Justify.
//
// If the fault was not actually detected (pattern doesn't sensitize it),
// there is nothing to walk and every PI/PPI is kept (Justify returns tv
// unchanged in that case).
func (b *BackTracer) essentialLines(sim *fsim.Simulator, detected bool) map[tpg.NodeID]bool {
	essential := make(map[tpg.NodeID]bool)
	if !detected {
		return essential
	}

	cache := make(map[tpg.NodeID][]tpg.NodeID)

	visit := func(id tpg.NodeID) []tpg.NodeID {
		return b.justifyNode(sim, id, cache)
	}

	for _, id := range b.Net.POs {
		if sim.Graph.Nodes[id].Diverged()&1 != 0 {
			for _, e := range visit(id) {
				essential[e] = true
			}
		}
	}
	for _, id := range b.Net.PPOs {
		if sim.Graph.Nodes[id].Diverged()&1 != 0 {
			for _, e := range visit(id) {
				essential[e] = true
			}
		}
	}
	return essential
}

// justifyNode returns the PI/PPI node IDs required to justify node id's
// current value, memoizing the result in cache so a node reached from more
// than one sink within the same walk is computed once.
func (b *BackTracer) justifyNode(sim *fsim.Simulator, id tpg.NodeID, cache map[tpg.NodeID][]tpg.NodeID) []tpg.NodeID {
	if list, ok := cache[id]; ok {
		return list
	}
	// Mark as in-progress before recursing so a DAG reconvergence within
	// this same computation short-circuits instead of re-walking (the
	// first visit's result is what ends up cached and reused).
	cache[id] = nil

	node := b.Net.Node(id)
	var result []tpg.NodeID
	switch {
	case node.Kind == tpg.KindPI || node.Kind == tpg.KindPPI:
		result = []tpg.NodeID{id}
	case len(node.Fanin) == 0:
		result = nil
	default:
		if cv, ok := controllingValue(node.Gate); ok && controllingOutput(sim, id, cv) {
			result = b.justifyControllingFanin(sim, node, cv, cache)
		} else {
			result = b.justifyAllFanin(sim, node, cache)
		}
	}

	cache[id] = result
	return result
}

func (b *BackTracer) justifyAllFanin(sim *fsim.Simulator, node *tpg.Node, cache map[tpg.NodeID][]tpg.NodeID) []tpg.NodeID {
	var result []tpg.NodeID
	for _, in := range node.Fanin {
		result = append(result, b.justifyNode(sim, in, cache)...)
	}
	return result
}

// justifyControllingFanin picks the one fanin already at the gate's
// controlling value. Just1 takes the first such fanin, by fanin index
// (spec.md §4.4's "pick one deterministically, lowest index"); Just2
// instead evaluates every controlling-value fanin and keeps whichever
// has the shortest required-PPI list.
func (b *BackTracer) justifyControllingFanin(sim *fsim.Simulator, node *tpg.Node, cv bool, cache map[tpg.NodeID][]tpg.NodeID) []tpg.NodeID {
	var best []tpg.NodeID
	found := false
	for _, in := range node.Fanin {
		v := sim.Graph.Nodes[in].GVal
		if !v.AssignedLane(0) || v.LaneBool(0) != cv {
			continue
		}
		if b.Strategy != Just2 {
			return b.justifyNode(sim, in, cache)
		}
		cand := b.justifyNode(sim, in, cache)
		if !found || len(cand) < len(best) {
			best, found = cand, true
		}
	}
	return best
}

// controllingValue reports the controlling value for gate types that have
// one (AND/NAND at 0, OR/NOR at 1). XOR/XNOR/NOT/BUF have none.
func controllingValue(gt netlist.GateType) (value bool, ok bool) {
	switch gt {
	case netlist.AND, netlist.NAND:
		return false, true
	case netlist.OR, netlist.NOR:
		return true, true
	default:
		return false, false
	}
}

// controllingOutput reports whether node id's good output equals the
// gate's controlling value cv. NAND/NOR invert at the output, so the
// *input* side still sees the same controlling value as AND/OR — it is
// the node's own output polarity that differs, which this function
// accounts for by checking against the gate's own type, not a bare value.
func controllingOutput(sim *fsim.Simulator, id tpg.NodeID, cv bool) bool {
	out := sim.Graph.Nodes[id].GVal
	if !out.AssignedLane(0) {
		return false
	}
	outVal := out.LaneBool(0)
	switch sim.Graph.Nodes[id].Gate {
	case netlist.NAND, netlist.NOR:
		outVal = !outVal
	}
	return outVal == cv
}

func cloneVector(tv *testvector.TestVector) *testvector.TestVector {
	cp := &testvector.TestVector{Frame0: make([]pbit.Pair, len(tv.Frame0))}
	copy(cp.Frame0, tv.Frame0)
	if tv.Frame1 != nil {
		cp.Frame1 = make([]pbit.Pair, len(tv.Frame1))
		copy(cp.Frame1, tv.Frame1)
	}
	return cp
}
