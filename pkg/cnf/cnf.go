// Package cnf implements Tseitin CNF encoding of a TpgNetwork scope (FFR or
// MFFC) plus fault activation/observation clauses, for pkg/dtpg's SAT-based
// engines. Grounded on the specification's textual CNF-construction
// description in §4.3; the teacher has no CNF equivalent since FAN
// back-tracks directly over circuit values rather than solving a boolean
// formula.
package cnf

import (
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/sat"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// Encoder builds and holds the good-circuit and faulty-circuit variable
// maps for one scope (a set of nodes reachable from an FFR or MFFC root)
// against one Solver instance.
type Encoder struct {
	Net *tpg.Network
	Sol sat.Solver

	gvar map[tpg.NodeID]sat.Var
	fvar map[tpg.NodeID]sat.Var
}

// NewEncoder creates an encoder writing clauses into sol.
func NewEncoder(net *tpg.Network, sol sat.Solver) *Encoder {
	return &Encoder{
		Net:  net,
		Sol:  sol,
		gvar: make(map[tpg.NodeID]sat.Var),
		fvar: make(map[tpg.NodeID]sat.Var),
	}
}

// GVar returns (allocating if needed) the good-circuit variable for a node.
func (e *Encoder) GVar(id tpg.NodeID) sat.Var {
	if v, ok := e.gvar[id]; ok {
		return v
	}
	v := e.Sol.NewVar()
	e.gvar[id] = v
	return v
}

// ResetFaulty discards the faulty-circuit variable map so the next
// EncodeFaulty call allocates a fresh set of FVars. The good-circuit
// encoding (and its clauses already in the solver) is untouched, so an FFR/
// MFFC-scoped Engine can share the expensive good-circuit CNF across every
// fault rooted there while giving each fault its own, uncontaminated
// faulty-circuit encoding: reusing a previous fault's FVars across a
// different fault site would leave behind that prior fault's gate clauses
// constraining the new fault's site variable.
func (e *Encoder) ResetFaulty() {
	e.fvar = make(map[tpg.NodeID]sat.Var)
}

// FVar returns (allocating if needed) the faulty-circuit variable for a
// node. EncodeFaulty asks for one for every node of the scope; a PI/PPI's
// FVar is tied to its GVar there unless the input is itself the fault
// site.
func (e *Encoder) FVar(id tpg.NodeID) sat.Var {
	if v, ok := e.fvar[id]; ok {
		return v
	}
	v := e.Sol.NewVar()
	e.fvar[id] = v
	return v
}

// EncodeGood emits Tseitin clauses defining the good-circuit function for
// every gate node in nodes (PI/PPI nodes need no clauses, only a variable).
func (e *Encoder) EncodeGood(nodes []tpg.NodeID) {
	for _, id := range nodes {
		n := e.Net.Node(id)
		if len(n.Fanin) == 0 {
			e.GVar(id)
			continue
		}
		e.encodeGate(id, n, e.GVar)
	}
}

// EncodeFaulty emits Tseitin clauses defining the faulty-circuit function
// for nodes, using the faulty variable map. PI/PPI nodes feed both circuits
// the same value, so their FVar is tied to their GVar. At the fault site,
// an output fault leaves FVar unconstrained here (ActivationClauses pins
// it); an input-pin fault has its stuck pin pinned directly by stuckValue.
func (e *Encoder) EncodeFaulty(nodes []tpg.NodeID, site fault.Site, stuckValue bool) {
	for _, id := range nodes {
		n := e.Net.Node(id)
		if id == site.Node && !site.IsInput {
			e.FVar(id)
			continue
		}
		if len(n.Fanin) == 0 {
			encodeBuf(e.Sol, e.FVar(id), e.GVar(id), false)
			continue
		}
		if id == site.Node && site.IsInput {
			e.encodeGateWithStuckInput(id, n, site.InPin, stuckValue)
			continue
		}
		e.encodeGate(id, n, e.FVar)
	}
}

// ActivationClauses injects the fault: an output fault's faulty value at
// the site is pinned to the stuck value, so the observation clause can only
// hold where the good value there differs from it; an input fault's stuck
// pin is already forced inside EncodeFaulty via encodeGateWithStuckInput,
// so only the output-site case needs an explicit clause here.
func (e *Encoder) ActivationClauses(site fault.Site, stuckValue bool) [][]sat.Lit {
	if site.IsInput {
		return nil
	}
	f := e.FVar(site.Node)
	want := sat.NegLit(f)
	if stuckValue {
		want = sat.PosLit(f)
	}
	return [][]sat.Lit{{want}}
}

// ObservationClause requires at least one of the given output nodes to
// differ between good and faulty circuits (a disjunction of per-output
// equality-negation auxiliary variables).
func (e *Encoder) ObservationClause(outputs []tpg.NodeID) []sat.Lit {
	var diffVars []sat.Var
	for _, id := range outputs {
		g := e.GVar(id)
		f := e.FVar(id)
		d := e.Sol.NewVar()
		// d <-> (g XOR f), encoded as the standard 4-clause XOR gadget.
		e.Sol.AddClause([]sat.Lit{sat.NegLit(d), sat.PosLit(sat.Var(g)), sat.PosLit(sat.Var(f))})
		e.Sol.AddClause([]sat.Lit{sat.NegLit(d), sat.NegLit(sat.Var(g)), sat.NegLit(sat.Var(f))})
		e.Sol.AddClause([]sat.Lit{sat.PosLit(d), sat.NegLit(sat.Var(g)), sat.PosLit(sat.Var(f))})
		e.Sol.AddClause([]sat.Lit{sat.PosLit(d), sat.PosLit(sat.Var(g)), sat.NegLit(sat.Var(f))})
		diffVars = append(diffVars, d)
	}
	lits := make([]sat.Lit, len(diffVars))
	for i, v := range diffVars {
		lits[i] = sat.PosLit(v)
	}
	return lits
}

func (e *Encoder) encodeGate(id tpg.NodeID, n *tpg.Node, varOf func(tpg.NodeID) sat.Var) {
	out := varOf(id)
	ins := make([]sat.Var, len(n.Fanin))
	for i, f := range n.Fanin {
		ins[i] = varOf(f)
	}
	emitGateClauses(e.Sol, n.Gate, out, ins)
}

// encodeGateWithStuckInput encodes a gate whose InPin-th fanin is forced to
// stuckValue in the faulty circuit only, realizing an input-pin stuck-at
// fault: the stuck pin gets its own free variable pinned by a unit clause
// instead of being wired to its driver's FVar.
func (e *Encoder) encodeGateWithStuckInput(id tpg.NodeID, n *tpg.Node, pin int, stuckValue bool) {
	out := e.FVar(id)
	ins := make([]sat.Var, len(n.Fanin))
	for i, f := range n.Fanin {
		if i == pin {
			stuckVar := e.Sol.NewVar()
			lit := sat.PosLit(stuckVar)
			if !stuckValue {
				lit = sat.NegLit(stuckVar)
			}
			e.Sol.AddClause([]sat.Lit{lit})
			ins[i] = stuckVar
			continue
		}
		ins[i] = e.FVar(f)
	}
	emitGateClauses(e.Sol, n.Gate, out, ins)
}

// emitGateClauses writes the standard Tseitin clause set for a gate type:
// the conjunction of implications defining out in terms of ins.
func emitGateClauses(s sat.Solver, gt netlist.GateType, out sat.Var, ins []sat.Var) {
	switch gt {
	case netlist.AND, netlist.NAND:
		encodeAnd(s, out, ins, gt == netlist.NAND)
	case netlist.OR, netlist.NOR:
		encodeOr(s, out, ins, gt == netlist.NOR)
	case netlist.NOT:
		if len(ins) == 1 {
			encodeBuf(s, out, ins[0], true)
		}
	case netlist.BUF:
		if len(ins) == 1 {
			encodeBuf(s, out, ins[0], false)
		}
	case netlist.XOR, netlist.XNOR:
		encodeXorChain(s, out, ins, gt == netlist.XNOR)
	}
}

func encodeBuf(s sat.Solver, out, in sat.Var, invert bool) {
	a, b := sat.PosLit(in), sat.PosLit(out)
	if invert {
		b = sat.NegLit(out)
	}
	s.AddClause([]sat.Lit{a.Negate(), b})
	s.AddClause([]sat.Lit{a, b.Negate()})
}

// encodeAnd emits out <-> AND(ins), or its negation for NAND, via the
// standard n-ary AND Tseitin gadget: (out -> each in) and (all ins -> out).
func encodeAnd(s sat.Solver, out sat.Var, ins []sat.Var, invert bool) {
	outPos, outNeg := sat.PosLit(out), sat.NegLit(out)
	if invert {
		outPos, outNeg = outNeg, outPos
	}
	for _, in := range ins {
		s.AddClause([]sat.Lit{outNeg, sat.PosLit(in)})
	}
	clause := make([]sat.Lit, 0, len(ins)+1)
	for _, in := range ins {
		clause = append(clause, sat.NegLit(in))
	}
	clause = append(clause, outPos)
	s.AddClause(clause)
}

// encodeOr emits out <-> OR(ins), or its negation for NOR: each input
// implies out, and out implies the disjunction of all inputs.
func encodeOr(s sat.Solver, out sat.Var, ins []sat.Var, invert bool) {
	outPos, outNeg := sat.PosLit(out), sat.NegLit(out)
	if invert {
		outPos, outNeg = outNeg, outPos
	}
	for _, in := range ins {
		s.AddClause([]sat.Lit{sat.NegLit(in), outPos})
	}
	clause := make([]sat.Lit, 0, len(ins)+1)
	clause = append(clause, outNeg)
	for _, in := range ins {
		clause = append(clause, sat.PosLit(in))
	}
	s.AddClause(clause)
}

// encodeXorChain decomposes an N-ary XOR left-associatively into 2-input
// XOR gadgets and chains them through fresh auxiliary variables; pkg/tpg
// keeps a named N-ary XOR gate as one node, so the chain is built here.
func encodeXorChain(s sat.Solver, out sat.Var, ins []sat.Var, invert bool) {
	if len(ins) == 0 {
		return
	}
	acc := ins[0]
	for i := 1; i < len(ins); i++ {
		var target sat.Var
		if i == len(ins)-1 {
			target = out
		} else {
			target = s.NewVar()
		}
		encodeXor2(s, target, acc, ins[i], i == len(ins)-1 && invert)
		acc = target
	}
	if len(ins) == 1 {
		encodeBuf(s, out, ins[0], invert)
	}
}

func encodeXor2(s sat.Solver, out, a, b sat.Var, invertOut bool) {
	outPos, outNeg := sat.PosLit(out), sat.NegLit(out)
	if invertOut {
		outPos, outNeg = outNeg, outPos
	}
	al, bl := sat.PosLit(a), sat.PosLit(b)
	s.AddClause([]sat.Lit{outNeg, al.Negate(), bl})
	s.AddClause([]sat.Lit{outNeg, al, bl.Negate()})
	s.AddClause([]sat.Lit{outPos, al, bl})
	s.AddClause([]sat.Lit{outPos, al.Negate(), bl.Negate()})
}
