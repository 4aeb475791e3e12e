// Package dtpg implements the SAT-based DTPG engines: Single (one CNF per
// fault), FFR (one CNF reused across every fault rooted in a fanout-free
// region), and MFFC (one CNF reused across an entire dominator cone).
// Grounded on the teacher's Fan struct composing Circuit/Topology/
// Implication/Frontier/Backtrace/Decision sub-objects (pkg/algorithm/fan.go),
// generalized from one backtracking search per fault to one CNF instance
// shared across a fault group.
package dtpg

import (
	"context"
	"time"

	"github.com/satpg-go/satpg/pkg/backtrace"
	"github.com/satpg-go/satpg/pkg/cnf"
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/sat"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// Scope selects how much of the network one CNF instance spans and, in
// turn, how many faults can share it.
type Scope int

const (
	ScopeSingle Scope = iota
	ScopeFFR
	ScopeMFFC
)

// Outcome is a fault's DTPG verdict. It is a plain value, never an error:
// spec policy treats solver timeouts and genuine untestability as
// first-class results, not exceptional conditions.
type Outcome int

const (
	Undetermined Outcome = iota
	Detected
	Untestable
)

// Result is one fault's DTPG outcome plus, when Detected, the justified
// pattern.
type Result struct {
	Fault   fault.FaultID
	Outcome Outcome
	Pattern *testvector.TestVector
}

// Engine runs DTPG for a fault database against a shared network, reusing
// one cnf.Encoder/sat.Solver pair per scope root when Scope is FFR or MFFC.
type Engine struct {
	Net     *tpg.Network
	DB      *fault.DB
	Sim     *fsim.Simulator
	BT      *backtrace.BackTracer
	Scope   Scope
	Timeout time.Duration

	scopeSolvers map[tpg.NodeID]*scopeSolver
}

type scopeSolver struct {
	solver sat.Solver
	enc    *cnf.Encoder
	nodes  []tpg.NodeID
	output []tpg.NodeID
}

// New creates an Engine. sim is used both to re-verify DTPG-produced
// vectors and to drive BackTracer relaxation.
func New(net *tpg.Network, db *fault.DB, sim *fsim.Simulator, bt *backtrace.BackTracer, scope Scope, timeout time.Duration) *Engine {
	return &Engine{
		Net:          net,
		DB:           db,
		Sim:          sim,
		BT:           bt,
		Scope:        scope,
		Timeout:      timeout,
		scopeSolvers: make(map[tpg.NodeID]*scopeSolver),
	}
}

// scopeRoot returns the FFR root a fault's site belongs to, for every
// scope; under ScopeMFFC the solver cached for that root covers the
// regions it dominates (see scopeNodes), not the enclosing MFFC's root.
// ScopeSingle does not share it; each fault gets its own transient solver.
func (e *Engine) scopeRoot(f *fault.Fault) tpg.NodeID {
	node := e.Net.Node(f.Site.Node)
	return node.FFRRoot
}

// scopeNodes computes the node set a CNF instance must cover for a given
// root: the FFR's members plus, forward from the root, every node up to
// and including the primary/pseudo-primary outputs the fault could be
// observed at. For ScopeMFFC, the FFR members of every region dominated by
// root are folded in as well.
func (e *Engine) scopeNodes(root tpg.NodeID) (scopeNode []tpg.NodeID, outputs []tpg.NodeID) {
	seen := make(map[tpg.NodeID]bool)
	add := func(id tpg.NodeID) {
		if !seen[id] {
			seen[id] = true
			scopeNode = append(scopeNode, id)
		}
	}

	add(root)
	for _, m := range e.Net.FFRMembers[root] {
		add(m)
	}
	if e.Scope == ScopeMFFC {
		for _, sub := range e.Net.MFFC(root) {
			add(sub)
			for _, m := range e.Net.FFRMembers[sub] {
				add(m)
			}
		}
	}

	// Forward cone from root to outputs, and include every node along
	// the way so EncodeFaulty has clauses for the whole path.
	for _, id := range e.Net.TransitiveFanout(root) {
		add(id)
		node := e.Net.Node(id)
		if node.Kind == tpg.KindPO || node.Kind == tpg.KindPPO {
			outputs = append(outputs, id)
		}
	}

	// The backward transitive fanin of every scope node is also needed
	// so the good-circuit side of the CNF has a value for every leaf.
	for _, id := range append([]tpg.NodeID{}, scopeNode...) {
		for _, f := range e.Net.TransitiveFanin(id) {
			add(f)
		}
	}

	return scopeNode, outputs
}

func (e *Engine) getScopeSolver(f *fault.Fault) *scopeSolver {
	root := e.scopeRoot(f)
	if e.Scope == ScopeSingle {
		root = f.Site.Node
	}

	if s, ok := e.scopeSolvers[root]; ok {
		s.solver.Reset()
		return s
	}

	solver := sat.NewDPLL()
	enc := cnf.NewEncoder(e.Net, solver)
	nodes, outputs := e.scopeNodes(root)
	enc.EncodeGood(nodes)

	s := &scopeSolver{solver: solver, enc: enc, nodes: nodes, output: outputs}
	if e.Scope != ScopeSingle {
		e.scopeSolvers[root] = s
	}
	return s
}

// RunFault generates (or determines untestable) a pattern for one fault.
//
// When Scope is FFR or MFFC, a fault's faulty-circuit clauses are added
// behind a dedicated guard literal (sat.Guard) so they bind only while
// solving this fault; once solved, the guard is permanently retired with a
// unit clause before the next fault reuses the same good-circuit CNF. This
// is what lets a single scopeSolver's solver accumulate clauses across many
// faults without an earlier untestable fault's contradiction leaking into
// later solves.
func (e *Engine) RunFault(fid fault.FaultID) Result {
	f := &e.DB.Faults[fid]
	if e.DB.Skip(fid) {
		return Result{Fault: fid, Outcome: Undetermined}
	}

	s := e.getScopeSolver(f)

	realSolver := s.solver
	var faultSolver sat.Solver = realSolver
	var guardVar sat.Var
	hasGuard := e.Scope != ScopeSingle
	if hasGuard {
		guardVar = realSolver.NewVar()
		faultSolver = sat.Guard(realSolver, sat.PosLit(guardVar))
	}

	s.enc.ResetFaulty()
	s.enc.Sol = faultSolver
	s.enc.EncodeFaulty(s.nodes, f.Site, f.StuckValue)

	for _, cl := range s.enc.ActivationClauses(f.Site, f.StuckValue) {
		faultSolver.AddClause(cl)
	}
	obs := s.enc.ObservationClause(s.output)
	faultSolver.AddClause(obs)
	s.enc.Sol = realSolver

	if hasGuard {
		realSolver.Assume([]sat.Lit{sat.PosLit(guardVar)})
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if e.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	outcome, model := realSolver.Solve(ctx)

	if hasGuard {
		realSolver.AddClause([]sat.Lit{sat.NegLit(guardVar)})
	}

	switch outcome {
	case sat.Unsat:
		return Result{Fault: fid, Outcome: Untestable}
	case sat.Unknown:
		return Result{Fault: fid, Outcome: Undetermined}
	}

	tv := backtrace.FromModel(e.Net, model, s.enc.GVar)
	if e.BT != nil {
		tv = e.BT.Justify(e.Sim, e.DB, fid, tv)
	}
	if e.Sim != nil && !e.Sim.SPSFP(tv, fid) {
		// The justified/relaxed vector must still detect; if relaxation
		// broke detection (a BackTracer bug or an unsound cache hit),
		// fall back to the unrelaxed model rather than report a false
		// detection.
		tv = backtrace.FromModel(e.Net, model, s.enc.GVar)
	}

	return Result{Fault: fid, Outcome: Detected, Pattern: tv}
}

// RunAll generates patterns for every representative fault, in order.
// Parallelizing this loop across independent FFR/MFFC roots is the
// errgroup-based extension point the domain stack names; RunAll itself
// stays sequential so a single Engine's scope-solver cache is never shared
// unsafely across goroutines (see RunAllParallel in parallel.go, which
// cmd/satpg calls, for the parallel-worker wiring).
func (e *Engine) RunAll(faultIDs []fault.FaultID) []Result {
	results := make([]Result, 0, len(faultIDs))
	for _, fid := range faultIDs {
		results = append(results, e.RunFault(fid))
	}
	return results
}
