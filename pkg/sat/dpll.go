package sat

import "context"

// DPLL is a small incremental solver: unit propagation plus chronological
// backtracking, with no pure-literal elimination and no clause learning.
// Reset clears every variable's assignment and the assumptions but keeps
// the clause set, so solves can share the bulk of their clauses, the same
// incremental-reuse
// shape pkg/dtpg wants when it builds one CNF per FFR/MFFC and solves it
// against many fault assumptions.
type DPLL struct {
	numVars int
	clauses [][]Lit
	assumed []Lit

	assign []int8 // -1 unset, 0 false, 1 true, indexed by Var
	trail  []Lit
}

// NewDPLL creates an empty solver.
func NewDPLL() *DPLL {
	return &DPLL{}
}

// NewVar allocates a fresh variable.
func (d *DPLL) NewVar() Var {
	v := Var(d.numVars)
	d.numVars++
	d.assign = append(d.assign, -1)
	return v
}

// AddClause adds a clause. Clauses persist across Reset calls; only
// variable assignments and assumptions are cleared.
func (d *DPLL) AddClause(lits []Lit) {
	cp := make([]Lit, len(lits))
	copy(cp, lits)
	d.clauses = append(d.clauses, cp)
}

// Assume records assumption literals to hold true for the next Solve call.
func (d *DPLL) Assume(lits []Lit) {
	d.assumed = append(d.assumed, lits...)
}

// Reset clears assignments and pending assumptions while keeping the
// accumulated clause set, so a caller solving the same FFR/MFFC CNF against
// many faults does not have to re-encode it each time.
func (d *DPLL) Reset() {
	for i := range d.assign {
		d.assign[i] = -1
	}
	d.trail = d.trail[:0]
	d.assumed = d.assumed[:0]
}

// Solve runs DPLL search under the current assumptions, honoring ctx
// cancellation/deadline by checking it at every decision point (cheap
// relative to propagation, and frequent enough that a timeout is noticed
// promptly on the small circuits this solver targets).
func (d *DPLL) Solve(ctx context.Context) (Outcome, Model) {
	allClauses := make([][]Lit, len(d.clauses), len(d.clauses)+len(d.assumed))
	copy(allClauses, d.clauses)
	for _, lit := range d.assumed {
		allClauses = append(allClauses, []Lit{lit})
	}

	ok := d.search(ctx, allClauses)
	if ctx.Err() != nil {
		return Unknown, nil
	}
	if !ok {
		return Unsat, nil
	}

	model := make(Model, d.numVars)
	for v := 0; v < d.numVars; v++ {
		if d.assign[v] >= 0 {
			model[Var(v)] = d.assign[v] == 1
		}
	}
	return Sat, model
}

func (d *DPLL) search(ctx context.Context, clauses [][]Lit) bool {
	if err := ctx.Err(); err != nil {
		return false
	}

	if ok, conflict := d.propagate(clauses); conflict {
		_ = ok
		return false
	}

	v, found := d.firstUnassigned()
	if !found {
		return true // every variable assigned, no conflict
	}

	for _, val := range [2]int8{1, 0} {
		mark := len(d.trail)
		d.assign[v] = val
		d.trail = append(d.trail, litFor(v, val))

		if d.search(ctx, clauses) {
			return true
		}

		d.undoTo(mark)
		d.assign[v] = -1
	}
	return false
}

func litFor(v Var, val int8) Lit {
	if val == 1 {
		return PosLit(v)
	}
	return NegLit(v)
}

func (d *DPLL) undoTo(mark int) {
	for i := len(d.trail) - 1; i >= mark; i-- {
		d.assign[d.trail[i].Var()] = -1
	}
	d.trail = d.trail[:mark]
}

func (d *DPLL) firstUnassigned() (Var, bool) {
	for v, a := range d.assign {
		if a < 0 {
			return Var(v), true
		}
	}
	return 0, false
}

// propagate performs unit propagation to a fixed point, returning
// (anythingPropagated, conflict).
func (d *DPLL) propagate(clauses [][]Lit) (bool, bool) {
	changed := true
	any := false
	for changed {
		changed = false
		for _, cl := range clauses {
			status, unit := d.clauseStatus(cl)
			switch status {
			case clauseConflict:
				return any, true
			case clauseUnit:
				v := unit.Var()
				val := int8(0)
				if unit.IsPos() {
					val = 1
				}
				d.assign[v] = val
				d.trail = append(d.trail, unit)
				changed = true
				any = true
			}
		}
	}
	return any, false
}

type clauseState int

const (
	clauseUnresolved clauseState = iota
	clauseSatisfied
	clauseUnit
	clauseConflict
)

func (d *DPLL) litValue(l Lit) int8 {
	a := d.assign[l.Var()]
	if a < 0 {
		return -1
	}
	if l.IsPos() {
		return a
	}
	return 1 - a
}

func (d *DPLL) clauseStatus(cl []Lit) (clauseState, Lit) {
	unassignedCount := 0
	var lastUnassigned Lit
	for _, l := range cl {
		v := d.litValue(l)
		if v == 1 {
			return clauseSatisfied, 0
		}
		if v < 0 {
			unassignedCount++
			lastUnassigned = l
		}
	}
	if unassignedCount == 0 {
		return clauseConflict, 0
	}
	if unassignedCount == 1 {
		return clauseUnit, lastUnassigned
	}
	return clauseUnresolved, 0
}
