package sat

// guarded wraps a Solver so every clause added through it is implicitly
// OR'd with the negation of a guard literal: (guard -> clause). This lets
// an FFR/MFFC-scoped DTPG engine add one fault's faulty-circuit clauses at
// a time without those clauses poisoning later solves for a different
// fault once the guard is permanently retired (a unit clause forcing the
// guard false) — the selector-literal technique incremental SAT users rely
// on instead of re-encoding or removing clauses.
type guarded struct {
	Solver
	guard Lit
}

// Guard returns a Solver view of sol where every AddClause call has guard
// appended, so the added clauses only bind while guard is true.
func Guard(sol Solver, guard Lit) Solver {
	return &guarded{Solver: sol, guard: guard}
}

func (g *guarded) AddClause(lits []Lit) {
	cp := make([]Lit, len(lits)+1)
	copy(cp, lits)
	cp[len(lits)] = g.guard.Negate()
	g.Solver.AddClause(cp)
}

// NewVar, Assume, Solve, and Reset pass through to the wrapped Solver
// unchanged via struct embedding; only AddClause needs the guard rewrite.
var _ Solver = (*guarded)(nil)
