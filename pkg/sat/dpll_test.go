package sat

import (
	"context"
	"testing"
)

func TestDPLLSimpleSat(t *testing.T) {
	d := NewDPLL()
	a := d.NewVar()
	b := d.NewVar()

	// (a OR b) AND (NOT a OR b) -> b must be true.
	d.AddClause([]Lit{PosLit(a), PosLit(b)})
	d.AddClause([]Lit{NegLit(a), PosLit(b)})

	outcome, model := d.Solve(context.Background())
	if outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
	if !model[b] {
		t.Errorf("expected b assigned true, got %v", model[b])
	}
}

func TestDPLLUnsat(t *testing.T) {
	d := NewDPLL()
	a := d.NewVar()

	d.AddClause([]Lit{PosLit(a)})
	d.AddClause([]Lit{NegLit(a)})

	outcome, _ := d.Solve(context.Background())
	if outcome != Unsat {
		t.Fatalf("expected Unsat, got %v", outcome)
	}
}

func TestDPLLAssumptions(t *testing.T) {
	d := NewDPLL()
	a := d.NewVar()
	b := d.NewVar()
	d.AddClause([]Lit{NegLit(a), PosLit(b)}) // a -> b

	d.Assume([]Lit{PosLit(a)})
	outcome, model := d.Solve(context.Background())
	if outcome != Sat {
		t.Fatalf("expected Sat under assumption a=true, got %v", outcome)
	}
	if !model[b] {
		t.Errorf("expected b forced true by a -> b with a=true")
	}

	d.Reset()
	d.Assume([]Lit{PosLit(a), NegLit(b)})
	outcome, _ = d.Solve(context.Background())
	if outcome != Unsat {
		t.Fatalf("expected Unsat with a=true,b=false violating a -> b, got %v", outcome)
	}
}
