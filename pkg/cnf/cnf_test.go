package cnf

import (
	"context"
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/parse"
	"github.com/satpg-go/satpg/pkg/sat"
	"github.com/satpg-go/satpg/pkg/tpg"
)

const andBench = `
INPUT(a)
INPUT(b)
n1 = AND(a, b)
OUTPUT(n1)
`

func buildNet(t *testing.T) *tpg.Network {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(andBench))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	net, err := tpg.ElaborateFrom(pn)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	return net
}

// TestEncodeAndDetectOutputStuckAt0 builds the CNF for n1 stuck-at-0 over
// the tiny AND(a,b) circuit and checks the solver finds the only satisfying
// assignment, a=1,b=1.
func TestEncodeAndDetectOutputStuckAt0(t *testing.T) {
	net := buildNet(t)
	n1ID, _ := net.NodeByName("n1")
	aID, _ := net.NodeByName("a")
	bID, _ := net.NodeByName("b")

	solver := sat.NewDPLL()
	enc := NewEncoder(net, solver)

	all := []tpg.NodeID{aID, bID, n1ID}
	enc.EncodeGood(all)
	site := fault.Site{Node: n1ID}
	enc.EncodeFaulty(all, site, false)

	for _, cl := range enc.ActivationClauses(site, false) {
		solver.AddClause(cl)
	}
	obsLits := enc.ObservationClause([]tpg.NodeID{n1ID})
	solver.AddClause(obsLits)

	outcome, model := solver.Solve(context.Background())
	if outcome != sat.Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}

	if !model[enc.GVar(aID)] || !model[enc.GVar(bID)] {
		t.Errorf("expected a=1,b=1 to be the only pattern detecting n1 stuck-at-0, got a=%v b=%v",
			model[enc.GVar(aID)], model[enc.GVar(bID)])
	}
}
