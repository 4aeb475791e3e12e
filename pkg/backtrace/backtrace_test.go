package backtrace

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/parse"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// n1 = AND(a,b,c): only a=b=c=1 detects n1 stuck-at-0, so no lane should
// relax to X under Just1.
const and3Bench = `
INPUT(a)
INPUT(b)
INPUT(c)
n1 = AND(a, b, c)
OUTPUT(n1)
`

// n2 = OR(n1, d) with n1=AND(a,b): once a=b=1 activates and excites n1
// stuck-at-0 through n2, d is a free don't-care (OR's other input) and
// should relax to X.
const orDontCareBench = `
INPUT(a)
INPUT(b)
INPUT(d)
n1 = AND(a, b)
n2 = OR(n1, d)
OUTPUT(n2)
`

func buildSim(t *testing.T, bench string) (*tpg.Network, *fault.DB, *fsim.Simulator) {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(bench))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	net, err := tpg.ElaborateFrom(pn)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	db := fault.ExtractAll(net)
	return net, db, fsim.New(net, db)
}

func findFault(db *fault.DB, net *tpg.Network, name string, stuck bool) fault.FaultID {
	id, _ := net.NodeByName(name)
	for _, f := range db.Faults {
		if f.Site.Node == id && !f.Site.IsInput && f.StuckValue == stuck {
			return f.ID
		}
	}
	panic("fault not found: " + name)
}

func TestJust1KeepsAllRequiredLanes(t *testing.T) {
	net, db, sim := buildSim(t, and3Bench)
	fid := findFault(db, net, "n1", false)

	tv := testvector.NewTestVector(3, false)
	tv.Frame0[0] = pbit.One()
	tv.Frame0[1] = pbit.One()
	tv.Frame0[2] = pbit.One()

	bt := New(net, Just1, 1)
	relaxed := bt.Justify(sim, db, fid, tv)

	for i, v := range relaxed.Frame0 {
		if v.IsX() != 0 {
			t.Errorf("expected lane %d to stay required (AND needs all 3 inputs), got X", i)
		}
	}
}

func TestJust1RelaxesDontCareLane(t *testing.T) {
	net, db, sim := buildSim(t, orDontCareBench)
	fid := findFault(db, net, "n1", false)

	tv := testvector.NewTestVector(3, false)
	tv.Frame0[0] = pbit.One() // a
	tv.Frame0[1] = pbit.One() // b
	tv.Frame0[2] = pbit.Zero() // d, should become a free don't-care

	bt := New(net, Just1, 1)
	relaxed := bt.Justify(sim, db, fid, tv)

	if relaxed.Frame0[2].IsX() == 0 {
		t.Errorf("expected d to relax to X once a=b=1 excites and propagates the fault")
	}
}

// q=AND(b,c) and a are n1's two OR fanins; with a=b=c=1 both are
// simultaneously at OR's controlling value 1, so Just1 (first fanin by
// index: q) and Just2 (shortest required-PPI list: a, a one-element leaf
// against q's two-element {b,c} subtree) must pick differently.
const controllingChoiceBench = `
INPUT(a)
INPUT(b)
INPUT(c)
q = AND(b, c)
n1 = OR(q, a)
OUTPUT(n1)
`

func TestJust1PicksFirstControllingFaninByIndex(t *testing.T) {
	net, db, sim := buildSim(t, controllingChoiceBench)
	fid := findFault(db, net, "n1", false)

	tv := testvector.NewTestVector(3, false)
	tv.Frame0[0] = pbit.One() // a
	tv.Frame0[1] = pbit.One() // b
	tv.Frame0[2] = pbit.One() // c

	bt := New(net, Just1, 1)
	relaxed := bt.Justify(sim, db, fid, tv)

	if relaxed.Frame0[0].IsX() == 0 {
		t.Errorf("expected Just1 to pick q (n1's first-listed fanin) and relax a to X")
	}
	if relaxed.Frame0[1].IsX() != 0 || relaxed.Frame0[2].IsX() != 0 {
		t.Errorf("expected Just1 to keep b and c defined (q's required subtree)")
	}
}

func TestJust2PicksShortestControllingFanin(t *testing.T) {
	net, db, sim := buildSim(t, controllingChoiceBench)
	fid := findFault(db, net, "n1", false)

	tv := testvector.NewTestVector(3, false)
	tv.Frame0[0] = pbit.One() // a
	tv.Frame0[1] = pbit.One() // b
	tv.Frame0[2] = pbit.One() // c

	bt := New(net, Just2, 1)
	relaxed := bt.Justify(sim, db, fid, tv)

	if relaxed.Frame0[0].IsX() != 0 {
		t.Errorf("expected Just2 to keep a defined, the shorter of the two controlling candidates")
	}
	if relaxed.Frame0[1].IsX() == 0 || relaxed.Frame0[2].IsX() == 0 {
		t.Errorf("expected Just2 to relax b and c to X in favor of a's shorter list")
	}
}
