package tpg

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/parse"
)

func mustElaborate(t *testing.T, bench string) *Network {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(bench))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	net, err := ElaborateFrom(pn)
	if err != nil {
		t.Fatalf("elaborate failed: %v", err)
	}
	return net
}

// c17-style tiny combinational circuit with one fanout stem.
const simpleBench = `
INPUT(a)
INPUT(b)
INPUT(c)
n1 = AND(a, b)
n2 = OR(n1, c)
n3 = NOT(n1)
OUTPUT(n2)
OUTPUT(n3)
`

func TestElaborateBasic(t *testing.T) {
	net := mustElaborate(t, simpleBench)

	if len(net.PIs) != 3 {
		t.Errorf("expected 3 PIs, got %d", len(net.PIs))
	}
	if len(net.POs) != 2 {
		t.Errorf("expected 2 POs, got %d", len(net.POs))
	}

	n1ID, ok := net.NodeByName("n1")
	if !ok {
		t.Fatalf("n1 not found")
	}
	n1 := net.Node(n1ID)
	if n1.Gate != netlist.AND {
		t.Errorf("expected n1 to be AND, got %v", n1.Gate)
	}
	if len(n1.Fanout) != 2 {
		t.Errorf("expected n1 to fan out to 2 gates, got %d", len(n1.Fanout))
	}
	if !n1.IsFanoutStem() {
		t.Errorf("expected n1 to be identified as a fanout stem")
	}
}

func TestElaborateLevels(t *testing.T) {
	net := mustElaborate(t, simpleBench)

	aID, _ := net.NodeByName("a")
	n1ID, _ := net.NodeByName("n1")
	n2ID, _ := net.NodeByName("n2")

	if net.Node(aID).Level != 0 {
		t.Errorf("expected PI a at level 0, got %d", net.Node(aID).Level)
	}
	if net.Node(n1ID).Level != 1 {
		t.Errorf("expected n1 at level 1, got %d", net.Node(n1ID).Level)
	}
	if net.Node(n2ID).Level != 2 {
		t.Errorf("expected n2 at level 2, got %d", net.Node(n2ID).Level)
	}
}

func TestFFRPartitioning(t *testing.T) {
	net := mustElaborate(t, simpleBench)

	n1ID, _ := net.NodeByName("n1")
	root := net.Node(n1ID).FFRRoot
	if root != n1ID {
		t.Errorf("expected n1 (a fanout stem) to root its own FFR")
	}

	aID, _ := net.NodeByName("a")
	// a is a PI, never assigned into an FFR's member list, but it does
	// feed n1's FFR.
	found := false
	for _, m := range net.FFRMembers[root] {
		if m == aID {
			found = true
		}
	}
	if found {
		t.Errorf("PI should not appear as an FFR member")
	}
}

func TestOutputsSortedByTFISize(t *testing.T) {
	net := mustElaborate(t, simpleBench)
	if len(net.OutputsByTFISize) != 2 {
		t.Fatalf("expected 2 outputs ranked, got %d", len(net.OutputsByTFISize))
	}
	// n3 = NOT(n1) has a smaller TFI cone than n2 = OR(n1, c).
	n3POName := "PO$n3"
	first := net.Node(net.OutputsByTFISize[0])
	if first.Name != n3POName {
		t.Errorf("expected smallest-cone output first, got %s", first.Name)
	}
}

// y = (a*b)+(c*!a): a appears twice (once positive, once negated), so it
// must be routed through a dedicated buffer node; b and c each appear
// exactly once, positively, so they wire in directly.
const complexBench = `
INPUT(a)
INPUT(b)
INPUT(c)
y = (a*b)+(c*!a)
OUTPUT(y)
`

func TestComplexGateDecomposesIntoPrimitiveTree(t *testing.T) {
	net := mustElaborate(t, complexBench)

	yID, ok := net.NodeByName("y")
	if !ok {
		t.Fatalf("y not found")
	}
	y := net.Node(yID)
	if y.Gate != netlist.OR {
		t.Fatalf("expected y's root gate to be OR (the expression's top-level '+'), got %v", y.Gate)
	}
	if len(y.Fanin) != 2 {
		t.Fatalf("expected y to have 2 fanins (the two AND sub-terms), got %d", len(y.Fanin))
	}

	bufID, ok := net.NodeByName("y$in0")
	if !ok {
		t.Fatalf("expected a dedicated buffer node for a's repeated/negated literal")
	}
	buf := net.Node(bufID)
	if buf.Gate != netlist.BUF || len(buf.Fanin) != 1 {
		t.Fatalf("expected y$in0 to be a single-input buffer, got gate=%v fanin=%v", buf.Gate, buf.Fanin)
	}
	aID, _ := net.NodeByName("a")
	if buf.Fanin[0] != aID {
		t.Fatalf("expected y$in0 to be driven by a")
	}

	if len(y.ComplexFanin) != 3 {
		t.Fatalf("expected 3 ComplexFanin entries (one per original input), got %d", len(y.ComplexFanin))
	}
	var aEntry, bEntry, cEntry *ComplexFaninEntry
	for i := range y.ComplexFanin {
		e := &y.ComplexFanin[i]
		switch e.ExprIdx {
		case 0:
			aEntry = e
		case 1:
			bEntry = e
		case 2:
			cEntry = e
		}
	}
	if aEntry == nil || aEntry.PrimNode != bufID || aEntry.PrimFanin != 0 {
		t.Errorf("expected a's fault site to be the buffer's own input pin, got %+v", aEntry)
	}
	if bEntry == nil || bEntry.PrimNode == bufID {
		t.Errorf("expected b to wire directly into its consuming AND, not through a buffer, got %+v", bEntry)
	}
	if cEntry == nil || cEntry.PrimNode == bufID {
		t.Errorf("expected c to wire directly into its consuming AND, not through a buffer, got %+v", cEntry)
	}

	// No node in the fully elaborated network should still carry the raw
	// Complex gate type: decomposition must have rewritten every one of
	// them to a concrete primitive.
	for i := range net.Nodes {
		if net.Nodes[i].Gate == netlist.Complex {
			t.Errorf("node %q still has GateType Complex after elaboration", net.Nodes[i].Name)
		}
	}
}

func TestElaborateCycleDetected(t *testing.T) {
	// Two gates referencing each other form a cycle that ComputeLevels
	// must reject rather than loop forever.
	pn := &netlist.ParsedNetwork{
		Name: "cyc",
		Gates: []netlist.ParsedGate{
			{Output: "x", Fanin: []string{"y"}, Type: netlist.BUF},
			{Output: "y", Fanin: []string{"x"}, Type: netlist.BUF},
		},
	}
	if _, err := ElaborateFrom(pn); err == nil {
		t.Errorf("expected cycle to be rejected")
	}
}
