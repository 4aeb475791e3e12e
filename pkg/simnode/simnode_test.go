package simnode

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/parse"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/tpg"
)

const andBench = `
INPUT(a)
INPUT(b)
n1 = AND(a, b)
OUTPUT(n1)
`

func buildGraph(t *testing.T) (*tpg.Network, *Graph) {
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
	return net, NewGraph(net)
}

func TestEvalGoodAND(t *testing.T) {
	net, g := buildGraph(t)

	aID, _ := net.NodeByName("a")
	bID, _ := net.NodeByName("b")
	n1ID, _ := net.NodeByName("n1")

	g.Nodes[aID].GVal = pbit.One()
	g.Nodes[bID].GVal = pbit.One()

	got := g.EvalGood(n1ID)
	if got.V1 != pbit.All1 {
		t.Errorf("expected AND(1,1)=1 across all lanes")
	}

	g.Nodes[bID].GVal = pbit.Zero()
	got = g.EvalGood(n1ID)
	if got.V0 != pbit.All1 {
		t.Errorf("expected AND(1,0)=0 across all lanes")
	}
}

func TestEventQueueLevelOrder(t *testing.T) {
	net, g := buildGraph(t)
	n1ID, _ := net.NodeByName("n1")
	aID, _ := net.NodeByName("a")

	q := g.Queue()
	q.Put(n1ID)
	q.Put(aID)

	first, ok := q.Pop()
	if !ok || first != aID {
		t.Errorf("expected level-0 node a to pop before level-1 node n1")
	}
	second, ok := q.Pop()
	if !ok || second != n1ID {
		t.Errorf("expected n1 to pop second")
	}
	if !q.Empty() {
		t.Errorf("expected queue empty after draining")
	}
}

func TestEventQueueDedupesPending(t *testing.T) {
	net, g := buildGraph(t)
	n1ID, _ := net.NodeByName("n1")

	q := g.Queue()
	q.Put(n1ID)
	q.Put(n1ID)

	_, ok := q.Pop()
	if !ok {
		t.Fatalf("expected one event")
	}
	if !q.Empty() {
		t.Errorf("expected duplicate Put to be suppressed")
	}
}

func TestClearListResetsOnlyTouched(t *testing.T) {
	net, g := buildGraph(t)
	n1ID, _ := net.NodeByName("n1")
	aID, _ := net.NodeByName("a")

	g.Nodes[aID].GVal = pbit.One()
	g.Nodes[n1ID].GVal = pbit.One()
	g.Nodes[n1ID].FVal = pbit.Zero()

	cl := NewClearList(len(g.Nodes))
	cl.Mark(n1ID)

	g.ResetFaultyValues(cl)

	if g.Nodes[n1ID].FVal != g.Nodes[n1ID].GVal {
		t.Errorf("expected touched node's faulty value restored to good value")
	}
	if len(cl.Nodes()) != 0 {
		t.Errorf("expected clear list emptied after reset")
	}
}
