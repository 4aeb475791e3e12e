// Package simnode implements the packed, event-driven simulation graph
// fault simulation runs over: one SimNode per TpgNode, a level-bucketed
// event queue, and a touched-node ClearList for cheap reset between fault
// injections. Grounded on the teacher's circuit.Line/circuit.Gate value
// model (pkg/circuit/line.go, gate.go), bit-parallelized and generalized
// from single-pattern to packed-word evaluation.
package simnode

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/gammazero/deque"

	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// SimNode is the simulation-time shadow of one tpg.Node: the same Fanin/
// Fanout/Level structure, plus packed good-circuit and faulty-circuit
// values. GVal and FVal are equal everywhere outside the active fault's
// observability cone.
type SimNode struct {
	ID     tpg.NodeID
	Gate   netlist.GateType
	Fanin  []tpg.NodeID
	Fanout []tpg.NodeID
	Level  int

	GVal pbit.Pair
	FVal pbit.Pair
}

// Diverged returns, per lane, whether the good and faulty values differ —
// the packed D/D' indicator the spec's five-valued model collapses into.
func (n *SimNode) Diverged() pbit.Word {
	return n.GVal.V0.Xor(n.FVal.V0).Or(n.GVal.V1.Xor(n.FVal.V1))
}

// Graph is the full packed simulation graph for one Network, built once
// per Simulator and reused across every fault and pattern deck.
type Graph struct {
	Net   *tpg.Network
	Nodes []SimNode

	pending *bitset.BitSet
	buckets []*deque.Deque[tpg.NodeID]
}

// NewGraph builds a simulation graph shadowing net.
func NewGraph(net *tpg.Network) *Graph {
	g := &Graph{Net: net, Nodes: make([]SimNode, len(net.Nodes))}
	maxLevel := 0
	for i := range net.Nodes {
		n := &net.Nodes[i]
		g.Nodes[i] = SimNode{
			ID:     n.ID,
			Gate:   n.Gate,
			Fanin:  n.Fanin,
			Fanout: n.Fanout,
			Level:  n.Level,
			GVal:   pbit.X(),
			FVal:   pbit.X(),
		}
		if n.Level > maxLevel {
			maxLevel = n.Level
		}
	}
	g.pending = bitset.New(uint(len(net.Nodes)))
	g.buckets = make([]*deque.Deque[tpg.NodeID], maxLevel+1)
	for i := range g.buckets {
		g.buckets[i] = new(deque.Deque[tpg.NodeID])
	}
	return g
}

// EventQueue is the level-bucketed FIFO that drives forward propagation:
// Put enqueues a node at most once until it is popped, Pop drains the
// lowest non-empty level first so every node's fanin is already settled
// when it is evaluated.
type EventQueue struct {
	g *Graph
}

// Queue returns the graph's event queue view.
func (g *Graph) Queue() EventQueue { return EventQueue{g: g} }

// Put enqueues node for evaluation, a no-op if it is already pending.
func (q EventQueue) Put(id tpg.NodeID) {
	if q.g.pending.Test(uint(id)) {
		return
	}
	q.g.pending.Set(uint(id))
	q.g.buckets[q.g.Nodes[id].Level].PushBack(id)
}

// Pop removes and returns the next node in level order, or false if empty.
func (q EventQueue) Pop() (tpg.NodeID, bool) {
	for _, b := range q.g.buckets {
		if b.Len() > 0 {
			id := b.PopFront()
			q.g.pending.Clear(uint(id))
			return id, true
		}
	}
	return 0, false
}

// Empty reports whether every level bucket is drained.
func (q EventQueue) Empty() bool {
	for _, b := range q.g.buckets {
		if b.Len() > 0 {
			return false
		}
	}
	return true
}

// ClearList tracks every node touched during one fault's propagation so
// Reset can restore only those nodes in O(touched) instead of sweeping the
// whole graph, following the teacher's single-pass Circuit.Reset idea
// narrowed to the actually-dirtied set.
type ClearList struct {
	touched []tpg.NodeID
	marked  *bitset.BitSet
}

// NewClearList creates an empty list sized for a graph with n nodes.
func NewClearList(n int) *ClearList {
	return &ClearList{marked: bitset.New(uint(n))}
}

// Mark records id as touched, if not already recorded.
func (c *ClearList) Mark(id tpg.NodeID) {
	if c.marked.Test(uint(id)) {
		return
	}
	c.marked.Set(uint(id))
	c.touched = append(c.touched, id)
}

// Nodes returns every touched node ID in the order first marked.
func (c *ClearList) Nodes() []tpg.NodeID { return c.touched }

// Reset clears the tracked set back to empty without reallocating.
func (c *ClearList) Reset() {
	for _, id := range c.touched {
		c.marked.Clear(uint(id))
	}
	c.touched = c.touched[:0]
}

// ResetFaultyValues restores FVal = GVal for every touched node and empties
// the list, the per-fault cleanup step the fault simulator runs between
// faults instead of resetting the entire graph.
func (g *Graph) ResetFaultyValues(c *ClearList) {
	for _, id := range c.Nodes() {
		g.Nodes[id].FVal = g.Nodes[id].GVal
	}
	c.Reset()
}
