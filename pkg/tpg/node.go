// Package tpg implements TpgNetwork elaboration: turning a parsed netlist
// into the immutable, leveled node graph the rest of the toolkit shares.
package tpg

import "github.com/satpg-go/satpg/pkg/netlist"

// NodeID is a dense index into Network.Nodes. It is never an owning
// pointer; arrays of NodeID are how the rest of the toolkit refers to
// nodes, following the arena style the design favors over a pointer graph.
type NodeID int

// InvalidNode marks the absence of a node reference.
const InvalidNode NodeID = -1

// Kind distinguishes the node's role in the network independent of its
// GateType.
type Kind int

const (
	KindGate Kind = iota
	KindPI
	KindPO
	KindPPI // pseudo-primary input, driven by a DFF's Q
	KindPPO // pseudo-primary output, feeding a DFF's D
)

// ComplexFaninEntry maps one operand position of a Complex gate's
// expression back to the primitive node and fanin index that realizes it,
// per the data model's complex-gate fanin mapping.
type ComplexFaninEntry struct {
	ExprIdx   int
	PrimNode  NodeID
	PrimFanin int
}

// Node is one element of the elaborated network: a gate, PI, PO, PPI, or
// PPO. Fanin/Fanout are dense NodeID slices, never pointers, so the graph
// can be copied, hashed, and shared across goroutines safely once built.
type Node struct {
	ID     NodeID
	Name   string
	Kind   Kind
	Gate   netlist.GateType
	Fanin  []NodeID
	Fanout []NodeID
	Level  int

	// FFRRoot is the NodeID of the fanout-stem that roots this node's
	// fanout-free region (itself, if this node is a stem or a PO/PPO).
	FFRRoot NodeID

	// ComplexExpr and ComplexFanin are populated only for a node that was
	// declared as a Complex gate. ElaborateFrom decomposes the expression
	// into a tree of primitive AND/OR/XOR/NOT/BUF nodes before returning —
	// this node's own Gate is rewritten to the tree root's primitive type,
	// so Gate is never Complex on a fully elaborated Network. ComplexExpr
	// is kept only as a record of the original expression; ComplexFanin is
	// the (original-input-index) -> (primitive-node, primitive-fanin-index)
	// mapping the data model requires, pointing at the decomposed nodes.
	ComplexExpr  *netlist.Expr
	ComplexFanin []ComplexFaninEntry

	// isFanoutStem is set during elaboration; read it via IsFanoutStem.
	isFanoutStem bool
}

// IsFanoutStem reports whether this node drives more than one gate, i.e.
// whether it begins a new FFR.
func (n *Node) IsFanoutStem() bool { return n.isFanoutStem }

// Network is the immutable, leveled, post-elaboration circuit graph built
// once by ElaborateFrom and shared read-only by every simulation and DTPG
// goroutine thereafter.
type Network struct {
	Name  string
	Nodes []Node

	PIs  []NodeID
	POs  []NodeID
	PPIs []NodeID
	PPOs []NodeID

	// OutputsByTFISize lists PO/PPO node IDs sorted by ascending
	// transitive-fanin-cone size. pkg/dtpg and pkg/backtrace do not read
	// it; they walk POs and PPOs in declaration order.
	OutputsByTFISize []NodeID

	// FFRRoots lists every node ID that roots a fanout-free region
	// (fanout stems, POs, and PPOs).
	FFRRoots []NodeID

	// FFRMembers maps an FFR root to the node IDs inside that FFR,
	// excluding the root itself's upstream stems.
	FFRMembers map[NodeID][]NodeID

	byName map[string]NodeID
}

// NodeByName looks up a node by its net name.
func (n *Network) NodeByName(name string) (NodeID, bool) {
	id, ok := n.byName[name]
	return id, ok
}

// Node returns the node for id.
func (n *Network) Node(id NodeID) *Node {
	return &n.Nodes[id]
}

func (n *Network) String() string {
	return n.Name
}
