package tpg

import (
	"fmt"
	"sort"

	"github.com/satpg-go/satpg/pkg/netlist"
)

// ElaborateFrom builds an immutable Network from a parsed netlist. It is
// the only way a Network is constructed; once returned, a Network is never
// mutated, matching the arena-plus-dense-ID design the rest of the toolkit
// assumes. Grounded on the teacher's Circuit.AnalyzeTopology pipeline
// (ComputeLevels, IdentifyFanoutPoints, IdentifyFreeAndBoundRegions),
// generalized from a mutable per-run struct to a one-shot builder.
func ElaborateFrom(p *netlist.ParsedNetwork) (*Network, error) {
	net := &Network{
		Name:       p.Name,
		byName:     make(map[string]NodeID),
		FFRMembers: make(map[NodeID][]NodeID),
	}

	declare := func(name string, kind Kind) NodeID {
		if id, ok := net.byName[name]; ok {
			return id
		}
		id := NodeID(len(net.Nodes))
		net.Nodes = append(net.Nodes, Node{
			ID:      id,
			Name:    name,
			Kind:    kind,
			FFRRoot: InvalidNode,
		})
		net.byName[name] = id
		return id
	}

	for _, pi := range p.PIs {
		id := declare(pi.Name, KindPI)
		net.PIs = append(net.PIs, id)
	}
	for _, dff := range p.DFFs {
		id := declare(dff.Output, KindPPI)
		net.PPIs = append(net.PPIs, id)
	}
	for _, g := range p.Gates {
		declare(g.Output, KindGate)
		for _, in := range g.Fanin {
			declare(in, KindGate)
		}
	}
	for _, po := range p.POs {
		if _, ok := net.byName[po.Source]; !ok {
			return nil, fmt.Errorf("output %q: undefined net %q", po.Name, po.Source)
		}
	}
	for _, dff := range p.DFFs {
		if _, ok := net.byName[dff.Input]; !ok {
			return nil, fmt.Errorf("dff %q: undefined input net %q", dff.Name, dff.Input)
		}
	}

	gateByOutput := make(map[string]netlist.ParsedGate, len(p.Gates))
	for _, g := range p.Gates {
		gateByOutput[g.Output] = g
	}

	// Wire fanin/gate-type for every declared gate node. PI/PPI nodes
	// keep an empty fanin slice; their "input" is external. Complex gates
	// are handled in a second pass below: decomposeComplex rewrites the
	// node's own Gate/Fanin in place and may append brand-new primitive
	// nodes, which would be unsafe to do while still ranging over
	// net.byName.
	var complexNodes []NodeID
	for name, id := range net.byName {
		g, isGate := gateByOutput[name]
		if !isGate {
			continue
		}
		node := &net.Nodes[id]
		node.Gate = g.Type
		if g.Type == netlist.Complex {
			node.ComplexExpr = g.Expr
			complexNodes = append(complexNodes, id)
			continue
		}
		for _, inName := range g.Fanin {
			inID := net.byName[inName]
			node.Fanin = append(node.Fanin, inID)
			net.Nodes[inID].Fanout = append(net.Nodes[inID].Fanout, id)
		}
	}

	sort.Slice(complexNodes, func(i, j int) bool { return complexNodes[i] < complexNodes[j] })
	for _, id := range complexNodes {
		fanin := make([]NodeID, len(gateByOutput[net.Nodes[id].Name].Fanin))
		for i, inName := range gateByOutput[net.Nodes[id].Name].Fanin {
			fanin[i] = net.byName[inName]
		}
		decomposeComplex(net, id, fanin)
	}

	// Create a PO wrapper node forwarding the driving net for every PO: the
	// teacher's model treats a PO as a Line.Type flag rather than a
	// separate node, but a dense-ID arena wants every network boundary
	// to be its own node so fanout counts stay correct.
	for _, po := range p.POs {
		srcID := net.byName[po.Source]
		poID := declare("PO$"+po.Name, KindPO)
		net.Nodes[poID].Gate = netlist.BUF
		net.Nodes[poID].Fanin = []NodeID{srcID}
		net.Nodes[srcID].Fanout = append(net.Nodes[srcID].Fanout, poID)
		net.POs = append(net.POs, poID)
	}
	for _, dff := range p.DFFs {
		srcID := net.byName[dff.Input]
		ppoID := declare("PPO$"+dff.Name, KindPPO)
		net.Nodes[ppoID].Gate = netlist.BUF
		net.Nodes[ppoID].Fanin = []NodeID{srcID}
		net.Nodes[srcID].Fanout = append(net.Nodes[srcID].Fanout, ppoID)
		net.PPOs = append(net.PPOs, ppoID)
	}

	if err := computeLevels(net); err != nil {
		return nil, err
	}
	identifyFanoutStems(net)
	if err := computeFFRs(net); err != nil {
		return nil, err
	}
	sortOutputsByTFISize(net)

	return net, nil
}

// decomposeComplex implements spec.md §3/§4.1's Complex-gate rule: a
// Complex gate becomes a tree of primitive AND/OR/XOR/NOT nodes matching
// its Expr AST. An original input literal that appears exactly once and
// only positively connects straight to the primitive node that consumes
// it; an input that appears more than once, or both positively and
// negatively, gets a dedicated BUF node instead, and every occurrence of
// that literal in the tree reads the buffer's output — this is the node
// whose single input pin carries that original input's stuck-at faults,
// per the data model's (complex-input-index) -> (primitive-node,
// primitive-fanin-index) mapping. id's own Node is reused as the tree's
// root so existing fanout edges into it stay valid; every other primitive
// node in the tree is freshly appended to net.Nodes.
func decomposeComplex(net *Network, id NodeID, fanin []NodeID) {
	expr := net.Nodes[id].ComplexExpr
	rootName := net.Nodes[id].Name

	type occurrence struct {
		count    int
		pos, neg bool
	}
	occs := make([]occurrence, len(fanin))
	var scan func(n *netlist.Expr, negated bool)
	scan = func(n *netlist.Expr, negated bool) {
		switch n.Op {
		case netlist.OpVar:
			o := &occs[n.FaninIdx]
			o.count++
			if negated {
				o.neg = true
			} else {
				o.pos = true
			}
		case netlist.OpNot:
			scan(n.Left, !negated)
		default:
			scan(n.Left, negated)
			scan(n.Right, negated)
		}
	}
	scan(expr, false)

	needsBuffer := make([]bool, len(fanin))
	source := make([]NodeID, len(fanin))
	faninMap := make([]ComplexFaninEntry, len(fanin))
	for i, o := range occs {
		needsBuffer[i] = o.count != 1 || o.neg
		if needsBuffer[i] {
			bufID := NodeID(len(net.Nodes))
			net.Nodes = append(net.Nodes, Node{
				ID:      bufID,
				Name:    fmt.Sprintf("%s$in%d", rootName, i),
				Kind:    KindGate,
				Gate:    netlist.BUF,
				Fanin:   []NodeID{fanin[i]},
				FFRRoot: InvalidNode,
			})
			net.Nodes[fanin[i]].Fanout = append(net.Nodes[fanin[i]].Fanout, bufID)
			net.byName[net.Nodes[bufID].Name] = bufID
			source[i] = bufID
			faninMap[i] = ComplexFaninEntry{ExprIdx: i, PrimNode: bufID, PrimFanin: 0}
		} else {
			source[i] = fanin[i]
		}
	}

	// build returns the NodeID realizing n's subtree, plus (when n is a
	// var leaf that did not need a buffer) the original input index whose
	// faninMap entry the caller should fill in once it knows which
	// primitive node and pin ends up consuming it directly.
	var build func(n *netlist.Expr, isRoot bool) (NodeID, int)
	build = func(n *netlist.Expr, isRoot bool) (NodeID, int) {
		if n.Op == netlist.OpVar {
			varIdx := -1
			if !needsBuffer[n.FaninIdx] {
				varIdx = n.FaninIdx
			}
			return source[n.FaninIdx], varIdx
		}

		var gt netlist.GateType
		var kids []NodeID
		var kidVar []int
		switch n.Op {
		case netlist.OpNot:
			gt = netlist.NOT
			k, v := build(n.Left, false)
			kids, kidVar = []NodeID{k}, []int{v}
		case netlist.OpAnd:
			gt = netlist.AND
			l, lv := build(n.Left, false)
			r, rv := build(n.Right, false)
			kids, kidVar = []NodeID{l, r}, []int{lv, rv}
		case netlist.OpOr:
			gt = netlist.OR
			l, lv := build(n.Left, false)
			r, rv := build(n.Right, false)
			kids, kidVar = []NodeID{l, r}, []int{lv, rv}
		default: // netlist.OpXor
			gt = netlist.XOR
			l, lv := build(n.Left, false)
			r, rv := build(n.Right, false)
			kids, kidVar = []NodeID{l, r}, []int{lv, rv}
		}

		var nid NodeID
		if isRoot {
			nid = id
			net.Nodes[nid].Gate = gt
			net.Nodes[nid].Fanin = nil
		} else {
			nid = NodeID(len(net.Nodes))
			net.Nodes = append(net.Nodes, Node{
				ID:      nid,
				Name:    fmt.Sprintf("%s$%d", rootName, nid),
				Kind:    KindGate,
				Gate:    gt,
				FFRRoot: InvalidNode,
			})
		}
		for pin, k := range kids {
			net.Nodes[nid].Fanin = append(net.Nodes[nid].Fanin, k)
			net.Nodes[k].Fanout = append(net.Nodes[k].Fanout, nid)
			if kidVar[pin] >= 0 {
				faninMap[kidVar[pin]] = ComplexFaninEntry{ExprIdx: kidVar[pin], PrimNode: nid, PrimFanin: pin}
			}
		}
		return nid, -1
	}

	if expr.Op == netlist.OpVar {
		// A degenerate single-variable expression: the root becomes a
		// pass-through buffer for whichever node already carries the
		// literal's value.
		idx := expr.FaninIdx
		net.Nodes[id].Gate = netlist.BUF
		net.Nodes[id].Fanin = []NodeID{source[idx]}
		net.Nodes[source[idx]].Fanout = append(net.Nodes[source[idx]].Fanout, id)
		if !needsBuffer[idx] {
			faninMap[idx] = ComplexFaninEntry{ExprIdx: idx, PrimNode: id, PrimFanin: 0}
		}
	} else {
		build(expr, true)
	}

	net.Nodes[id].ComplexFanin = faninMap
}

// computeLevels assigns topological levels by fixed-point relaxation, the
// same approach as the teacher's Topology.ComputeLevels: a node's level is
// one more than the maximum level of its fanin, iterated until stable.
func computeLevels(net *Network) error {
	changed := true
	for iter := 0; changed; iter++ {
		if iter > len(net.Nodes)+4 {
			return fmt.Errorf("level computation did not converge: network has a cycle")
		}
		changed = false
		for i := range net.Nodes {
			n := &net.Nodes[i]
			if len(n.Fanin) == 0 {
				continue
			}
			maxIn := -1
			for _, f := range n.Fanin {
				if l := net.Nodes[f].Level; l > maxIn {
					maxIn = l
				}
			}
			if maxIn+1 != n.Level {
				n.Level = maxIn + 1
				changed = true
			}
		}
	}
	return nil
}

// identifyFanoutStems marks every node with more than one fanout edge,
// following teacher's Topology.IdentifyFanoutPoints.
func identifyFanoutStems(net *Network) {
	for i := range net.Nodes {
		net.Nodes[i].isFanoutStem = len(net.Nodes[i].Fanout) > 1
	}
}

// computeFFRs partitions the network into fanout-free regions. A region is
// rooted at a fanout stem or a PO/PPO and contains every node reachable
// backward without crossing another stem, following the teacher's
// Topology.IdentifyFreeAndBoundRegions recursive-reachability approach.
func computeFFRs(net *Network) error {
	isRoot := func(id NodeID) bool {
		n := &net.Nodes[id]
		return n.isFanoutStem || n.Kind == KindPO || n.Kind == KindPPO
	}

	for id := range net.Nodes {
		nid := NodeID(id)
		if !isRoot(nid) {
			continue
		}
		net.Nodes[id].FFRRoot = nid
		net.FFRRoots = append(net.FFRRoots, nid)

		var members []NodeID
		var mark func(NodeID)
		mark = func(cur NodeID) {
			for _, f := range net.Nodes[cur].Fanin {
				fn := &net.Nodes[f]
				if fn.Kind == KindPI || fn.Kind == KindPPI {
					// Inputs are never listed as members, but a
					// single-fanout input takes this region's root so a
					// fault on it has a region to propagate to.
					if !isRoot(f) {
						fn.FFRRoot = nid
					}
					continue
				}
				if isRoot(f) && f != nid {
					continue
				}
				if fn.FFRRoot == nid {
					continue
				}
				fn.FFRRoot = nid
				members = append(members, f)
				mark(f)
			}
		}
		mark(nid)
		net.FFRMembers[nid] = members
	}

	sort.Slice(net.FFRRoots, func(i, j int) bool { return net.FFRRoots[i] < net.FFRRoots[j] })
	return nil
}

// TransitiveFanin returns every node reachable backward from root,
// including root itself, via BFS over Fanin edges.
func (n *Network) TransitiveFanin(root NodeID) []NodeID {
	visited := map[NodeID]bool{root: true}
	queue := []NodeID{root}
	var order []NodeID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, f := range n.Nodes[cur].Fanin {
			if !visited[f] {
				visited[f] = true
				queue = append(queue, f)
			}
		}
	}
	return order
}

// TransitiveFanout returns every node reachable forward from root,
// including root itself, via BFS over Fanout edges.
func (n *Network) TransitiveFanout(root NodeID) []NodeID {
	visited := map[NodeID]bool{root: true}
	queue := []NodeID{root}
	var order []NodeID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, f := range n.Nodes[cur].Fanout {
			if !visited[f] {
				visited[f] = true
				queue = append(queue, f)
			}
		}
	}
	return order
}

// tfiSize counts the transitive fanin cone size of a node by BFS. Used only
// once per PO/PPO at elaboration time, so a simple visited-set walk is fine.
func tfiSize(net *Network, root NodeID) int {
	visited := make(map[NodeID]bool)
	queue := []NodeID{root}
	visited[root] = true
	count := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		count++
		for _, f := range net.Nodes[cur].Fanin {
			if !visited[f] {
				visited[f] = true
				queue = append(queue, f)
			}
		}
	}
	return count
}

func sortOutputsByTFISize(net *Network) {
	type scored struct {
		id   NodeID
		size int
	}
	var all []scored
	for _, id := range net.POs {
		all = append(all, scored{id, tfiSize(net, id)})
	}
	for _, id := range net.PPOs {
		all = append(all, scored{id, tfiSize(net, id)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].size != all[j].size {
			return all[i].size < all[j].size
		}
		return all[i].id < all[j].id
	})
	net.OutputsByTFISize = make([]NodeID, len(all))
	for i, s := range all {
		net.OutputsByTFISize[i] = s.id
	}
}
