package tpg

// MFFC computes the multi-level fanout-free-region cone rooted at a fanout
// stem: every FFR root that is dominated by root in the fanout direction,
// i.e. every path from that FFR's output to a primary/pseudo-primary output
// passes through root. Grounded on spec's MFFC/dominator description;
// original_source's MffcInfo.h confirms the dominator-tree shape without
// prescribing a Go data structure, so this is plain maps/slices rather than
// a third-party DAG library.
func (n *Network) MFFC(root NodeID) []NodeID {
	dom := n.dominators()

	var members []NodeID
	for _, ffrRoot := range n.FFRRoots {
		if ffrRoot == root {
			continue
		}
		if isDominatedBy(dom, ffrRoot, root) {
			members = append(members, ffrRoot)
		}
	}
	return members
}

// dominators computes, for each node, the set of nodes that every forward
// path from it to a primary output must pass through, via iterative
// dataflow over the fanout edges (post-dominance). Small test circuits make
// the O(n^2) worst case irrelevant; this mirrors the teacher's
// Topology.FindPathBetween BFS style rather than a Lengauer-Tarjan
// implementation.
func (n *Network) dominators() map[NodeID]map[NodeID]bool {
	dom := make(map[NodeID]map[NodeID]bool, len(n.Nodes))
	allOutputs := make(map[NodeID]bool)
	for _, id := range n.POs {
		allOutputs[id] = true
	}
	for _, id := range n.PPOs {
		allOutputs[id] = true
	}

	universe := make(map[NodeID]bool, len(n.Nodes))
	for i := range n.Nodes {
		universe[NodeID(i)] = true
	}

	for i := range n.Nodes {
		id := NodeID(i)
		if allOutputs[id] {
			dom[id] = map[NodeID]bool{id: true}
		} else {
			dom[id] = cloneSet(universe)
		}
	}

	changed := true
	for changed {
		changed = false
		for i := range n.Nodes {
			id := NodeID(i)
			if allOutputs[id] {
				continue
			}
			node := &n.Nodes[id]
			if len(node.Fanout) == 0 {
				continue
			}
			var merged map[NodeID]bool
			for j, fo := range node.Fanout {
				if j == 0 {
					merged = cloneSet(dom[fo])
					continue
				}
				intersect(merged, dom[fo])
			}
			merged[id] = true
			if !setEqual(merged, dom[id]) {
				dom[id] = merged
				changed = true
			}
		}
	}
	return dom
}

func isDominatedBy(dom map[NodeID]map[NodeID]bool, node, by NodeID) bool {
	return dom[node][by]
}

func cloneSet(s map[NodeID]bool) map[NodeID]bool {
	out := make(map[NodeID]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(dst map[NodeID]bool, other map[NodeID]bool) {
	for k := range dst {
		if !other[k] {
			delete(dst, k)
		}
	}
}

func setEqual(a, b map[NodeID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
