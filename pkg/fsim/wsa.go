package fsim

import "github.com/satpg-go/satpg/pkg/pbit"

// WSA computes Weighted Switching Activity for a broadside two-frame
// pattern: summed over every node, the number of pattern lanes whose
// defined good value toggled between frame 0 and frame 1, weighted by the
// node's fanout count (a node with no fanout adds nothing; a vector
// broadcast to all lanes counts each toggle once per lane). Per the
// resolved Open Question on
// frame-boundary accounting, this is a single pass over two already-
// simulated frame snapshots, not a per-cycle accumulation.
func (s *Simulator) WSA(frame0, frame1 []pbit.Pair) int {
	s.assignAndSimulateGood(frame0)
	snap := make([]pbit.Pair, len(s.Graph.Nodes))
	for i := range s.Graph.Nodes {
		snap[i] = s.Graph.Nodes[i].GVal
	}

	s.assignAndSimulateGood(frame1)

	total := 0
	for i := range s.Graph.Nodes {
		toggled := snap[i].V1.Xor(s.Graph.Nodes[i].GVal.V1) &^ snap[i].IsX() &^ s.Graph.Nodes[i].GVal.IsX()
		fanout := len(s.Graph.Nodes[i].Fanout)
		total += toggled.PopCount() * fanout
	}
	return total
}
