package simnode

import (
	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/pbit"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// EvalGood computes a node's good-circuit value from its fanins' good
// values, table-dispatched on GateType per spec's "a match on tag dispatches
// the per-gate evaluator" guidance (generalizing the teacher's gate.go
// per-type evaluateAND/evaluateOR/... switch to packed pbit.Pair values).
func (g *Graph) EvalGood(id tpg.NodeID) pbit.Pair {
	n := &g.Nodes[id]
	ins := make([]pbit.Pair, len(n.Fanin))
	for i, f := range n.Fanin {
		ins[i] = g.Nodes[f].GVal
	}
	return evaluate(n, ins)
}

// EvalFaulty computes a node's faulty-circuit value the same way, reading
// each fanin's FVal instead of GVal.
func (g *Graph) EvalFaulty(id tpg.NodeID) pbit.Pair {
	n := &g.Nodes[id]
	ins := make([]pbit.Pair, len(n.Fanin))
	for i, f := range n.Fanin {
		ins[i] = g.Nodes[f].FVal
	}
	return evaluate(n, ins)
}

// EvaluateWithFanin evaluates n's gate function against an explicit input
// slice rather than reading n.Fanin's current values, so a caller can probe
// "what if one fanin pin held a different value" without mutating the
// graph first (used when injecting an input-pin stuck-at fault).
func EvaluateWithFanin(n *SimNode, ins []pbit.Pair) pbit.Pair {
	return evaluate(n, ins)
}

func evaluate(n *SimNode, ins []pbit.Pair) pbit.Pair {
	switch n.Gate {
	case netlist.AND:
		return reduce(ins, pbit.Pair.And, pbit.One())
	case netlist.NAND:
		return reduce(ins, pbit.Pair.And, pbit.One()).Not()
	case netlist.OR:
		return reduce(ins, pbit.Pair.Or, pbit.Zero())
	case netlist.NOR:
		return reduce(ins, pbit.Pair.Or, pbit.Zero()).Not()
	case netlist.XOR:
		return reduce(ins, pbit.Pair.Xor, pbit.Zero())
	case netlist.XNOR:
		return reduce(ins, pbit.Pair.Xor, pbit.Zero()).Not()
	case netlist.NOT:
		if len(ins) == 0 {
			return pbit.X()
		}
		return ins[0].Not()
	case netlist.BUF:
		if len(ins) == 0 {
			return pbit.X()
		}
		return ins[0]
	default:
		return pbit.X()
	}
}

func reduce(ins []pbit.Pair, op func(pbit.Pair, pbit.Pair) pbit.Pair, identity pbit.Pair) pbit.Pair {
	if len(ins) == 0 {
		return pbit.X()
	}
	acc := ins[0]
	for _, p := range ins[1:] {
		acc = op(acc, p)
	}
	return acc
}
