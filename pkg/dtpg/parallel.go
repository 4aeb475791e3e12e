package dtpg

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/satpg-go/satpg/pkg/backtrace"
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// RunAllParallel is RunAll's concurrent sibling: it partitions faultIDs by
// scope root (the FFR or MFFC each fault's CNF would be built over) and
// solves distinct roots on distinct goroutines, each with its own Engine
// instance (own scope-solver cache, own fsim.Simulator), matching spec.md
// 5's rule that no two goroutines ever share one SimNode graph — per the
// domain stack's "per-FFR/per-MFFC parallel solve" entry. Faults sharing
// one root always run on the same goroutine, in their original relative
// order, so one Engine's scope-solver cache is still reused across a
// group exactly as RunFault intends. Results are returned in faultIDs'
// original order.
func (e *Engine) RunAllParallel(faultIDs []fault.FaultID) []Result {
	if len(faultIDs) == 0 {
		return nil
	}

	groups := make(map[tpg.NodeID][]int) // scope root -> indices into faultIDs
	order := make([]tpg.NodeID, 0)
	for i, fid := range faultIDs {
		f := &e.DB.Faults[fid]
		root := e.scopeRoot(f)
		if e.Scope == ScopeSingle {
			// Single scope never shares a solver, so every fault is its
			// own group; using the fault's own site as the key keeps
			// groups singleton-sized without a special case below.
			root = f.Site.Node
		}
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	results := make([]Result, len(faultIDs))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(order) {
		workers = len(order)
	}
	if workers < 1 {
		workers = 1
	}

	var btStrategy backtrace.Strategy
	var btFrames int
	if e.BT != nil {
		btStrategy, btFrames = e.BT.Strategy, e.BT.Frames
	}

	jobs := make(chan tpg.NodeID)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var bt *backtrace.BackTracer
			if e.BT != nil {
				// Each worker gets its own BackTracer instance with e.BT's
				// strategy and frame count. A BackTracer keeps no state
				// between Justify calls (the per-node memoization map lives
				// inside one call), so the copy only keeps workers fully
				// independent; the per-worker Simulator below is what keeps
				// them from sharing mutable state.
				bt = backtrace.New(e.Net, btStrategy, btFrames)
			}
			worker := &Engine{
				Net:          e.Net,
				DB:           e.DB,
				Sim:          fsim.New(e.Net, e.DB),
				BT:           bt,
				Scope:        e.Scope,
				Timeout:      e.Timeout,
				scopeSolvers: make(map[tpg.NodeID]*scopeSolver),
			}
			for root := range jobs {
				for _, idx := range groups[root] {
					results[idx] = worker.RunFault(faultIDs[idx])
				}
			}
			return nil
		})
	}
	for _, root := range order {
		jobs <- root
	}
	close(jobs)
	_ = g.Wait()

	return results
}
