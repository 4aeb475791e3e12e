// Package dop implements the post-DTPG DetectOp/UntestOp callback pipeline:
// Base, Drop, TvList, Verify, Dummy, composable via List in registration
// order. Grounded on the teacher's Fan.FindTest fixed pipeline
// (implication -> frontier update -> decision loop composed as one
// sequential call chain in pkg/algorithm/fan.go), generalized here into
// first-class objects implementing a narrow DetectOp/UntestOp interface so
// a session can wire whichever combination it needs instead of a single
// hardcoded sequence.
package dop

import (
	"fmt"

	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/testvector"
)

// DetectOp is invoked once a fault has been found detected by pattern tv.
type DetectOp interface {
	OnDetect(fid fault.FaultID, tv *testvector.TestVector)
}

// UntestOp is invoked once a fault has been proven untestable.
type UntestOp interface {
	OnUntest(fid fault.FaultID)
}

// DetectOpFunc adapts a plain function to DetectOp.
type DetectOpFunc func(fid fault.FaultID, tv *testvector.TestVector)

func (f DetectOpFunc) OnDetect(fid fault.FaultID, tv *testvector.TestVector) { f(fid, tv) }

// UntestOpFunc adapts a plain function to UntestOp.
type UntestOpFunc func(fid fault.FaultID)

func (f UntestOpFunc) OnUntest(fid fault.FaultID) { f(fid) }

// Base marks a fault's status in the shared fault.DB: Detected or
// Untestable. Grounded directly on spec.md 4.5's "Base: mark fault status
// as detected (or untestable)".
type Base struct {
	DB *fault.DB
}

func (b *Base) OnDetect(fid fault.FaultID, _ *testvector.TestVector) {
	b.DB.Faults[fid].Status = fault.Detected
}

func (b *Base) OnUntest(fid fault.FaultID) {
	b.DB.Faults[fid].Status = fault.Untestable
}

// Drop runs SPPFP against every still-undetected fault once fid is
// detected by tv, marking every other fault the same pattern also excites
// as detected and skipped from further DTPG. Grounded on spec.md 4.5's
// "Drop" step.
type Drop struct {
	DB  *fault.DB
	Sim *fsim.Simulator
}

func (d *Drop) OnDetect(fid fault.FaultID, tv *testvector.TestVector) {
	candidates := d.DB.Representatives()
	also := d.Sim.SPPFP(tv, candidates)
	for _, other := range also {
		if other == fid {
			continue
		}
		d.DB.Faults[other].Status = fault.Detected
		d.DB.SetSkip(other)
	}
}

func (d *Drop) OnUntest(fault.FaultID) {}

// TvList appends every detecting pattern to an accumulated test-vector
// list, the eventual output deck. Grounded on spec.md 4.5's "TvList".
type TvList struct {
	Patterns []*testvector.TestVector
}

func (l *TvList) OnDetect(_ fault.FaultID, tv *testvector.TestVector) {
	l.Patterns = append(l.Patterns, tv)
}

func (l *TvList) OnUntest(fault.FaultID) {}

// Verify re-runs SPSFP to assert a DTPG-produced pattern truly detects its
// target fault, panicking on mismatch since this is a debug-only internal
// consistency check, never a user-facing error path. Grounded on spec.md
// 4.5's "Verify... assert the fault is indeed detected by the pattern
// (debug)".
type Verify struct {
	Sim *fsim.Simulator
}

func (v *Verify) OnDetect(fid fault.FaultID, tv *testvector.TestVector) {
	if !v.Sim.SPSFP(tv, fid) {
		panic(fmt.Sprintf("dop: Verify failed — pattern does not detect fault %d", fid))
	}
}

func (v *Verify) OnUntest(fault.FaultID) {}

// Dummy is a no-op DetectOp/UntestOp, grounded on spec.md 4.5's "Dummy".
type Dummy struct{}

func (Dummy) OnDetect(fault.FaultID, *testvector.TestVector) {}
func (Dummy) OnUntest(fault.FaultID)                         {}

// List composes several DetectOp/UntestOp implementations, invoked in
// registration order, so a session wires exactly the combination it needs
// (e.g. Base+Drop+TvList for production runs, Base+Verify for tests).
type List struct {
	ops []interface {
		DetectOp
		UntestOp
	}
}

// listAdapter lets a List accept a DetectOp-only or UntestOp-only value by
// filling in the missing half with Dummy's no-op behavior.
type listAdapter struct {
	d DetectOp
	u UntestOp
}

func (a listAdapter) OnDetect(fid fault.FaultID, tv *testvector.TestVector) {
	if a.d != nil {
		a.d.OnDetect(fid, tv)
	}
}

func (a listAdapter) OnUntest(fid fault.FaultID) {
	if a.u != nil {
		a.u.OnUntest(fid)
	}
}

// NewList builds a List from op values implementing DetectOp, UntestOp, or
// both.
func NewList(ops ...any) *List {
	l := &List{}
	for _, op := range ops {
		var a listAdapter
		if d, ok := op.(DetectOp); ok {
			a.d = d
		}
		if u, ok := op.(UntestOp); ok {
			a.u = u
		}
		l.ops = append(l.ops, a)
	}
	return l
}

func (l *List) OnDetect(fid fault.FaultID, tv *testvector.TestVector) {
	for _, op := range l.ops {
		op.OnDetect(fid, tv)
	}
}

func (l *List) OnUntest(fid fault.FaultID) {
	for _, op := range l.ops {
		op.OnUntest(fid)
	}
}

var (
	_ DetectOp = (*Base)(nil)
	_ UntestOp = (*Base)(nil)
	_ DetectOp = (*Drop)(nil)
	_ UntestOp = (*Drop)(nil)
	_ DetectOp = (*TvList)(nil)
	_ UntestOp = (*TvList)(nil)
	_ DetectOp = (*Verify)(nil)
	_ UntestOp = (*Verify)(nil)
	_ DetectOp = Dummy{}
	_ UntestOp = Dummy{}
)
