package testvector

import (
	"testing"

	"github.com/satpg-go/satpg/pkg/pbit"
)

func TestNewTestVectorStartsAllX(t *testing.T) {
	tv := NewTestVector(3, false)
	if got, want := tv.String(), "XXX"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if tv.Frame1 != nil {
		t.Fatal("expected a nil Frame1 for a combinational vector")
	}
}

func TestStringRendersAssignedLanes(t *testing.T) {
	tv := NewTestVector(3, false)
	tv.Frame0[0] = pbit.One()
	tv.Frame0[1] = pbit.Zero()
	if got, want := tv.String(), "10X"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestStringSeparatesBroadsideFrames(t *testing.T) {
	tv := NewTestVector(2, true)
	tv.Frame0[0] = pbit.One()
	tv.Frame1[1] = pbit.Zero()
	if got, want := tv.String(), "1X|X0"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestResetClearsAssignments(t *testing.T) {
	tv := NewTestVector(2, false)
	tv.Frame0[0] = pbit.One()
	tv.Reset()
	if got, want := tv.String(), "XX"; got != want {
		t.Fatalf("String() = %q, want %q after Reset", got, want)
	}
}

func TestMgrAllocReturnsCleanVector(t *testing.T) {
	m := NewMgr(2, false)
	tv := m.Alloc()
	tv.Frame0[0] = pbit.One()
	m.Free(tv)

	again := m.Alloc()
	if got, want := again.String(), "XX"; got != want {
		t.Fatalf("String() = %q, want %q after Alloc following Free", got, want)
	}
}

func TestDeckAddAndFull(t *testing.T) {
	d := NewDeck()
	for i := 0; i < pbit.Width; i++ {
		if d.Full() {
			t.Fatalf("deck reported full after only %d vectors", i)
		}
		d.Add(NewTestVector(1, false))
	}
	if !d.Full() {
		t.Fatal("expected deck to be full at pbit.Width vectors")
	}
}

func TestDeckAddPastCapacityPanics(t *testing.T) {
	d := NewDeck()
	for i := 0; i < pbit.Width; i++ {
		d.Add(NewTestVector(1, false))
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic adding past deck capacity")
		}
	}()
	d.Add(NewTestVector(1, false))
}

func TestDeckReset(t *testing.T) {
	d := NewDeck()
	d.Add(NewTestVector(1, false))
	d.Reset()
	if len(d.Vectors) != 0 {
		t.Fatalf("expected an empty deck after Reset, got %d vectors", len(d.Vectors))
	}
	if d.Full() {
		t.Fatal("a reset deck should not report full")
	}
}
