// Package testvector implements TestVector storage and the pooled manager
// that allocates and recycles them, following the teacher's slice-reuse
// idiom for buffers that are reset in place rather than reallocated.
package testvector

import (
	"sync"

	"github.com/satpg-go/satpg/pkg/pbit"
)

// TestVector holds one assignment per PI/PPI ordinal for a single test
// pattern. Frame1 is populated only for broadside (two-frame) sequential
// patterns; it is nil for purely combinational vectors.
type TestVector struct {
	Frame0 []pbit.Pair
	Frame1 []pbit.Pair
}

// NewTestVector allocates a vector sized for n primary/pseudo-primary
// inputs, initialized to X (unassigned) in every lane.
func NewTestVector(n int, twoFrame bool) *TestVector {
	tv := &TestVector{Frame0: make([]pbit.Pair, n)}
	for i := range tv.Frame0 {
		tv.Frame0[i] = pbit.X()
	}
	if twoFrame {
		tv.Frame1 = make([]pbit.Pair, n)
		for i := range tv.Frame1 {
			tv.Frame1[i] = pbit.X()
		}
	}
	return tv
}

// Reset clears every assignment back to X so the vector can be reused from
// the pool without reallocating its backing slices.
func (tv *TestVector) Reset() {
	for i := range tv.Frame0 {
		tv.Frame0[i] = pbit.X()
	}
	for i := range tv.Frame1 {
		tv.Frame1[i] = pbit.X()
	}
}

// Mgr pools TestVectors of a fixed input width, mirroring the teacher's
// reset-in-place buffers (Frontier.DFrontier/JFrontier) scaled up to a
// sync.Pool since vectors here are shared across goroutines.
type Mgr struct {
	width    int
	twoFrame bool
	pool     sync.Pool
}

// NewMgr creates a Mgr for networks with width PI/PPI ordinals.
func NewMgr(width int, twoFrame bool) *Mgr {
	m := &Mgr{width: width, twoFrame: twoFrame}
	m.pool.New = func() any {
		return NewTestVector(width, twoFrame)
	}
	return m
}

// Alloc returns a vector from the pool, reset to all-X.
func (m *Mgr) Alloc() *TestVector {
	tv := m.pool.Get().(*TestVector)
	tv.Reset()
	return tv
}

// Free returns a vector to the pool for reuse.
func (m *Mgr) Free(tv *TestVector) {
	m.pool.Put(tv)
}

// Deck is a fixed-capacity collection of test vectors sized to the packed
// word width, the unit PPSFP simulates in one bit-parallel pass.
type Deck struct {
	Vectors []*TestVector
}

// NewDeck creates an empty deck with room for up to pbit.Width vectors.
func NewDeck() *Deck {
	return &Deck{Vectors: make([]*TestVector, 0, pbit.Width)}
}

// Add appends a vector to the deck. It panics if the deck is already full,
// since a full deck must be flushed through PPSFP before more patterns can
// be added — a programming-error invariant, not a recoverable condition.
func (d *Deck) Add(tv *TestVector) {
	if len(d.Vectors) >= pbit.Width {
		panic("testvector: deck is full, flush before adding more vectors")
	}
	d.Vectors = append(d.Vectors, tv)
}

// Full reports whether the deck has reached packed-word capacity.
func (d *Deck) Full() bool { return len(d.Vectors) >= pbit.Width }

// Reset empties the deck without releasing its backing array.
func (d *Deck) Reset() { d.Vectors = d.Vectors[:0] }

// String renders lane 0 of a vector as one character per PI/PPI ordinal
// ('0'/'1'/'X'), per spec.md 6's pattern output encoding, frame-separated
// by "|" for broadside vectors.
func (tv *TestVector) String() string {
	buf := make([]byte, 0, len(tv.Frame0)+len(tv.Frame1)+1)
	buf = appendFrame(buf, tv.Frame0)
	if tv.Frame1 != nil {
		buf = append(buf, '|')
		buf = appendFrame(buf, tv.Frame1)
	}
	return string(buf)
}

func appendFrame(buf []byte, frame []pbit.Pair) []byte {
	for _, p := range frame {
		switch {
		case !p.AssignedLane(0):
			buf = append(buf, 'X')
		case p.LaneBool(0):
			buf = append(buf, '1')
		default:
			buf = append(buf, '0')
		}
	}
	return buf
}
