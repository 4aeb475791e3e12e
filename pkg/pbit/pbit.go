// Package pbit implements packed bit-parallel word and three-valued pair
// arithmetic shared by the fault simulator and CNF encoder.
package pbit

import "math/bits"

// Width is the number of patterns packed into a single Word.
const Width = 64

// Word holds one bit per packed pattern.
type Word uint64

// All1 is a word with every pattern bit set.
const All1 Word = ^Word(0)

// PopCount returns the number of set bits, i.e. the number of patterns for
// which the word's bit is 1.
func (w Word) PopCount() int {
	return bits.OnesCount64(uint64(w))
}

func (w Word) And(o Word) Word { return w & o }
func (w Word) Or(o Word) Word  { return w | o }
func (w Word) Xor(o Word) Word { return w ^ o }
func (w Word) Not() Word       { return ^w }

// Pair is the three-valued (v0, v1) encoding from the data model: a pattern
// is logic 0 when (v0=1,v1=0), logic 1 when (v0=0,v1=1), and unknown (X)
// when (v0=1,v1=1). (v0=0,v1=0) never occurs, since every production path
// constructs pairs through the constructors below; nothing checks for it
// at run time.
type Pair struct {
	V0 Word
	V1 Word
}

// Zero returns a pair with every pattern at logic 0.
func Zero() Pair { return Pair{V0: All1, V1: 0} }

// One returns a pair with every pattern at logic 1.
func One() Pair { return Pair{V0: 0, V1: All1} }

// X returns a pair with every pattern unknown.
func X() Pair { return Pair{V0: All1, V1: All1} }

// FromBool broadcasts a single boolean value to every packed pattern.
func FromBool(v bool) Pair {
	if v {
		return One()
	}
	return Zero()
}

// And implements De Morgan's rule bit-parallel over packed patterns.
func (p Pair) And(o Pair) Pair {
	return Pair{
		V0: p.V0.Or(o.V0),
		V1: p.V1.And(o.V1),
	}
}

// Or implements De Morgan's rule bit-parallel over packed patterns.
func (p Pair) Or(o Pair) Pair {
	return Pair{
		V0: p.V0.And(o.V0),
		V1: p.V1.Or(o.V1),
	}
}

// Not swaps the v0/v1 planes.
func (p Pair) Not() Pair {
	return Pair{V0: p.V1, V1: p.V0}
}

// Xor computes the packed XOR truth table directly, since De Morgan's rule
// does not apply to XOR the way it does to AND/OR.
func (p Pair) Xor(o Pair) Pair {
	v1 := p.V0.And(o.V1).Or(p.V1.And(o.V0))
	v0 := p.V0.And(o.V0).Or(p.V1.And(o.V1))
	return Pair{V0: v0, V1: v1}
}

// Nand, Nor, Xnor are derived from the primitive ops the same way the
// teacher's per-gate evaluators derive NAND/NOR/XNOR from AND/OR/XOR.
func (p Pair) Nand(o Pair) Pair { return p.And(o).Not() }
func (p Pair) Nor(o Pair) Pair  { return p.Or(o).Not() }
func (p Pair) Xnor(o Pair) Pair { return p.Xor(o).Not() }

// Mask returns the pair restricted to the pattern lanes set in m, leaving
// the rest X. Used when only a subset of a word's 64 lanes are live.
func (p Pair) Mask(m Word) Pair {
	return Pair{
		V0: p.V0.Or(m.Not()),
		V1: p.V1.Or(m.Not()),
	}
}

// IsX reports, per lane, whether the pattern's value is unknown.
func (p Pair) IsX() Word {
	return p.V0.And(p.V1)
}

// AssignedLane reports whether lane i holds a defined (non-X) value.
func (p Pair) AssignedLane(i int) bool {
	return (p.IsX()>>uint(i))&1 == 0
}

// LaneBool returns the boolean value of lane i, assuming the lane is
// assigned (callers check AssignedLane first where X matters).
func (p Pair) LaneBool(i int) bool {
	return (p.V1>>uint(i))&1 == 1
}
