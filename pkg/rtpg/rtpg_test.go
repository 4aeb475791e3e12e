package rtpg

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/parse"
	"github.com/satpg-go/satpg/pkg/tpg"
)

const bench = `
INPUT(a)
INPUT(b)
INPUT(c)
n1 = AND(a, b)
n2 = OR(n1, c)
OUTPUT(n2)
`

func buildAll(t *testing.T) (*tpg.Network, *fault.DB, *fsim.Simulator) {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(bench))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	net, err := tpg.ElaborateFrom(pn)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	db := fault.ExtractAll(net)
	return net, db, fsim.New(net, db)
}

func TestSamplerRandomVectorIsFullySpecified(t *testing.T) {
	s := NewSampler(1)
	tv := s.RandomVector(5)
	for i, p := range tv.Frame0 {
		if p.V0 == p.V1 {
			t.Errorf("lane %d is X or invalid, want a fully-specified bit", i)
		}
	}
}

func TestSamplerIsDeterministicForSeed(t *testing.T) {
	a := NewSampler(42).RandomVector(8)
	b := NewSampler(42).RandomVector(8)
	for i := range a.Frame0 {
		if a.Frame0[i] != b.Frame0[i] {
			t.Fatalf("same seed produced different vectors at lane %d", i)
		}
	}
}

func TestPlainRunCoversAllFaults(t *testing.T) {
	net, db, sim := buildAll(t)
	p := NewPlain(net, db, sim, 7, Config{PatternBudget: 1000, MinF: 0, MaxI: 50})

	patterns := p.Run()
	if len(patterns) == 0 {
		t.Fatalf("expected at least one detecting pattern")
	}
	if !p.allCovered() {
		t.Errorf("expected every representative fault covered, some remain undetected")
	}
}

func TestPlainRunRespectsPatternBudget(t *testing.T) {
	net, db, sim := buildAll(t)
	p := NewPlain(net, db, sim, 3, Config{PatternBudget: 1, MinF: 100, MaxI: 1})

	patterns := p.Run()
	// With a budget of 1 and an impossibly high MinF, the run must stop
	// having spent at most the one pattern it was allowed.
	if len(patterns) > 1 {
		t.Fatalf("expected at most 1 pattern under a budget of 1, got %d", len(patterns))
	}
	reps := db.Representatives()
	detected := 0
	for _, fid := range reps {
		if db.Skip(fid) {
			detected++
		}
	}
	if detected > len(reps) {
		t.Fatalf("impossible: detected more than total representative faults")
	}
}

func TestWSARejectsOverLimitCandidates(t *testing.T) {
	net, db, sim := buildAll(t)
	w := NewWSA(net, db, sim, 5, WSAConfig{
		Config: Config{PatternBudget: 200, MinF: 0, MaxI: 50},
		Limit:  0.0001,
		P2:     false,
	})

	patterns := w.Run()
	// A near-zero limit makes evaluate() reject almost everything; the
	// run must still terminate (via the pattern budget or Run's proposal
	// cap, since MinF 0 never counts a round as unproductive) rather than
	// loop forever.
	_ = patterns
}

func TestWSAP2MetropolisCoversFaults(t *testing.T) {
	net, db, sim := buildAll(t)
	w := NewWSA(net, db, sim, 11, WSAConfig{
		Config: Config{PatternBudget: 2000, MinF: 0, MaxI: 200},
		Limit:  1000,
		P2:     true,
	})

	_ = w.Run()
	if !w.allCovered() {
		t.Errorf("expected P2 walk with a generous limit to cover every fault")
	}
}

func TestGeometricFlipCountBounded(t *testing.T) {
	s := NewSampler(9)
	for i := 0; i < 20; i++ {
		c := s.geometricFlipCount(10)
		if c < 0 || c > 10 {
			t.Fatalf("flip count %d out of [0,10]", c)
		}
	}
}
