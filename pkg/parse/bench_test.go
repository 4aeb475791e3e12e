package parse

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/netlist"
)

func TestBenchReaderParsesNamedGates(t *testing.T) {
	r := &BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(`
INPUT(a)
INPUT(b)
n1 = AND(a, b)
OUTPUT(n1)
`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pn.Gates) != 1 || pn.Gates[0].Type != netlist.AND {
		t.Fatalf("expected one AND gate, got %+v", pn.Gates)
	}
}

func TestBenchReaderParsesComplexExpression(t *testing.T) {
	r := &BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(`
INPUT(a)
INPUT(b)
INPUT(c)
y = (a*b)+(c*!a)
OUTPUT(y)
`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pn.Gates) != 1 {
		t.Fatalf("expected one gate, got %d", len(pn.Gates))
	}
	g := pn.Gates[0]
	if g.Type != netlist.Complex {
		t.Fatalf("expected a Complex gate, got %v", g.Type)
	}
	if got, want := g.Fanin, []string{"a", "b", "c"}; !equalStrings(got, want) {
		t.Fatalf("expected fanin order %v, got %v", want, got)
	}
	if g.Expr == nil || g.Expr.Op != netlist.OpOr {
		t.Fatalf("expected top-level OR, got %+v", g.Expr)
	}
}

func TestBenchReaderRejectsUnbalancedExpression(t *testing.T) {
	r := &BenchReader{Name: "t"}
	_, err := r.Read(strings.NewReader(`
INPUT(a)
INPUT(b)
y = (a*b
OUTPUT(y)
`))
	if err == nil {
		t.Fatalf("expected an error for an unbalanced expression")
	}
}

func TestParseExprBuildsLeftAssociativeXorChain(t *testing.T) {
	e, fanin, err := parseExpr("a^b^c")
	if err != nil {
		t.Fatalf("parseExpr: %v", err)
	}
	if got, want := fanin, []string{"a", "b", "c"}; !equalStrings(got, want) {
		t.Fatalf("expected fanin order %v, got %v", want, got)
	}
	if e.Op != netlist.OpXor {
		t.Fatalf("expected top-level XOR, got %v", e.Op)
	}
	if e.Left == nil || e.Left.Op != netlist.OpXor {
		t.Fatalf("expected a left-associative chain: top-level's Left should itself be an XOR, got %+v", e.Left)
	}
	if e.Right == nil || e.Right.Op != netlist.OpVar || e.Right.FaninIdx != 2 {
		t.Fatalf("expected top-level's Right to be the final literal c, got %+v", e.Right)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
