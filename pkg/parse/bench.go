// Package parse implements thin, non-authoritative netlist readers. These
// exist so the toolkit can load a circuit end to end; real BLIF/ISCAS-89
// parsing is out of scope and left to an external front end.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/satpg-go/satpg/pkg/netlist"
)

// Reader reads a netlist description into a ParsedNetwork.
type Reader interface {
	Read(r io.Reader) (*netlist.ParsedNetwork, error)
}

var (
	inputRegex  = regexp.MustCompile(`^INPUT\((\w+)\)$`)
	outputRegex = regexp.MustCompile(`^OUTPUT\((\w+)\)$`)
	dffRegex    = regexp.MustCompile(`^(\w+)\s*=\s*DFF\((\w+)\)$`)
	gateRegex   = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\((.+)\)$`)
	assignRegex = regexp.MustCompile(`^(\w+)\s*=\s*(.+)$`)
)

// BenchReader reads the BENCH family of netlist formats, generalized from
// the single-input-per-line subset to N-ary gates and DFF declarations for
// broadside pseudo-primary I/O.
type BenchReader struct {
	Name string
}

// Read implements Reader.
func (b *BenchReader) Read(r io.Reader) (*netlist.ParsedNetwork, error) {
	net := &netlist.ParsedNetwork{Name: b.Name}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := inputRegex.FindStringSubmatch(line); m != nil {
			net.PIs = append(net.PIs, netlist.ParsedPI{Name: m[1]})
			continue
		}

		if m := outputRegex.FindStringSubmatch(line); m != nil {
			net.POs = append(net.POs, netlist.ParsedPO{Name: m[1], Source: m[1]})
			continue
		}

		if m := dffRegex.FindStringSubmatch(line); m != nil {
			net.DFFs = append(net.DFFs, netlist.ParsedDFF{
				Name:   m[1],
				Output: m[1],
				Input:  m[2],
			})
			continue
		}

		if m := gateRegex.FindStringSubmatch(line); m != nil {
			typeName := strings.ToUpper(m[2])
			gt, err := parseGateType(typeName)
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", line, err)
			}

			var fanin []string
			for _, in := range strings.Split(m[3], ",") {
				fanin = append(fanin, strings.TrimSpace(in))
			}

			net.Gates = append(net.Gates, netlist.ParsedGate{
				Output: m[1],
				Fanin:  fanin,
				Type:   gt,
			})
			continue
		}

		// A generalized BENCH extension: an assignment whose right-hand
		// side is a boolean expression over AND(*)/OR(+)/XOR(^)/NOT(!)
		// rather than a named primitive gate call, e.g.
		// "y = (a*b)+(c*!d)". Tried last so a plain GATETYPE(args) call
		// above always takes the named-primitive path instead.
		if m := assignRegex.FindStringSubmatch(line); m != nil {
			expr, fanin, err := parseExpr(m[2])
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", line, err)
			}
			net.Gates = append(net.Gates, netlist.ParsedGate{
				Output: m[1],
				Fanin:  fanin,
				Type:   netlist.Complex,
				Expr:   expr,
			})
			continue
		}

		return nil, fmt.Errorf("unrecognized line: %q", line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	return net, nil
}

func parseGateType(s string) (netlist.GateType, error) {
	switch s {
	case "AND":
		return netlist.AND, nil
	case "NAND":
		return netlist.NAND, nil
	case "OR":
		return netlist.OR, nil
	case "NOR":
		return netlist.NOR, nil
	case "XOR":
		return netlist.XOR, nil
	case "XNOR":
		return netlist.XNOR, nil
	case "NOT", "INV":
		return netlist.NOT, nil
	case "BUF", "BUFF":
		return netlist.BUF, nil
	default:
		return netlist.BUF, fmt.Errorf("unsupported gate type %q", s)
	}
}

// exprParser is a small recursive-descent parser for the Complex-gate
// boolean expression extension: '+' (OR) and '^' (XOR) at the lowest
// precedence, '*' (AND) above that, '!' (NOT) prefix and parenthesization
// above that, with bare identifiers as leaves. Each distinct identifier is
// assigned a fanin index the first time it's seen, so repeated occurrences
// of the same net share one ParsedGate.Fanin slot per spec.md's
// "(original-input-index)" addressing.
type exprParser struct {
	s      string
	pos    int
	fanin  []string
	byName map[string]int
}

func parseExpr(s string) (*netlist.Expr, []string, error) {
	p := &exprParser{s: strings.TrimSpace(s), byName: make(map[string]int)}
	e, err := p.parseOr()
	if err != nil {
		return nil, nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, nil, fmt.Errorf("unexpected trailing input %q", p.s[p.pos:])
	}
	return e, p.fanin, nil
}

func (p *exprParser) varIndex(name string) int {
	if idx, ok := p.byName[name]; ok {
		return idx
	}
	idx := len(p.fanin)
	p.fanin = append(p.fanin, name)
	p.byName[name] = idx
	return idx
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) parseOr() (*netlist.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || (p.s[p.pos] != '+' && p.s[p.pos] != '^') {
			return left, nil
		}
		op := netlist.OpOr
		if p.s[p.pos] == '^' {
			op = netlist.OpXor
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &netlist.Expr{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseAnd() (*netlist.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != '*' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &netlist.Expr{Op: netlist.OpAnd, Left: left, Right: right}
	}
}

func (p *exprParser) parseFactor() (*netlist.Expr, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	if p.s[p.pos] == '!' {
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &netlist.Expr{Op: netlist.OpNot, Left: inner}, nil
	}
	if p.s[p.pos] == '(' {
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ')' {
			return nil, fmt.Errorf("missing closing paren in expression %q", p.s)
		}
		p.pos++
		return e, nil
	}
	start := p.pos
	for p.pos < len(p.s) && isIdentByte(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("expected identifier at %q", p.s[start:])
	}
	name := p.s[start:p.pos]
	return &netlist.Expr{Op: netlist.OpVar, FaninIdx: p.varIndex(name)}, nil
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Iscas89Reader reads standard ISCAS-89 .bench files. The grammar is the
// same family BenchReader handles; it is kept as a distinct type so a
// session can log which dialect produced a given network.
type Iscas89Reader struct {
	BenchReader
}
