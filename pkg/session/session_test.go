package session

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/internal/config"
	"github.com/satpg-go/satpg/pkg/dtpg"
	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/parse"
)

const bench = `
INPUT(a)
INPUT(b)
INPUT(c)
n1 = AND(a, b)
n2 = OR(n1, c)
n3 = NOT(n1)
OUTPUT(n2)
OUTPUT(n3)
`

func parsedNet(t *testing.T) *netlist.ParsedNetwork {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(bench))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return pn
}

func TestNewBuildsSessionFromDefaults(t *testing.T) {
	pn := parsedNet(t)
	sess, err := New(pn, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sess.Net == nil || sess.DB == nil {
		t.Fatal("expected a non-nil network and fault database")
	}
	if sess.ID.String() == "" {
		t.Fatal("expected a non-empty session ID")
	}
	if len(sess.DB.Representatives()) == 0 {
		t.Fatal("expected at least one representative fault")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	pn := parsedNet(t)
	cfg := config.DefaultConfig()
	cfg.Dtpg.Engine = "bogus"
	if _, err := New(pn, cfg, nil); err == nil {
		t.Fatal("expected an error from an invalid config")
	}
}

func TestCoverageStartsAtZero(t *testing.T) {
	pn := parsedNet(t)
	sess, err := New(pn, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := sess.Coverage(); got != 0 {
		t.Fatalf("expected zero coverage before any fault is resolved, got %v", got)
	}
}

func TestNewDtpgEngineDetectsFaults(t *testing.T) {
	pn := parsedNet(t)
	sess, err := New(pn, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng := sess.NewDtpgEngine()
	detected := 0
	for _, fid := range sess.DB.Representatives() {
		res := eng.RunFault(fid)
		if res.Outcome == dtpg.Detected {
			if res.Pattern == nil {
				t.Fatalf("fault %v: detected outcome with no pattern", fid)
			}
			detected++
		}
	}
	if detected == 0 {
		t.Fatal("expected at least one fault detected by DTPG over this circuit")
	}
}

func TestNewPlainRTPGGeneratesPatterns(t *testing.T) {
	pn := parsedNet(t)
	sess, err := New(pn, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.Config.Rtpg.PatternBudget = 200
	runner := sess.NewPlainRTPG(1)
	patterns := runner.Run()
	if len(patterns) == 0 {
		t.Fatal("expected at least one useful pattern over this small circuit")
	}
	if sess.Coverage() <= 0 {
		t.Fatal("expected some fault coverage after RTPG")
	}
}
