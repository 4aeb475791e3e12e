package fault

import (
	"strings"
	"testing"

	"github.com/satpg-go/satpg/pkg/parse"
	"github.com/satpg-go/satpg/pkg/tpg"
)

const bufBench = `
INPUT(a)
INPUT(b)
n1 = AND(a, b)
n2 = NOT(n1)
OUTPUT(n2)
`

func buildNet(t *testing.T) *tpg.Network {
	t.Helper()
	r := &parse.BenchReader{Name: "t"}
	pn, err := r.Read(strings.NewReader(bufBench))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	net, err := tpg.ElaborateFrom(pn)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	return net
}

func TestExtractAllCountsOutputAndInputFaults(t *testing.T) {
	net := buildNet(t)
	db := ExtractAll(net)

	if len(db.Faults) == 0 {
		t.Fatalf("expected a non-empty fault list")
	}
	for _, f := range db.Faults {
		if f.Site.Node == net.PIs[0] && !f.Site.IsInput {
			// PI output faults must exist.
			return
		}
	}
	t.Errorf("expected at least one PI output fault")
}

func TestSingleInputInversionFolding(t *testing.T) {
	net := buildNet(t)
	db := ExtractAll(net)

	n1ID, _ := net.NodeByName("n1")
	n2ID, _ := net.NodeByName("n2") // NOT(n1), single fanin

	var n2InputSA0, n2OutputSA1, n1OutputSA0 FaultID
	found := 0
	for _, f := range db.Faults {
		if f.Site.Node == n2ID && f.Site.IsInput && !f.StuckValue {
			n2InputSA0 = f.ID
			found++
		}
		if f.Site.Node == n2ID && !f.Site.IsInput && f.StuckValue {
			n2OutputSA1 = f.ID
			found++
		}
		if f.Site.Node == n1ID && !f.Site.IsInput && !f.StuckValue {
			n1OutputSA0 = f.ID
			found++
		}
	}
	if found != 3 {
		t.Fatalf("expected to locate all three faults, found %d", found)
	}

	if db.Faults[n2OutputSA1].Representative != db.Faults[n2InputSA0].Representative {
		t.Errorf("expected NOT-gate output stuck-at-1 to fold onto its input stuck-at-0")
	}
	if db.Faults[n2InputSA0].Representative != db.Faults[n1OutputSA0].Representative {
		t.Errorf("expected NOT-gate input stuck-at-0 to fold onto single-fanout driver output stuck-at-0")
	}
}

// a has a single fanout into n1's first input pin, and n1 is a two-input
// AND, so a's output faults must fold onto n1's input(a) faults at the
// same stuck value regardless of AND's controlling value (0).
func TestSingleFanoutDriverFoldsOntoMultiInputConsumerPin(t *testing.T) {
	net := buildNet(t)
	db := ExtractAll(net)

	aID, _ := net.NodeByName("a")
	n1ID, _ := net.NodeByName("n1")

	var aOutSA0, aOutSA1, n1InASA0, n1InASA1 FaultID
	found := 0
	for _, f := range db.Faults {
		switch {
		case f.Site.Node == aID && !f.Site.IsInput && !f.StuckValue:
			aOutSA0, found = f.ID, found+1
		case f.Site.Node == aID && !f.Site.IsInput && f.StuckValue:
			aOutSA1, found = f.ID, found+1
		case f.Site.Node == n1ID && f.Site.IsInput && f.Site.InPin == 0 && !f.StuckValue:
			n1InASA0, found = f.ID, found+1
		case f.Site.Node == n1ID && f.Site.IsInput && f.Site.InPin == 0 && f.StuckValue:
			n1InASA1, found = f.ID, found+1
		}
	}
	if found != 4 {
		t.Fatalf("expected to locate all four faults, found %d", found)
	}

	if db.Faults[aOutSA0].Representative != db.Faults[n1InASA0].Representative {
		t.Errorf("expected a-output-sa0 to fold onto n1-input(a)-sa0 (controlling value)")
	}
	if db.Faults[aOutSA1].Representative != db.Faults[n1InASA1].Representative {
		t.Errorf("expected a-output-sa1 to fold onto n1-input(a)-sa1 (non-controlling value)")
	}
}

func TestSkipBitmap(t *testing.T) {
	net := buildNet(t)
	db := ExtractAll(net)

	id := FaultID(0)
	if db.Skip(id) {
		t.Fatalf("expected fault to start unskipped")
	}
	db.SetSkip(id)
	if !db.Skip(id) {
		t.Errorf("expected fault to be skipped after SetSkip")
	}
	db.ClearSkip(id)
	if db.Skip(id) {
		t.Errorf("expected fault to be unskipped after ClearSkip")
	}

	db.SetSkipAll()
	for _, f := range db.Faults {
		if !db.Skip(f.ID) {
			t.Fatalf("expected every fault skipped after SetSkipAll")
		}
	}
	db.ClearSkipAll()
	for _, f := range db.Faults {
		if db.Skip(f.ID) {
			t.Fatalf("expected every fault unskipped after ClearSkipAll")
		}
	}
}

func TestRepresentativesExcludeFoldedFaults(t *testing.T) {
	net := buildNet(t)
	db := ExtractAll(net)

	reps := db.Representatives()
	if len(reps) == 0 || len(reps) >= len(db.Faults) {
		t.Fatalf("expected folding to reduce representative count below total faults")
	}
}
