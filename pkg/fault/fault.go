// Package fault implements the stuck-at fault database: extraction from a
// TpgNetwork, equivalence-class folding, and the skip bitmap fault
// simulation and DTPG consult before touching a fault.
package fault

import (
	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// FaultID is a dense index into DB.Faults.
type FaultID int

// Site identifies where on a node a stuck-at fault is injected: the node's
// own output, or one of its fanin pins.
type Site struct {
	Node    tpg.NodeID
	IsInput bool
	InPin   int // valid when IsInput
}

// Status is the detection outcome recorded against a fault.
type Status int

const (
	Undetected Status = iota
	Detected
	Untestable
	Aborted // DTPG gave up (timeout/undetermined) without a verdict
)

func (s Status) String() string {
	switch s {
	case Detected:
		return "detected"
	case Untestable:
		return "untestable"
	case Aborted:
		return "aborted"
	default:
		return "undetected"
	}
}

// Fault is one stuck-at fault: a site plus the stuck value, folded into an
// equivalence class represented by Representative.
type Fault struct {
	ID             FaultID
	Site           Site
	StuckValue     bool
	Representative FaultID
	Status         Status
	DetectingIdx   int // pattern index within the detecting vector's word, -1 if none
}

// IsRepresentative reports whether this fault stands for its equivalence
// class (every class has exactly one representative, itself included).
func (f *Fault) IsRepresentative() bool { return f.Representative == f.ID }

// DB holds every fault extracted from a network plus per-fault simulation
// bookkeeping: a skip bitmap (bits-and-blooms/bitset, as named in the
// domain stack) and per-representative-class membership sets
// (deckarep/golang-set/v2).
type DB struct {
	Net    *tpg.Network
	Faults []Fault

	skip    *bitset.BitSet
	classes map[FaultID]mapset.Set[FaultID]
}

// ExtractAll builds the full stuck-at-0/1 fault list for every node's
// output and input pins, then folds equivalence classes. Grounded on the
// teacher's one-fault-at-a-time Circuit.InjectFault model, generalized to
// build the whole table up front the way a real ATPG fault manager does.
func ExtractAll(net *tpg.Network) *DB {
	db := &DB{Net: net, classes: make(map[FaultID]mapset.Set[FaultID])}

	add := func(site Site, stuck bool) FaultID {
		id := FaultID(len(db.Faults))
		db.Faults = append(db.Faults, Fault{
			ID:             id,
			Site:           site,
			StuckValue:     stuck,
			Representative: id,
			DetectingIdx:   -1,
		})
		return id
	}

	for i := range net.Nodes {
		n := &net.Nodes[i]
		if n.Kind == tpg.KindPO || n.Kind == tpg.KindPPO {
			// Wrapper nodes only forward a value; they carry no
			// independent fault site.
			continue
		}
		add(Site{Node: n.ID}, false)
		add(Site{Node: n.ID}, true)
		for pin := range n.Fanin {
			add(Site{Node: n.ID, IsInput: true, InPin: pin}, false)
			add(Site{Node: n.ID, IsInput: true, InPin: pin}, true)
		}
	}

	db.skip = bitset.New(uint(len(db.Faults)))
	foldEquivalences(db, net)
	return db
}

// foldEquivalences applies the standard single-fanout and controlling-input
// folding rules: a single-input gate's output fault folds onto its sole
// input-pin fault at the same stuck value (the opposite one when the gate
// inverts); a driver with exactly one
// fanout folds its output fault onto that fanout's input-pin fault
// regardless of the consumer's gate type or controlling value (the wire
// between them is the only way the driver's output is ever observed); and
// AND/NAND/OR/NOR input stuck-at-controlling-value faults fold onto the
// gate's own output fault.
func foldEquivalences(db *DB, net *tpg.Network) {
	byNodeStuck := make(map[tpg.NodeID][2]FaultID)
	for _, f := range db.Faults {
		if f.Site.IsInput {
			continue
		}
		v := byNodeStuck[f.Site.Node]
		if f.StuckValue {
			v[1] = f.ID
		} else {
			v[0] = f.ID
		}
		byNodeStuck[f.Site.Node] = v
	}

	fold := func(child FaultID, parent FaultID) {
		db.Faults[child].Representative = db.Faults[parent].Representative
	}

	for i := range db.Faults {
		f := &db.Faults[i]
		if !f.Site.IsInput {
			continue
		}
		node := net.Node(f.Site.Node)
		if len(node.Fanin) == 1 {
			// Single-input gate: the gate's own output fault at the same
			// stuck value, or at the opposite one when the gate inverts
			// (NOT/NAND/NOR single-input forms invert), is equivalent to
			// this input fault and folds onto it. When the driver feeds
			// nothing else, this input fault in turn folds onto the
			// driver's output fault at the same stuck value (one net).
			inverts := node.Gate == netlist.NOT || node.Gate == netlist.NAND || node.Gate == netlist.NOR
			own := byNodeStuck[node.ID]
			if f.StuckValue != inverts {
				fold(own[1], f.ID)
			} else {
				fold(own[0], f.ID)
			}
			driver := node.Fanin[0]
			if len(net.Node(driver).Fanout) == 1 {
				pair := byNodeStuck[driver]
				if f.StuckValue {
					fold(f.ID, pair[1])
				} else {
					fold(f.ID, pair[0])
				}
			}
			continue
		}

		// Single-fanout-driver fold: this input pin's driver feeds no
		// other consumer, so the wire carrying this pin's value is the
		// same wire the driver's own output fault is defined on. No
		// inversion applies here (unlike the single-input-gate case
		// above) since this is the identity of one net, not composition
		// through a gate function; this holds regardless of whether the
		// stuck value is this gate's controlling value.
		driver := node.Fanin[f.Site.InPin]
		if len(net.Node(driver).Fanout) == 1 {
			pair := byNodeStuck[driver]
			var parent FaultID
			if f.StuckValue {
				parent = pair[1]
			} else {
				parent = pair[0]
			}
			fold(f.ID, parent)
			continue
		}

		controlling, ok := controllingValue(node.Gate)
		if ok && f.StuckValue == controlling {
			pair := byNodeStuck[node.ID]
			var parent FaultID
			if outputValueForControlling(node.Gate) {
				parent = pair[1]
			} else {
				parent = pair[0]
			}
			fold(f.ID, parent)
		}
	}

	for i := range db.Faults {
		cur := FaultID(i)
		for db.Faults[cur].Representative != cur {
			cur = db.Faults[cur].Representative
		}
		db.Faults[i].Representative = cur
	}

	for i, f := range db.Faults {
		rep := f.Representative
		set, ok := db.classes[rep]
		if !ok {
			set = mapset.NewSet[FaultID]()
			db.classes[rep] = set
		}
		set.Add(FaultID(i))
	}
}

// controllingValue returns the controlling input value for an AND/NAND/OR/
// NOR gate, matching the teacher's Gate.GetControllingValue.
func controllingValue(g netlist.GateType) (bool, bool) {
	switch g {
	case netlist.AND, netlist.NAND:
		return false, true
	case netlist.OR, netlist.NOR:
		return true, true
	default:
		return false, false
	}
}

// outputValueForControlling returns the output value an AND/NAND/OR/NOR
// gate takes on when driven by its controlling input value.
func outputValueForControlling(g netlist.GateType) bool {
	switch g {
	case netlist.AND, netlist.OR:
		return g == netlist.OR
	case netlist.NAND, netlist.NOR:
		return g == netlist.NAND
	default:
		return false
	}
}

// EquivalenceClass returns every fault folded into id's representative's
// class, including id itself.
func (db *DB) EquivalenceClass(id FaultID) []FaultID {
	f := &db.Faults[id]
	set := db.classes[f.Representative]
	return set.ToSlice()
}

// Skip reports whether a fault is currently excluded from simulation/DTPG.
func (db *DB) Skip(id FaultID) bool { return db.skip.Test(uint(id)) }

// SetSkip excludes a fault.
func (db *DB) SetSkip(id FaultID) { db.skip.Set(uint(id)) }

// ClearSkip re-includes a fault.
func (db *DB) ClearSkip(id FaultID) { db.skip.Clear(uint(id)) }

// SetSkipAll excludes every fault, e.g. before marking a detected subset
// active for a single simulation pass.
func (db *DB) SetSkipAll() {
	for i := range db.Faults {
		db.skip.Set(uint(i))
	}
}

// ClearSkipAll re-includes every fault.
func (db *DB) ClearSkipAll() {
	db.skip.ClearAll()
}

// Representatives returns every fault ID that is its own class
// representative, the set DTPG and fault simulation actually iterate over.
func (db *DB) Representatives() []FaultID {
	var out []FaultID
	for _, f := range db.Faults {
		if f.IsRepresentative() {
			out = append(out, f.ID)
		}
	}
	return out
}
