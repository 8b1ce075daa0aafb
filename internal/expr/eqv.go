package expr

import "fmt"

// EqvTable owns every `.eqv` snapshot created in an assembly, keeping each
// one reference-counted and shared the way §4.C "Snapshots" requires:
// every Lookup of a name hands out the same frozen tree rather than
// re-freezing. A second `.eqv` of the same name freezes a new tree and
// drops the table's share of the old one.
type EqvTable struct {
	byName map[string]*Expression
	refs   map[*Expression]int
	serial int
}

// NewEqvTable creates an empty snapshot table.
func NewEqvTable() *EqvTable {
	return &EqvTable{byName: map[string]*Expression{}, refs: map[*Expression]int{}}
}

// Define freezes src as the `.eqv` snapshot bound to name. If name was
// already bound, the previous snapshot's reference count is dropped
// (released to zero deletes it from the table; outstanding holders keep
// their own pointer alive regardless).
func (t *EqvTable) Define(name string, src *Expression) *Expression {
	snap := src.Snapshot(func(base string, n int) string {
		t.serial++
		return fmt.Sprintf("%s$eqv%d.%d", base, t.serial, n)
	})
	if old, ok := t.byName[name]; ok {
		t.release(old)
	}
	t.byName[name] = snap
	t.refs[snap] = 1
	return snap
}

// Lookup returns the snapshot bound to name, incrementing its reference
// count (the caller now holds a share too).
func (t *EqvTable) Lookup(name string) (*Expression, bool) {
	snap, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	t.refs[snap]++
	return snap, true
}

// Release drops a share of a previously looked-up snapshot.
func (t *EqvTable) Release(snap *Expression) {
	t.release(snap)
}

func (t *EqvTable) release(snap *Expression) {
	t.refs[snap]--
	if t.refs[snap] <= 0 {
		delete(t.refs, snap)
		for name, s := range t.byName {
			if s == snap {
				delete(t.byName, name)
			}
		}
	}
}
