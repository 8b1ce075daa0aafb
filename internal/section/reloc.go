package section

import "github.com/clrx-go/clrx/internal/expr"

// RelocType is the three-way relocation kind named by the Data Model.
type RelocType int

const (
	RelocLow32 RelocType = iota
	RelocHigh32
	RelocWhole
)

// Relocation is an unresolved reference recorded against a section offset,
// per the Data Model. Symbol is nil when TargetSection is used instead
// (a relocation against a whole section rather than a named symbol, as
// Gallium's SCRATCH_RSRC_DWORD0/1 relocations require — see
// internal/galliumbin).
type Relocation struct {
	Offset        int
	Type          RelocType
	Symbol        string
	TargetSection expr.SectionID
	Addend        int64
}

// Table collects relocations for a section in increasing-offset order
// (§5 "Relocation records for a section appear in increasing offset
// order").
type Table struct {
	entries []Relocation
}

// Add records a relocation. Callers are expected to emit relocations in
// source order already (the encoder never revisits earlier offsets), so
// Add simply appends rather than re-sorting.
func (t *Table) Add(r Relocation) {
	t.entries = append(t.entries, r)
}

// Entries returns the recorded relocations in offset order.
func (t *Table) Entries() []Relocation {
	return t.entries
}
