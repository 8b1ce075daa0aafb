package expr

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// SectionID identifies the section a symbol's value lives in. Two
// sentinels stand in for the non-section cases the Data Model names.
type SectionID int32

const (
	// AbsSection marks an absolute (section-independent) value.
	AbsSection SectionID = -1
	// UndefSection marks a symbol with no section yet (unresolved).
	UndefSection SectionID = -2
)

// SymFlags is a bitmask of the per-symbol flags named in the Data Model.
type SymFlags uint16

const (
	FlagHasValue SymFlags = 1 << iota
	FlagOnceDefined
	FlagBase
	FlagSnapshot
	FlagRegRange
	FlagDetached
	FlagHasUnevalSub
)

// Occurrence records one place an expression references a symbol, so that
// resolving the symbol can patch every referent in O(references) instead
// of rescanning every live expression.
type Occurrence struct {
	Expr     *Expression
	OpIndex  int // index into Expr.Ops/Expr.Positions of the ARG_SYMBOL op
	ArgIndex int // index into Expr.Args holding the symbol reference
}

// Symbol is an interned named value: a label, an .eqv snapshot alias, a
// register-range name, or a plain constant.
type Symbol struct {
	Name    string
	Section SectionID
	Value   uint64
	Size    uint64
	Info    byte
	Other   byte
	Flags   SymFlags

	// Expr holds the symbol's defining expression while unresolved; nil
	// once HasValue is set (the expression, and its node arrays, are
	// dropped to let the arena reclaim them, unless FlagBase keeps a
	// second owner alive elsewhere).
	Expr *Expression

	Occurrences []Occurrence
	refCount    int

	DefinedAt srcpos.Position
}

// HasValue reports whether the symbol already carries a resolved value.
func (s *Symbol) HasValue() bool { return s.Flags&FlagHasValue != 0 }

// AddRef increments the symbol's use count; see Release.
func (s *Symbol) AddRef() { s.refCount++ }

// Release decrements the symbol's use count. A detached, still-undefined
// symbol whose count reaches zero is eligible for collection by the owning
// Scope (per §3: "reaching zero releases detached undefined symbols").
func (s *Symbol) Release() bool {
	s.refCount--
	return s.refCount <= 0 && s.Flags&FlagDetached != 0 && !s.HasValue()
}

// addOccurrence appends an occurrence and bumps the reference count, the
// two always happening together per the Data Model.
func (s *Symbol) addOccurrence(o Occurrence) {
	s.Occurrences = append(s.Occurrences, o)
	s.AddRef()
}

// Define gives the symbol a resolved value and section, then walks its
// occurrence list substituting the literal into every referencing
// expression (§4.C "Occurrences"). It returns the set of symbols that
// became fully resolved as a side effect (every remaining sub-expression
// in Args lost its last outstanding symbol), which the caller's resolution
// queue should process next — this is the "single work queue" discipline
// required by §5.
//
// Redefining a FlagOnceDefined symbol (a label) is an error (§3, §7's
// "redefinition of once-defined symbol"); the symbol keeps its original
// value and the caller gets a Symbol-kind diagnostic instead of a silent
// no-op.
func (s *Symbol) Define(pos srcpos.Position, section SectionID, value uint64) ([]*Symbol, error) {
	if s.Flags&FlagOnceDefined != 0 && s.HasValue() {
		return nil, asmerr.New(asmerr.Symbol, pos, "redefinition of once-defined symbol %q (first defined at %s)", s.Name, s.DefinedAt)
	}
	s.Section = section
	s.Value = value
	s.Flags |= FlagHasValue
	s.DefinedAt = pos
	s.Expr = nil

	var newlyReady []*Symbol
	occs := s.Occurrences
	s.Occurrences = nil
	for _, occ := range occs {
		if occ.Expr.substituteSymbol(occ, section, value) {
			newlyReady = append(newlyReady, occ.Expr.boundSymbolTargets()...)
		}
	}
	return newlyReady, nil
}

// RegVar is a logical register of a given register class and width.
type RegVarClass int

const (
	RegScalar RegVarClass = iota
	RegVector
	RegOther
)

type RegVar struct {
	Name     string
	Class    RegVarClass
	NumRegs  int
	Detached bool
}

// VRegKey names a single register within a RegVar's array, the unit
// instruction operand parsers hand to usage-tracking handlers.
type VRegKey struct {
	Var   *RegVar
	Index int
}
