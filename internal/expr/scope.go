package expr

import (
	"sort"

	"github.com/samber/lo"
)

// Scope is a node in the lexical scope tree: one map each of symbols,
// register variables, and child scopes, plus an ordered "used scope" list
// for .using-style visibility (§3).
type Scope struct {
	Parent *Scope

	symbols map[string]*Symbol
	regvars map[string]*RegVar
	children map[string]*Scope

	used    []*Scope       // insertion order until a StopUsing moves the last entry into the freed slot
	usedIdx map[*Scope]int // reverse lookup so StopUsing is O(1)

	Temporary bool
	EnumCount int64
}

// NewScope creates a root or child scope. Pass a non-nil parent to make
// this a child scope (name resolution walks outward through Parent).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:  parent,
		symbols: make(map[string]*Symbol),
		regvars: make(map[string]*RegVar),
		children: make(map[string]*Scope),
		usedIdx: make(map[*Scope]int),
	}
}

// Child returns the named child scope, creating it on first access and
// marking it Temporary when temporary is set (the shape anonymous/inner
// blocks use). An existing child is returned unchanged.
func (s *Scope) Child(name string, temporary bool) *Scope {
	if c, ok := s.children[name]; ok {
		return c
	}
	c := NewScope(s)
	c.Temporary = temporary
	s.children[name] = c
	return c
}

// StartUsing adds used to this scope's used-scope list if not already
// present.
func (s *Scope) StartUsing(used *Scope) {
	if _, ok := s.usedIdx[used]; ok {
		return
	}
	s.usedIdx[used] = len(s.used)
	s.used = append(s.used, used)
}

// StopUsing removes used from this scope's used-scope list in O(1) via the
// reverse-lookup map, swapping the removed entry with the last one and
// fixing up the moved entry's recorded index.
func (s *Scope) StopUsing(used *Scope) {
	idx, ok := s.usedIdx[used]
	if !ok {
		return
	}
	last := len(s.used) - 1
	moved := s.used[last]
	s.used[idx] = moved
	s.used = s.used[:last]
	delete(s.usedIdx, used)
	if moved != used {
		s.usedIdx[moved] = idx
	}
}

// DefineSymbol fetches the named symbol in this scope, creating an
// undefined one if absent.
func (s *Scope) DefineSymbol(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, Section: UndefSection}
	s.symbols[name] = sym
	return sym
}

// DefineLabel fetches or creates the named symbol in this scope and marks
// it FlagOnceDefined: a label, whose value may be set at most once (§3).
// Distinct from DefineSymbol, which backs freely-redefinable .eqv-style
// constants. A label referenced before its defining line (a forward branch
// target) is first created by DefineSymbol; DefineLabel sets the flag
// regardless of which path created the symbol, so the once-only check
// applies from the point its defining line actually runs.
func (s *Scope) DefineLabel(name string) *Symbol {
	sym := s.DefineSymbol(name)
	sym.Flags |= FlagOnceDefined
	return sym
}

// Lookup resolves name per §4.C: current scope, then parent chain, then
// each used scope in the used list's order (recursively, since a used
// scope may itself have used scopes). That order is insertion order only
// while no StopUsing has run on this scope: StopUsing's swap-remove moves
// the last-added scope ahead of any added after the removed one.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	if sym, ok := s.lookupUsed(name, map[*Scope]bool{}); ok {
		return sym, true
	}
	return nil, false
}

func (s *Scope) lookupUsed(name string, seen map[*Scope]bool) (*Symbol, bool) {
	if seen[s] {
		return nil, false
	}
	seen[s] = true
	for _, used := range s.used {
		if sym, ok := used.symbols[name]; ok {
			return sym, true
		}
		if sym, ok := used.lookupUsed(name, seen); ok {
			return sym, true
		}
	}
	return nil, false
}

// DefineRegVar fetches or creates the named register variable in this
// scope only (register names are never inherited through used-scopes the
// way symbols are, per the ISA's flat register namespace).
func (s *Scope) DefineRegVar(name string, class RegVarClass, numRegs int) *RegVar {
	if rv, ok := s.regvars[name]; ok {
		return rv
	}
	rv := &RegVar{Name: name, Class: class, NumRegs: numRegs}
	s.regvars[name] = rv
	return rv
}

func (s *Scope) LookupRegVar(name string) (*RegVar, bool) {
	rv, ok := s.regvars[name]
	return rv, ok
}

// SymbolNames returns every symbol name directly owned by this scope, in a
// stable sorted order, for deterministic iteration (e.g. when serializing
// a symbol table) — grounded on ajroetker-goat's use of samber/lo for
// map-shaped registry iteration.
func (s *Scope) SymbolNames() []string {
	names := lo.Keys(s.symbols)
	sort.Strings(names)
	return names
}
