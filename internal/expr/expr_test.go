package expr

import (
	"fmt"
	"testing"

	"github.com/clrx-go/clrx/pkg/srcpos"
)

func parseExpr(t *testing.T, src string, scope *Scope) *Expression {
	t.Helper()
	e, err := NewParser(src, scope, "test").Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return e
}

func TestForwardReferenceChain(t *testing.T) {
	// sym_a = sym_b + 4; sym_b = 7  (spec §8 E1)
	scope := NewScope(nil)
	res := NewResolver()

	a := scope.DefineSymbol("sym_a")
	ea := parseExpr(t, "sym_b + 4", scope)
	ea.SetTarget(TargetSymbol{Sym: a})

	b := scope.DefineSymbol("sym_b")
	res.Define(b, srcpos.Position{}, AbsSection, 7)

	if !a.HasValue() || a.Value != 11 {
		t.Fatalf("sym_a = %#x, want 0xb", a.Value)
	}
}

func TestDeepForwardReferenceChain(t *testing.T) {
	scope := NewScope(nil)
	res := NewResolver()

	const depth = 32
	for i := 0; i < depth; i++ {
		name := fmt.Sprintf("s%d", i)
		sym := scope.DefineSymbol(name)
		var src string
		if i == depth-1 {
			src = "1"
		} else {
			src = fmt.Sprintf("s%d + 1", i+1)
		}
		e := parseExpr(t, src, scope)
		e.SetTarget(TargetSymbol{Sym: sym})
	}
	last := scope.DefineSymbol(fmt.Sprintf("s%d", depth-1))
	res.Define(last, srcpos.Position{}, AbsSection, 1)

	s0, _ := scope.Lookup("s0")
	if !s0.HasValue() || s0.Value != uint64(depth) {
		t.Fatalf("s0 = %d, want %d", s0.Value, depth)
	}
}

func TestEqvSnapshotSurvivesRedefinition(t *testing.T) {
	scope := NewScope(nil)
	eqv := NewEqvTable()
	res := NewResolver()

	x := scope.DefineSymbol("x")
	res.Define(x, srcpos.Position{}, AbsSection, 5)

	src := parseExpr(t, "x * 2", scope)
	snap := eqv.Define("frozen", src)

	// The snapshot captured x's value (5) when it was defined.
	result := snap.Evaluate(true)
	if result.Status != EvalSuccess || result.Value != 10 {
		t.Fatalf("snapshot = %+v, want value 10", result)
	}

	// Mutating the original symbol's value directly (simulating what a
	// redefinition would try to do) must not affect the frozen snapshot,
	// since Snapshot cloned a detached symbol pre-loaded with x's value.
	x.Value = 999
	result2 := snap.Evaluate(true)
	if result2.Value != 10 {
		t.Fatalf("snapshot mutated after source redefinition: got %d", result2.Value)
	}
}

func TestDivideByZeroPositionAtOperator(t *testing.T) {
	scope := NewScope(nil)
	e := parseExpr(t, "1 + 2 / 0", scope)
	res := e.Evaluate(true)
	if res.Status != EvalFailed {
		t.Fatalf("expected failure, got %+v", res)
	}
	if res.Err.Pos.Column != 7 {
		t.Errorf("divide-by-zero position column = %d, want 7 (the '/' operator)", res.Err.Pos.Column)
	}
}

func TestSectionDifference(t *testing.T) {
	scope := NewScope(nil)
	start := scope.DefineSymbol("start")
	end := scope.DefineSymbol("end")
	res := NewResolver()
	res.Define(start, srcpos.Position{}, SectionID(1), 0x100)
	res.Define(end, srcpos.Position{}, SectionID(1), 0x10a)

	e := parseExpr(t, "end - start", scope)
	result := e.Evaluate(true)
	if result.Status != EvalSuccess || result.Section != AbsSection || result.Value != 0xa {
		t.Fatalf("section difference = %+v, want Abs 0xa", result)
	}
}

func TestUnsignedVsSignedComparison(t *testing.T) {
	scope := NewScope(nil)
	e := parseExpr(t, "(0-1) below 2", scope) // -1 as uint64 is huge; "below" is unsigned
	res := e.Evaluate(true)
	if res.Status != EvalSuccess || res.Value != 0 {
		t.Fatalf("unsigned below = %+v, want 0 (false)", res)
	}

	e2 := parseExpr(t, "(0-1) < 2", scope) // signed '<': -1 < 2 is true
	res2 := e2.Evaluate(true)
	if res2.Status != EvalSuccess || res2.Value != 1 {
		t.Fatalf("signed < = %+v, want 1 (true)", res2)
	}
}

func TestTernary(t *testing.T) {
	scope := NewScope(nil)
	e := parseExpr(t, "1 ? 10 : 20", scope)
	res := e.Evaluate(true)
	if res.Value != 10 {
		t.Fatalf("ternary = %+v, want 10", res)
	}
}

func TestScopeUsedLookupOrder(t *testing.T) {
	root := NewScope(nil)
	lib := NewScope(nil)
	sym := lib.DefineSymbol("helper")
	root.StartUsing(lib)

	got, ok := root.Lookup("helper")
	if !ok || got != sym {
		t.Fatalf("expected to find helper via used scope")
	}

	root.StopUsing(lib)
	if _, ok := root.Lookup("helper"); ok {
		t.Fatalf("expected helper to be invisible after StopUsing")
	}
}
