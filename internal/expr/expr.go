package expr

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// Arg is the tagged leaf payload: either a still-unresolved symbol
// reference, or a (value, section) pair — a resolved symbol's value
// substituted in place keeps its section so section-difference evaluation
// still works after substitution (§9 "argument is a tagged variant").
type Arg struct {
	Sym     *Symbol
	Value   uint64
	Section SectionID
}

// Expression is an immutable-after-construction postfix operator tree
// bound to at most one Target. Ops, Args, and Positions are parallel
// arrays; Args/Positions entries are only meaningful at leaf indices and
// operator indices respectively (see Op.isLeaf).
type Expression struct {
	Ops       []Op
	Args      []Arg
	Positions []srcpos.Position

	target Target

	symOccurs    int // count of unresolved symbol leaves remaining (a repeated symbol counts once per leaf)
	relSymOccurs int // of those, how many are section-relative once resolved
}

// SetTarget attaches the destination that receives this expression's value
// once resolution succeeds (§4.C "Binding"). If the expression is already
// fully resolvable, it is evaluated and the target applied immediately.
func (e *Expression) SetTarget(t Target) {
	e.target = t
	if e.symOccurs == 0 {
		if res := e.Evaluate(true); res.Status == EvalSuccess {
			e.target.apply(res.Section, res.Value)
		}
	}
}

// Target returns the destination this expression was bound to via
// SetTarget, or nil if none was ever attached.
func (e *Expression) Target() Target { return e.target }

// Pos returns the source position a diagnostic about this expression as a
// whole should point at (its outermost operator's position).
func (e *Expression) Pos() srcpos.Position { return e.headPos() }

// Unresolved reports whether this expression still references at least one
// symbol without a value.
func (e *Expression) Unresolved() bool { return e.symOccurs > 0 }

// PendingRelocation reports whether e, assuming it never resolves further
// on its own, reduces to "symbol + addend": a reference to exactly one
// still-undefined symbol combined with constant arithmetic only. That shape
// is exactly what a relocation record can express (§4.E); anything wider —
// two undefined symbols, a symbol multiplied or shifted, a section
// difference that didn't cancel — returns ok=false so the caller reports an
// error instead of fabricating a relocation it can't represent.
func (e *Expression) PendingRelocation() (symbolName string, addend int64, ok bool) {
	if e.symOccurs != 1 {
		return "", 0, false
	}
	ops := append([]Op(nil), e.Ops...)
	args := append([]Arg(nil), e.Args...)
	found := false
	var name string
	for i, op := range ops {
		if op == OpSymbol && args[i].Sym != nil && !args[i].Sym.HasValue() {
			name = args[i].Sym.Name
			ops[i] = OpValue
			args[i] = Arg{Value: 0, Section: AbsSection}
			found = true
			break
		}
	}
	if !found {
		return "", 0, false
	}
	tmp := &Expression{Ops: ops, Args: args, Positions: e.Positions}
	res := tmp.Evaluate(true)
	if res.Status != EvalSuccess || res.Section != AbsSection {
		return "", 0, false
	}
	return name, int64(res.Value), true
}

// RegisterOccurrences walks the expression's leaves once, after
// construction, registering an Occurrence with every still-unresolved
// symbol it references and counting how many remain outstanding.
func (e *Expression) RegisterOccurrences() {
	e.symOccurs = 0
	for i, op := range e.Ops {
		if op != OpSymbol {
			continue
		}
		sym := e.Args[i].Sym
		if sym == nil || sym.HasValue() {
			continue
		}
		e.symOccurs++
		sym.addOccurrence(Occurrence{Expr: e, OpIndex: i, ArgIndex: i})
	}
}

// substituteSymbol is called by Symbol.Define for each of the symbol's
// occurrences. It rewrites the ARG_SYMBOL leaf at occ into an ARG_VALUE
// leaf and reports whether this expression has no remaining unresolved
// symbols (i.e. is now a candidate for full evaluation).
func (e *Expression) substituteSymbol(occ Occurrence, section SectionID, value uint64) bool {
	e.Ops[occ.OpIndex] = OpValue
	e.Args[occ.ArgIndex] = Arg{Value: value, Section: section}
	if section != AbsSection {
		e.relSymOccurs++
	}
	e.symOccurs--
	return e.symOccurs == 0
}

// boundSymbolTargets attempts full evaluation now that every symbol this
// expression referenced is resolved, applying the target on success and
// returning the symbols that target's apply defined (so the resolution
// queue can keep draining — §5's single work-queue discipline). Most
// targets define at most one symbol (TargetSymbol); TargetData/TargetCodeFlow
// define none.
func (e *Expression) boundSymbolTargets() []*Symbol {
	if e.target == nil {
		return nil
	}
	res := e.Evaluate(true)
	if res.Status != EvalSuccess {
		return nil
	}
	if ts, ok := e.target.(TargetSymbol); ok {
		// Same reasoning as TargetSymbol.apply: this path only ever defines
		// redefinable alias symbols, never FlagOnceDefined labels.
		newlyReady, _ := ts.Sym.Define(srcpos.Position{}, res.Section, res.Value)
		return append([]*Symbol{ts.Sym}, newlyReady...)
	}
	e.target.apply(res.Section, res.Value)
	return nil
}

// EvalStatus is the three-way outcome of Expression.Evaluate.
type EvalStatus int

const (
	EvalSuccess EvalStatus = iota
	EvalTryLater
	EvalFailed
)

// EvalResult is the return value of try_evaluate (§4.C).
type EvalResult struct {
	Status  EvalStatus
	Value   uint64
	Section SectionID
	Err     *asmerr.Diagnostic
}

// Evaluate performs a post-order traversal with an operand stack,
// computing the expression's value. "a - b" with a and b in the same
// section always reduces to a constant even before final layout
// (§"Section difference" in the Glossary), and section ± constant keeps
// its section. A section-relative operand that isn't cancelled that way
// fails whatever withSectionDiffs says; the flag only selects which
// diagnostic that failure carries.
func (e *Expression) Evaluate(withSectionDiffs bool) EvalResult {
	return e.evaluateRange(0, len(e.Ops), withSectionDiffs)
}

type stackVal struct {
	Value   uint64
	Section SectionID
}

func (e *Expression) evaluateRange(start, end int, withSectionDiffs bool) EvalResult {
	var stack []stackVal
	for i := start; i < end; i++ {
		op := e.Ops[i]
		pos := e.Positions[i]

		if op.isLeaf() {
			if op == OpSymbol {
				sym := e.Args[i].Sym
				if sym == nil || !sym.HasValue() {
					return EvalResult{Status: EvalTryLater}
				}
				stack = append(stack, stackVal{sym.Value, sym.Section})
				continue
			}
			stack = append(stack, stackVal{e.Args[i].Value, e.Args[i].Section})
			continue
		}

		n := op.arity()
		if len(stack) < n {
			return EvalResult{Status: EvalFailed, Err: asmerr.New(asmerr.Expression, pos, "malformed expression")}
		}
		operands := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]

		result, err := applyOp(op, operands, pos, withSectionDiffs)
		if err != nil {
			return EvalResult{Status: EvalFailed, Err: err}
		}
		stack = append(stack, result)
	}

	if len(stack) != 1 {
		return EvalResult{Status: EvalFailed, Err: asmerr.New(asmerr.Expression, e.headPos(), "malformed expression")}
	}
	return EvalResult{Status: EvalSuccess, Value: stack[0].Value, Section: stack[0].Section}
}

func (e *Expression) headPos() srcpos.Position {
	if len(e.Positions) == 0 {
		return srcpos.Position{}
	}
	return e.Positions[len(e.Positions)-1]
}

// applyOp evaluates a single non-leaf node given its popped operands.
func applyOp(op Op, operands []stackVal, pos srcpos.Position, withSectionDiffs bool) (stackVal, *asmerr.Diagnostic) {
	if op.arity() == 1 {
		a := operands[0]
		v, err := applyUnary(op, a.Value, pos)
		return stackVal{v, a.Section}, err
	}
	if op == OpChoose {
		cond, then, els := operands[0], operands[1], operands[2]
		if cond.Value != 0 {
			return then, nil
		}
		return els, nil
	}

	a, b := operands[0], operands[1]
	return applyBinary(op, a, b, pos, withSectionDiffs)
}

func applyUnary(op Op, v uint64, pos srcpos.Position) (uint64, *asmerr.Diagnostic) {
	switch op {
	case OpPos:
		return v, nil
	case OpNeg:
		return uint64(-int64(v)), nil
	case OpNot:
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	case OpBNot:
		return ^v, nil
	}
	return 0, asmerr.New(asmerr.Expression, pos, "unknown unary operator")
}

// applyBinary implements the documented signed/unsigned semantics for each
// binary operator, including section-relative reduction.
func applyBinary(op Op, a, b stackVal, pos srcpos.Position, withSectionDiffs bool) (stackVal, *asmerr.Diagnostic) {
	// Section-relative operands: only +/- combine with an absolute operand
	// (address arithmetic), and only - between two operands of the same
	// section reduces to a constant (a section difference).
	if a.Section != AbsSection || b.Section != AbsSection {
		switch {
		case op == OpSub && a.Section == b.Section:
			return stackVal{a.Value - b.Value, AbsSection}, nil
		case op == OpAdd && a.Section != AbsSection && b.Section == AbsSection:
			return stackVal{a.Value + b.Value, a.Section}, nil
		case op == OpAdd && a.Section == AbsSection && b.Section != AbsSection:
			return stackVal{a.Value + b.Value, b.Section}, nil
		case op == OpSub && a.Section != AbsSection && b.Section == AbsSection:
			return stackVal{a.Value - b.Value, a.Section}, nil
		case withSectionDiffs:
			// No linker pass is modeled in this core (§5: single
			// deterministic pass); a relative operand that survives to
			// here without cancelling cannot be resolved now.
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "cross-section arithmetic not permitted here")
		default:
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "type-mismatch: section-relative operand in constant context")
		}
	}

	x, y := a.Value, b.Value
	sx, sy := int64(x), int64(y)

	switch op {
	case OpAdd:
		return abs(x + y), nil
	case OpMul:
		return abs(x * y), nil
	case OpDivS:
		if y == 0 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "divide-by-zero")
		}
		return abs(uint64(sx / sy)), nil
	case OpDivU:
		if y == 0 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "divide-by-zero")
		}
		return abs(x / y), nil
	case OpModS:
		if y == 0 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "divide-by-zero")
		}
		return abs(uint64(sx % sy)), nil
	case OpModU:
		if y == 0 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "divide-by-zero")
		}
		return abs(x % y), nil
	case OpAnd:
		return abs(x & y), nil
	case OpOr:
		return abs(x | y), nil
	case OpXor:
		return abs(x ^ y), nil
	case OpOrNot:
		return abs(x | ^y), nil
	case OpShl:
		if y >= 64 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "shift-count-out-of-range")
		}
		return abs(x << y), nil
	case OpShrL:
		if y >= 64 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "shift-count-out-of-range")
		}
		return abs(x >> y), nil
	case OpShrA:
		if y >= 64 {
			return stackVal{}, asmerr.New(asmerr.Expression, pos, "shift-count-out-of-range")
		}
		return abs(uint64(sx >> y)), nil
	case OpLt:
		return boolVal(sx < sy), nil
	case OpLe:
		return boolVal(sx <= sy), nil
	case OpGt:
		return boolVal(sx > sy), nil
	case OpGe:
		return boolVal(sx >= sy), nil
	case OpBelow:
		return boolVal(x < y), nil
	case OpBelowEq:
		return boolVal(x <= y), nil
	case OpAbove:
		return boolVal(x > y), nil
	case OpAboveEq:
		return boolVal(x >= y), nil
	case OpEq:
		return boolVal(x == y), nil
	case OpNe:
		return boolVal(x != y), nil
	case OpLAnd:
		return boolVal(x != 0 && y != 0), nil
	case OpLOr:
		return boolVal(x != 0 || y != 0), nil
	}
	return stackVal{}, asmerr.New(asmerr.Expression, pos, "unknown binary operator")
}

func abs(v uint64) stackVal    { return stackVal{v, AbsSection} }
func boolVal(b bool) stackVal {
	if b {
		return stackVal{1, AbsSection}
	}
	return stackVal{0, AbsSection}
}

// Snapshot returns a deep clone of e in which every symbol reference is
// replaced by a fresh detached symbol pre-loaded with
// that symbol's *current* value (or left unresolved if the source symbol
// has none yet) — the mechanism behind `.eqv` (§4.C "Snapshots"). Further
// redefinition of any symbol e referenced does not alter the snapshot.
func (e *Expression) Snapshot(name func(base string, n int) string) *Expression {
	clone := &Expression{
		Ops:       append([]Op(nil), e.Ops...),
		Args:      append([]Arg(nil), e.Args...),
		Positions: append([]srcpos.Position(nil), e.Positions...),
	}
	seen := map[*Symbol]*Symbol{}
	for i, op := range clone.Ops {
		if op != OpSymbol {
			continue
		}
		orig := clone.Args[i].Sym
		if orig == nil {
			continue
		}
		frozen, ok := seen[orig]
		if !ok {
			frozen = &Symbol{Name: name(orig.Name, len(seen)), Flags: FlagDetached | FlagSnapshot}
			if orig.HasValue() {
				frozen.Section = orig.Section
				frozen.Value = orig.Value
				frozen.Flags |= FlagHasValue
			}
			seen[orig] = frozen
		}
		clone.Args[i].Sym = frozen
	}
	clone.RegisterOccurrences()
	return clone
}
