package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/internal/section"
)

// FinalizeRelocations sweeps every expression ctx accumulated a Target for
// during assembly and, for the ones still unresolved once the whole file
// has been scanned, converts them into section.Relocation records instead
// of leaving them as dangling pending expressions (§4.E "Relocations": an
// operand that never resolves locally produces a low-32-bit, high-32-bit,
// or whole-value relocation rather than a hard failure).
//
// Only a TargetData binding at Width32 is convertible here: that's the
// literal-operand slot an ".int"-style directive or a SOP2/SOP1/SOPC
// literal populates, and it matches RelocWhole exactly (a 32-bit patch of
// "symbol + addend"). A Width16 TargetData is a branch's SIMM16 slot;
// branch relocation across translation units isn't modeled by this
// encoder's single-literal-per-operand grammar (there is no disp32-style
// wide branch encoding to fall back to), so a branch left unresolved here
// is reported as an error instead of a relocation that could never be
// interpreted by anything downstream. Any expression whose shape
// PendingRelocation can't reduce to "one symbol + constant addend" is
// likewise reported, rather than silently dropped.
func FinalizeRelocations(ctx *Context) error {
	for _, e := range ctx.Pending {
		if !e.Unresolved() {
			continue
		}
		target := e.Target()
		data, ok := target.(expr.TargetData)
		if !ok {
			return asmerr.New(asmerr.Symbol, e.Pos(), "unresolved forward reference has no relocatable target")
		}
		sym, addend, ok := e.PendingRelocation()
		if !ok {
			return asmerr.New(asmerr.Symbol, e.Pos(), "expression at offset %d is too complex to relocate (need exactly one undefined symbol plus a constant addend)", data.Offset)
		}
		switch data.Width {
		case expr.Width32:
			ctx.Section.AddRelocation(section.Relocation{
				Offset: data.Offset,
				Type:   section.RelocWhole,
				Symbol: sym,
				Addend: addend,
			})
		case expr.Width16:
			return asmerr.New(asmerr.Symbol, e.Pos(), "undefined symbol %q used as a branch target at offset %d: branch relocation across translation units is not supported", sym, data.Offset)
		default:
			return asmerr.New(asmerr.Symbol, e.Pos(), "undefined symbol %q at offset %d has no relocatable width", sym, data.Offset)
		}
	}
	return nil
}
