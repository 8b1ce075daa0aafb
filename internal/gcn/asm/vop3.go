package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- VOP3: vdst, src0, src1, src2 (three full 9-bit source fields, plus
// OMOD/NEG/CLAMP modifiers that VOP2's packed 8/9-bit fields have no room
// for) ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b110100 (ENCODING), bits25:17=OP, bit16=CLAMP,
// bits7:0=VDST. word1 bits8:0=SRC0, bits17:9=SRC1, bits26:18=SRC2,
// bits28:27=OMOD, bits31:29=NEG (one bit per source).
func encodeVOP3(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Vector9)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 4, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0, src1, src2 := ops[0], ops[1], ops[2], ops[3]
	if dst.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: destination must be a vgpr", def.Mnemonic)
	}
	word0 := uint32(0b110100)<<26 | def.Opcode<<17 | uint32(dst.Reg.Index&0xff)
	off := emitWord(ctx.Section, word0)
	word1 := uint32(src0.Field&0x1ff) | uint32(src1.Field&0x1ff)<<9 | uint32(src2.Field&0x1ff)<<18
	emitWord(ctx.Section, word1)
	// VOP3 operands are always full 9-bit register/inline-constant fields;
	// unlike VOP1/VOP2/VOPC a literal operand has no slot to fold into
	// (the 64-bit encoding is already full), so VOP3 simply rejects one.
	for _, o := range []Operand{src0, src1, src2} {
		if o.Kind == OpLiteral || o.Kind == OpExpr {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: literal/forward-reference source operands are not representable in VOP3's fixed 64-bit encoding", def.Mnemonic)
		}
	}
	return off, nil
}

// --- VOP3P: packed dual-f16 math -- same two-word shape as VOP3, minus the
// OMOD/NEG-per-source split (packed math instead carries per-half
// neg_hi/op_sel bits, collapsed here to the representative OP/operand
// fields only; see DESIGN.md's GCN coverage note). ---
func encodeVOP3P(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Vector9)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 3, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0, src1 := ops[0], ops[1], ops[2]
	if dst.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: destination must be a vgpr", def.Mnemonic)
	}
	word0 := uint32(0b110101)<<26 | def.Opcode<<17 | uint32(dst.Reg.Index&0xff)
	off := emitWord(ctx.Section, word0)
	word1 := uint32(src0.Field&0x1ff) | uint32(src1.Field&0x1ff)<<9
	emitWord(ctx.Section, word1)
	return off, nil
}
