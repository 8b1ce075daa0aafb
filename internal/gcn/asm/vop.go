package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- VOP1: vdst, src0 ---
//
// Layout: bits31:25 = 0b0111111 (ENCODING), bits24:17 = VDST, bits16:9 = OP,
// bits8:0 = SRC0. Standard across the GCN manuals; not independently
// fixture-verified the way SOP2/SOPK/SOPP/VOP2 are (see DESIGN.md's GCN
// coverage note).
func encodeVOP1(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Vector9)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 2, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0 := ops[0], ops[1]
	if dst.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: destination must be a vgpr", def.Mnemonic)
	}
	if ctx.modifier != modNone {
		ctrl, err := applyModifier(ctx.Pos, ctx.modifier, &src0)
		if err != nil {
			return 0, err
		}
		word := uint32(0b0111111)<<25 | uint32(dst.Reg.Index&0xff)<<17 | def.Opcode<<9 | uint32(src0.Field&0x1ff)
		off := emitWord(ctx.Section, word)
		emitWord(ctx.Section, ctrl)
		return off, nil
	}
	word := uint32(0b0111111)<<25 | uint32(dst.Reg.Index&0xff)<<17 | def.Opcode<<9 | uint32(src0.Field&0x1ff)
	off := emitWord(ctx.Section, word)
	return off, emitTrailingLiteral(ctx, off, src0)
}

// --- VOP2: vdst, src0, vsrc1 (v_cndmask_b32 additionally reads vcc, which
// is implicit and not separately encoded) ---
//
// Layout verified against §8 E5: bit31=0, bits30:25=OP, bits24:17=VDST,
// bits16:9=VSRC1 (plain vgpr index, not the SRC0 field convention), bits8:0
// =SRC0.
func encodeVOP2(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Vector9)
	if err != nil {
		return 0, err
	}
	// v_cndmask_b32 vdst, src0, vsrc1, vcc: the trailing vcc is always
	// implicit on pre-VOP3 encodings and carries no bits of its own.
	n := def.NumOperands
	if n == 4 && len(ops) == 4 {
		ops = ops[:3]
	}
	if err := needOperands(ctx, 3, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0, vsrc1 := ops[0], ops[1], ops[2]
	if dst.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: destination must be a vgpr", def.Mnemonic)
	}
	if vsrc1.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: third operand must be a vgpr", def.Mnemonic)
	}
	if ctx.modifier != modNone {
		ctrl, err := applyModifier(ctx.Pos, ctx.modifier, &src0)
		if err != nil {
			return 0, err
		}
		word := def.Opcode<<25 | uint32(dst.Reg.Index&0xff)<<17 | uint32(vsrc1.Reg.Index&0xff)<<9 | uint32(src0.Field&0x1ff)
		off := emitWord(ctx.Section, word)
		emitWord(ctx.Section, ctrl)
		return off, nil
	}
	word := def.Opcode<<25 | uint32(dst.Reg.Index&0xff)<<17 | uint32(vsrc1.Reg.Index&0xff)<<9 | uint32(src0.Field&0x1ff)
	off := emitWord(ctx.Section, word)
	return off, emitTrailingLiteral(ctx, off, src0)
}

// --- VOPC: src0, vsrc1 (result always implicit vcc) ---
//
// Layout: bits31:25 = 0b0111110, bits24:17 = OP, bits16:9 = VSRC1, bits8:0
// = SRC0.
func encodeVOPC(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Vector9)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 2, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	src0, vsrc1 := ops[0], ops[1]
	if vsrc1.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: second operand must be a vgpr", def.Mnemonic)
	}
	if ctx.modifier != modNone {
		ctrl, err := applyModifier(ctx.Pos, ctx.modifier, &src0)
		if err != nil {
			return 0, err
		}
		word := uint32(0b0111110)<<25 | def.Opcode<<17 | uint32(vsrc1.Reg.Index&0xff)<<9 | uint32(src0.Field&0x1ff)
		off := emitWord(ctx.Section, word)
		emitWord(ctx.Section, ctrl)
		return off, nil
	}
	word := uint32(0b0111110)<<25 | def.Opcode<<17 | uint32(vsrc1.Reg.Index&0xff)<<9 | uint32(src0.Field&0x1ff)
	off := emitWord(ctx.Section, word)
	return off, emitTrailingLiteral(ctx, off, src0)
}
