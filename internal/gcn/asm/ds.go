package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- DS: LDS/GDS local memory. ds_read_b32 vdst, vaddr [offset:N];
// ds_write_b32 vaddr, vdata [offset:N] ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b110110 (ENCODING), bits25:17=OP, bit16=GDS,
// bits15:8=OFFSET1, bits7:0=OFFSET0 (OFFSET1:OFFSET0 concatenate into one
// 16-bit byte offset). word1 bits7:0=ADDR, bits15:8=DATA0, bits31:24=VDST.
func encodeDS(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 2 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected 2 operands", def.Mnemonic)
	}
	reg0, _, ok := ParseRegister(raw[0])
	if !ok || reg0.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed vgpr operand %q", def.Mnemonic, raw[0])
	}
	reg1, _, ok := ParseRegister(raw[1])
	if !ok || reg1.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed vgpr operand %q", def.Mnemonic, raw[1])
	}
	offset := uint32(0)
	if len(raw) > 2 {
		v, err := parseOffsetModifier(raw[2])
		if err != nil {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%v", err)
		}
		offset = v
	}

	word0 := uint32(0b110110)<<26 | def.Opcode<<17 | (offset & 0xffff)
	off := emitWord(ctx.Section, word0)

	var word1 uint32
	if def.HasDst {
		// ds_read_*: reg0 is VDST, reg1 is ADDR.
		word1 = uint32(reg1.Index&0xff) | uint32(reg0.Index&0xff)<<24
	} else {
		// ds_write_*: reg0 is ADDR, reg1 is DATA0.
		word1 = uint32(reg0.Index&0xff) | uint32(reg1.Index&0xff)<<8
	}
	emitWord(ctx.Section, word1)
	return off, nil
}
