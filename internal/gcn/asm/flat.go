package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- FLAT: unified flat/global/scratch address-space memory.
// flat_load_dword vdst, vaddr; flat_store_dword vaddr, vdata ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b110111 (ENCODING), bits25:18=OP. word1 bits7:0=
// ADDR, bits23:16=VDST (on loads) or bits15:8=DATA (on stores).
func encodeFLAT(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
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

	word0 := uint32(0b110111)<<26 | def.Opcode<<18
	off := emitWord(ctx.Section, word0)

	var word1 uint32
	if def.HasDst {
		// flat_load_*: reg0 is VDST, reg1 is ADDR.
		word1 = uint32(reg1.Index&0xff) | uint32(reg0.Index&0xff)<<16
	} else {
		// flat_store_*: reg0 is ADDR, reg1 is DATA.
		word1 = uint32(reg0.Index&0xff) | uint32(reg1.Index&0xff)<<8
	}
	emitWord(ctx.Section, word1)
	return off, nil
}
