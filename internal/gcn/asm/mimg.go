package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- MIMG: image/texture memory. image_sample vdata, vaddr, srsrc, ssamp ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b111100 (ENCODING), bits25:18=OP, bits15:12=DMASK
// (fixed to 0xf, full RGBA, for this representative path). word1 bits7:0=
// VADDR, bits15:8=VDATA, bits20:16=SRSRC (SGPR-quad index, physical/4),
// bits25:21=SSAMP (SGPR-quad index, physical/4; absent on image_load-style
// ops with no sampler).
func encodeMIMG(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 3 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected at least vdata, vaddr, srsrc", def.Mnemonic)
	}
	vdata, _, ok := ParseRegister(raw[0])
	if !ok || vdata.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: vdata must be a vgpr", def.Mnemonic)
	}
	vaddr, _, ok := ParseRegister(raw[1])
	if !ok || vaddr.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: vaddr must be a vgpr", def.Mnemonic)
	}
	srsrc, _, ok := ParseRegister(raw[2])
	if !ok || srsrc.Class != isa.ClassScalar {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: srsrc must be an sgpr", def.Mnemonic)
	}
	var ssamp isa.RegRef
	if len(raw) > 3 {
		ssamp, _, ok = ParseRegister(raw[3])
		if !ok || ssamp.Class != isa.ClassScalar {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: ssamp must be an sgpr", def.Mnemonic)
		}
	}

	word0 := uint32(0b111100)<<26 | def.Opcode<<18 | uint32(0xf)<<12
	off := emitWord(ctx.Section, word0)
	word1 := uint32(vaddr.Index&0xff) | uint32(vdata.Index&0xff)<<8 |
		uint32((srsrc.Index/4)&0x1f)<<16 | uint32((ssamp.Index/4)&0x1f)<<21
	emitWord(ctx.Section, word1)
	return off, nil
}
