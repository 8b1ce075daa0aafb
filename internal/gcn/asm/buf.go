package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// --- MUBUF: untyped buffer memory. buffer_load_dword vdata, vaddr, srsrc,
// soffset [offset:N] ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b111000 (ENCODING), bits25:16=OP, bits11:0=OFFSET.
// word1 bits7:0=VADDR, bits15:8=VDATA, bits20:16=SRSRC (SGPR-quad index,
// physical/4), bits31:24=SOFFSET.
func encodeMUBUF(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 4 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected vdata, vaddr, srsrc, soffset", def.Mnemonic)
	}
	return emitBufferWords(ctx, def, 0b111000, raw)
}

// --- MTBUF: typed buffer memory. Adds a data/number-format pair MUBUF has
// no fields for; otherwise identical in shape. ---
//
// Layout: word0 bits31:26=0b111010 (ENCODING), bits25:19=OP, bits18:15=DFMT,
// bits14:12=NFMT, bits11:0=OFFSET. word1 identical to MUBUF's. No format
// operand is parsed; DFMT and NFMT are written as 0.
func encodeMTBUF(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 4 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected vdata, vaddr, srsrc, soffset", def.Mnemonic)
	}
	return emitBufferWords(ctx, def, 0b111010, raw)
}

func emitBufferWords(ctx *Context, def isa.InstrDef, marker uint32, raw []string) (int, error) {
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
	soffset, _, ok := ParseRegister(raw[3])
	if !ok {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed soffset %q", def.Mnemonic, raw[3])
	}

	offset := uint32(0)
	if len(raw) > 4 {
		v, err := parseOffsetModifier(raw[4])
		if err != nil {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%v", err)
		}
		offset = v
	}

	opShift := uint32(16)
	if marker == 0b111010 {
		opShift = 19 // MTBUF: OP at bits25:19
	}
	word0 := marker<<26 | def.Opcode<<opShift | (offset & 0xfff)
	off := emitWord(ctx.Section, word0)
	word1 := uint32(vaddr.Index&0xff) | uint32(vdata.Index&0xff)<<8 |
		uint32((srsrc.Index/4)&0x1f)<<16 | uint32(soffset.Index&0xff)<<24
	emitWord(ctx.Section, word1)
	return off, nil
}
