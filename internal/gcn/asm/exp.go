package asm

import (
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// expTarget maps a textual export target name to its numeric TGT
// field value, per the published GCN manuals: mrt0-mrt7 = 0-7, z = 8,
// null = 9, pos0-pos3 = 12-15, param0-param31 = 32-63.
func expTarget(pos srcpos.Position, tok string) (uint32, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	switch {
	case strings.HasPrefix(tok, "mrt"):
		n, err := strconv.Atoi(tok[3:])
		if err != nil || n < 0 || n > 7 {
			return 0, asmerr.New(asmerr.Encoding, pos, "invalid export target %q", tok)
		}
		return uint32(n), nil
	case tok == "z":
		return 8, nil
	case tok == "null":
		return 9, nil
	case strings.HasPrefix(tok, "pos"):
		n, err := strconv.Atoi(tok[3:])
		if err != nil || n < 0 || n > 3 {
			return 0, asmerr.New(asmerr.Encoding, pos, "invalid export target %q", tok)
		}
		return uint32(12 + n), nil
	case strings.HasPrefix(tok, "param"):
		n, err := strconv.Atoi(tok[5:])
		if err != nil || n < 0 || n > 31 {
			return 0, asmerr.New(asmerr.Encoding, pos, "invalid export target %q", tok)
		}
		return uint32(32 + n), nil
	}
	return 0, asmerr.New(asmerr.Encoding, pos, "unknown export target %q", tok)
}

// --- EXP: tgt, vsrc0, vsrc1, vsrc2, vsrc3 (pixel/vertex shader parameter
// and render-target export; all four source slots are always written,
// per-component enable is implied all-on for this representative path) ---
//
// Layout (documented, not fixture-verified -- see DESIGN.md's GCN coverage
// note): word0 bits31:26=0b110001 (ENCODING), bits19:12=TGT, bits11:8=EN
// (fixed to 0xf, all components), bit7=COMPR, bit6=DONE, bit5=VM. word1
// bits7:0=VSRC0, bits15:8=VSRC1, bits23:16=VSRC2, bits31:24=VSRC3.
func encodeEXP(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 5 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected tgt, vsrc0, vsrc1, vsrc2, vsrc3", def.Mnemonic)
	}
	tgt, err := expTarget(ctx.Pos, raw[0])
	if err != nil {
		return 0, err
	}
	var vsrc [4]isa.RegRef
	for i := 0; i < 4; i++ {
		reg, _, ok := ParseRegister(raw[i+1])
		if !ok || reg.Class != isa.ClassVector {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: vsrc%d must be a vgpr", def.Mnemonic, i)
		}
		vsrc[i] = reg
	}
	word0 := uint32(0b110001)<<26 | (tgt&0xff)<<12 | uint32(0xf)<<8
	off := emitWord(ctx.Section, word0)
	word1 := uint32(vsrc[0].Index&0xff) | uint32(vsrc[1].Index&0xff)<<8 |
		uint32(vsrc[2].Index&0xff)<<16 | uint32(vsrc[3].Index&0xff)<<24
	emitWord(ctx.Section, word1)
	return off, nil
}
