package asm

import (
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// --- VINTRP: vdst, attr_channel, attr (pixel-shader attribute
// interpolation; v_interp_p1_f32 vdst, v0, attr0.x) ---
//
// Layout (documented, not fixture-verified): bits31:26=0b110010 (ENCODING),
// bits25:18=VDST, bits17:16=CHAN, bits15:8=ATTR, bits7:6=OP, bits5:0=VSRC
// (packed down from the VOP-style 9-bit field since VINTRP's only source is
// always a plain VGPR, never a literal or inline constant).
func encodeVINTRP(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 3 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected vdst, vsrc, attrN.chan", def.Mnemonic)
	}
	dst, _, ok := ParseRegister(raw[0])
	if !ok || dst.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: destination must be a vgpr", def.Mnemonic)
	}
	vsrc, _, ok := ParseRegister(raw[1])
	if !ok || vsrc.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: second operand must be a vgpr", def.Mnemonic)
	}
	attr, chan_, err := parseAttr(ctx.Pos, raw[2])
	if err != nil {
		return 0, err
	}
	word := uint32(0b110010)<<26 | uint32(dst.Index&0xff)<<18 | uint32(chan_&0x3)<<16 |
		uint32(attr&0xff)<<8 | def.Opcode<<6 | uint32(vsrc.Index&0x3f)
	return emitWord(ctx.Section, word), nil
}

// parseAttr recognizes "attrN.chan" (chan in x/y/z/w), the interpolation
// attribute-reference syntax used by VINTRP operands.
func parseAttr(pos srcpos.Position, tok string) (attr, chan_ int, err error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "attr") {
		return 0, 0, asmerr.New(asmerr.Encoding, pos, "malformed attribute operand %q, expected attrN.chan", tok)
	}
	n, convErr := strconv.Atoi(parts[0][len("attr"):])
	if convErr != nil {
		return 0, 0, asmerr.New(asmerr.Encoding, pos, "malformed attribute index in %q", tok)
	}
	chans := map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}
	c, ok := chans[parts[1]]
	if !ok {
		return 0, 0, asmerr.New(asmerr.Encoding, pos, "unknown attribute channel %q", parts[1])
	}
	return n, c, nil
}
