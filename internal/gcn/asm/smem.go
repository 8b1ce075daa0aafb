package asm

import (
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// encodeSMEM handles the scalar-memory family (s_load_dword and friends):
// sdst, sbase, offset. Layout (documented, not fixture-verified): bits
// 31:26 = 0b110000, bits25:18 = OP, bits17:11 = SBASE (SGPR pair index / 2),
// bits9:6 = unused here, bit8 = IMM, bits6:0 of the second word = signed/
// unsigned OFFSET. §8's worked examples don't exercise SMEM, so this
// encoding follows the published field layout directly rather than a
// verified fixture -- see DESIGN.md's GCN coverage note.
func encodeSMEM(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 3 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected sdst, sbase, offset", def.Mnemonic)
	}
	sdstReg, sdstField, ok := ParseRegister(raw[0])
	if !ok {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed destination %q", def.Mnemonic, raw[0])
	}
	sbaseReg, _, ok := ParseRegister(raw[1])
	if !ok || sbaseReg.Class != isa.ClassScalar {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed sbase %q", def.Mnemonic, raw[1])
	}
	_ = sdstReg

	offTok := strings.TrimSpace(raw[2])
	var offVal uint32
	var isImm uint32
	if v, err := strconv.ParseInt(offTok, 0, 32); err == nil {
		offVal = uint32(v) & 0x1fffff
		isImm = 1
	} else {
		// Register offset not modeled in this representative core; only
		// literal/constant offsets are supported.
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: register offset operands are not supported by this encoder", def.Mnemonic)
	}

	word0 := uint32(0b110000)<<26 | def.Opcode<<18 | uint32((sbaseReg.Index/2)&0x3f)<<11 | isImm<<8 | uint32(sdstField&0x7f)<<15
	off := emitWord(ctx.Section, word0)
	emitWord(ctx.Section, offVal)
	return off, nil
}
