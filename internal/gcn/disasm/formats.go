package disasm

import (
	"fmt"

	"github.com/clrx-go/clrx/internal/gcn/isa"
)

func mnemonicFor(enc isa.Encoding, opcode uint32, gen isa.Generation) string {
	if d, ok := isa.ByEncodingOpcode(enc, opcode, gen); ok {
		return d.Mnemonic
	}
	return fmt.Sprintf("unknown_%s_%d", enc, opcode)
}

// decodeSOP2 reverses §8 E3's layout: ENCODING(2,31:30)=10, OP(7,29:23),
// SDST(7,22:16), SSRC1(8,15:8), SSRC0(8,7:0).
func (d *Decoder) decodeSOP2(w uint32, i int) int {
	op := (w >> 23) & 0x7f
	sdst := int((w >> 16) & 0x7f)
	ssrc1 := int((w >> 8) & 0xff)
	ssrc0 := int(w & 0xff)
	mnem := mnemonicFor(isa.EncSOP2, op, d.gen)

	consumed := 1
	var lit uint32
	hasLit := false
	if ssrc0 == isa.LiteralSSRC || ssrc1 == isa.LiteralSSRC {
		if i+1 < len(d.words) {
			lit = d.words[i+1]
			hasLit = true
			consumed = 2
		}
	}
	d.emit(mnem, sgpr(sdst), ssrcOperand(ssrc0, lit, hasLit), ssrcOperand(ssrc1, lit, hasLit))
	return consumed
}

// decodeSOP1: ENCODING(9,31:23)=101111101, SDST(7,22:16), OP(8,15:8),
// SSRC0(8,7:0).
func (d *Decoder) decodeSOP1(w uint32) int {
	sdst := int((w >> 16) & 0x7f)
	op := (w >> 8) & 0xff
	ssrc0 := int(w & 0xff)
	mnem := mnemonicFor(isa.EncSOP1, op, d.gen)
	d.emit(mnem, sgpr(sdst), ssrcOperand(ssrc0, 0, false))
	return 1
}

// decodeSOPC: ENCODING(9,31:23)=101111110, OP(7,22:16), SSRC1(8,15:8),
// SSRC0(8,7:0).
func (d *Decoder) decodeSOPC(w uint32, i int) int {
	op := (w >> 16) & 0x7f
	ssrc1 := int((w >> 8) & 0xff)
	ssrc0 := int(w & 0xff)
	mnem := mnemonicFor(isa.EncSOPC, op, d.gen)

	consumed := 1
	var lit uint32
	hasLit := false
	if ssrc0 == isa.LiteralSSRC || ssrc1 == isa.LiteralSSRC {
		if i+1 < len(d.words) {
			lit, hasLit, consumed = d.words[i+1], true, 2
		}
	}
	d.emit(mnem, ssrcOperand(ssrc0, lit, hasLit), ssrcOperand(ssrc1, lit, hasLit))
	return consumed
}

// decodeSOPK: ENCODING(4,31:28)=1011, OP(5,27:23), SDST(7,22:16),
// SIMM16(16,15:0). §8 E4 verifies s_setreg_imm32_b32's hwreg()+trailing
// imm32 shape.
func (d *Decoder) decodeSOPK(w uint32, i int) int {
	op := (w >> 23) & 0x1f
	sdst := int((w >> 16) & 0x7f)
	simm16 := uint16(w & 0xffff)
	mnem := mnemonicFor(isa.EncSOPK, op, d.gen)

	if mnem == "s_setreg_b32" || mnem == "s_setreg_imm32_b32" {
		id := int(simm16 & 0x3f)
		offset := int((simm16 >> 6) & 0x1f)
		width := int((simm16>>11)&0x1f) + 1
		hwname := hwRegName(id)
		if mnem == "s_setreg_imm32_b32" && i+1 < len(d.words) {
			d.emit(mnem, fmt.Sprintf("hwreg(%s, %d, %d)", hwname, offset, width), fmt.Sprintf("0x%x", d.words[i+1]))
			return 2
		}
		d.emit(mnem, fmt.Sprintf("hwreg(%s, %d, %d)", hwname, offset, width))
		return 1
	}
	d.emit(mnem, sgpr(sdst), fmt.Sprintf("0x%x", simm16))
	return 1
}

func hwRegName(id int) string {
	for name, v := range isa.HWRegID {
		if v == id {
			return name
		}
	}
	return fmt.Sprintf("%d", id)
}

// decodeSOPP: ENCODING(9,31:23)=101111111, OP(7,22:16), SIMM16(16,15:0).
// Verified against §8 E6's branch-target reconstruction.
func (d *Decoder) decodeSOPP(w uint32, i int) int {
	op := (w >> 16) & 0x7f
	simm16 := w & 0xffff
	mnem := mnemonicFor(isa.EncSOPP, op, d.gen)
	if mnem == "s_nop" || mnem == "s_endpgm" || mnem == "s_barrier" {
		d.emit(mnem)
		return 1
	}
	if isBranchOpcode(op) {
		target := (i*4 + 4) + int(int16(simm16))*4
		d.emit(mnem, d.labels[target])
		return 1
	}
	d.emit(mnem, fmt.Sprintf("0x%x", simm16))
	return 1
}

// decodeVOP1: ENCODING(7,31:25)=0111111, VDST(8,24:17), OP(8,16:9),
// SRC0(9,8:0).
func (d *Decoder) decodeVOP1(w uint32, i int) int {
	vdst := int((w >> 17) & 0xff)
	op := (w >> 9) & 0xff
	src0 := int(w & 0x1ff)
	mnem := mnemonicFor(isa.EncVOP1, op, d.gen)
	if modMnem, src0Text, consumed, ok := d.decodeModifier(mnem, i, src0); ok {
		d.emit(modMnem, vgpr(vdst), src0Text)
		return consumed
	}
	consumed, lit, hasLit := literalFollows9(d, i, src0)
	d.emit(mnem, vgpr(vdst), src9Operand(src0, lit, hasLit))
	return consumed
}

// decodeVOP2: bit31=0, OP(6,30:25), VDST(8,24:17), VSRC1(8,16:9, plain
// vgpr index), SRC0(9,8:0). Verified against §8 E5.
func (d *Decoder) decodeVOP2(w uint32, i int) int {
	op := (w >> 25) & 0x3f
	vdst := int((w >> 17) & 0xff)
	vsrc1 := int((w >> 9) & 0xff)
	src0 := int(w & 0x1ff)
	mnem := mnemonicFor(isa.EncVOP2, op, d.gen)
	if modMnem, src0Text, consumed, ok := d.decodeModifier(mnem, i, src0); ok {
		d.emit(modMnem, vgpr(vdst), src0Text, vgpr(vsrc1))
		return consumed
	}
	consumed, lit, hasLit := literalFollows9(d, i, src0)
	operands := []string{vgpr(vdst), src9Operand(src0, lit, hasLit), vgpr(vsrc1)}
	if mnem == "v_cndmask_b32" {
		operands = append(operands, "vcc")
	}
	d.emit(mnem, operands...)
	return consumed
}

// decodeVOPC: ENCODING(7,31:25)=0111110, OP(8,24:17), VSRC1(8,16:9),
// SRC0(9,8:0).
func (d *Decoder) decodeVOPC(w uint32, i int) int {
	op := (w >> 17) & 0xff
	vsrc1 := int((w >> 9) & 0xff)
	src0 := int(w & 0x1ff)
	mnem := mnemonicFor(isa.EncVOPC, op, d.gen)
	if modMnem, src0Text, consumed, ok := d.decodeModifier(mnem, i, src0); ok {
		d.emit(modMnem, src0Text, vgpr(vsrc1))
		return consumed
	}
	consumed, lit, hasLit := literalFollows9(d, i, src0)
	d.emit(mnem, src9Operand(src0, lit, hasLit), vgpr(vsrc1))
	return consumed
}

func literalFollows9(d *Decoder, i, src0 int) (consumed int, lit uint32, hasLit bool) {
	if src0 != isa.LiteralSrc9 || i+1 >= len(d.words) {
		return 1, 0, false
	}
	return 2, d.words[i+1], true
}

// src9Operand formats a 9-bit VOP*-convention SRC field, extending
// ssrcOperand with the VGPR range (256-511) the wider field adds.
func src9Operand(field int, literal uint32, hasLiteral bool) string {
	if field >= isa.VGPROffset9 {
		return vgpr(field - isa.VGPROffset9)
	}
	return ssrcOperand(field, literal, hasLiteral)
}
