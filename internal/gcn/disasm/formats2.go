package disasm

import (
	"fmt"

	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// decodeModifier recognizes the SDWA/DPP src0 sentinel convention
// (isa.SDWASrc9/isa.DPPSrc9) shared by VOP1/VOP2/VOPC: the real operand
// index and modifier bits live in a trailing control dword rather than
// the word's own 9-bit src0 field. Mirrors the encoder's applyModifier,
// in reverse.
func (d *Decoder) decodeModifier(mnem string, i, src0 int) (modMnem, src0Text string, consumed int, ok bool) {
	if src0 != isa.SDWASrc9 && src0 != isa.DPPSrc9 {
		return "", "", 0, false
	}
	if i+1 >= len(d.words) {
		return "", "", 0, false
	}
	ctrl := d.words[i+1]
	idx := int(ctrl & 0xff)
	if src0 == isa.SDWASrc9 {
		return mnem + "_sdwa", vgpr(idx), 2, true
	}
	return mnem + "_dpp", vgpr(idx), 2, true
}

// decodeSMEM reverses encodeSMEM's layout: ENCODING(6,31:26)=110000,
// OP(8,25:18), SBASE(7,17:11, SGPR-pair index/2), IMM(1,8), SDST(7,22:16).
func (d *Decoder) decodeSMEM(w uint32, i int) int {
	op := (w >> 18) & 0xff
	sbase := int((w >> 11) & 0x7f)
	sdst := int((w >> 15) & 0x7f)
	mnem := mnemonicFor(isa.EncSMEM, op, d.gen)
	consumed := 1
	offsetText := "0x0"
	if i+1 < len(d.words) {
		offsetText = fmt.Sprintf("0x%x", d.words[i+1])
		consumed = 2
	}
	d.emit(mnem, sgpr(sdst), fmt.Sprintf("s[%d:%d]", sbase*2, sbase*2+1), offsetText)
	return consumed
}

// decodeVOP3 reverses encodeVOP3's layout: ENCODING(6,31:26)=110100,
// OP(9,25:17), VDST(8,7:0); word1 SRC0(9,8:0), SRC1(9,17:9), SRC2(9,26:18).
func (d *Decoder) decodeVOP3(w uint32, i int) int {
	op := (w >> 17) & 0x1ff
	vdst := int(w & 0xff)
	mnem := mnemonicFor(isa.EncVOP3, op, d.gen)
	if i+1 >= len(d.words) {
		d.emit(mnem, vgpr(vdst))
		return 1
	}
	w1 := d.words[i+1]
	src0 := int(w1 & 0x1ff)
	src1 := int((w1 >> 9) & 0x1ff)
	src2 := int((w1 >> 18) & 0x1ff)
	d.emit(mnem, vgpr(vdst), src9Operand(src0, 0, false), src9Operand(src1, 0, false), src9Operand(src2, 0, false))
	return 2
}

// decodeVOP3P reverses encodeVOP3P's layout: ENCODING(6,31:26)=110101,
// OP(9,25:17), VDST(8,7:0); word1 SRC0(9,8:0), SRC1(9,17:9).
func (d *Decoder) decodeVOP3P(w uint32, i int) int {
	op := (w >> 17) & 0x1ff
	vdst := int(w & 0xff)
	mnem := mnemonicFor(isa.EncVOP3P, op, d.gen)
	if i+1 >= len(d.words) {
		d.emit(mnem, vgpr(vdst))
		return 1
	}
	w1 := d.words[i+1]
	src0 := int(w1 & 0x1ff)
	src1 := int((w1 >> 9) & 0x1ff)
	d.emit(mnem, vgpr(vdst), src9Operand(src0, 0, false), src9Operand(src1, 0, false))
	return 2
}

// decodeVINTRP reverses encodeVINTRP's layout: ENCODING(6,31:26)=110010,
// VDST(8,25:18), CHAN(2,17:16), ATTR(8,15:8), OP(2,7:6), VSRC(6,5:0).
func (d *Decoder) decodeVINTRP(w uint32, i int) int {
	vdst := int((w >> 18) & 0xff)
	chn := int((w >> 16) & 0x3)
	attr := int((w >> 8) & 0xff)
	op := (w >> 6) & 0x3
	vsrc := int(w & 0x3f)
	mnem := mnemonicFor(isa.EncVINTRP, op, d.gen)
	chanName := [...]string{"x", "y", "z", "w"}[chn]
	d.emit(mnem, vgpr(vdst), vgpr(vsrc), fmt.Sprintf("attr%d.%s", attr, chanName))
	return 1
}

// decodeDS reverses encodeDS's layout: ENCODING(6,31:26)=110110,
// OP(9,25:17), OFFSET(16,15:0); word1 ADDR(8,7:0), DATA0(8,15:8),
// VDST(8,31:24).
func (d *Decoder) decodeDS(w uint32, i int) int {
	op := (w >> 17) & 0x1ff
	offset := w & 0xffff
	mnem := mnemonicFor(isa.EncDS, op, d.gen)
	if i+1 >= len(d.words) {
		return 1
	}
	w1 := d.words[i+1]
	addr := int(w1 & 0xff)
	def, _ := isa.ByEncodingOpcode(isa.EncDS, op, d.gen)
	var operands []string
	if def.HasDst {
		vdst := int((w1 >> 24) & 0xff)
		operands = []string{vgpr(vdst), vgpr(addr)}
	} else {
		data0 := int((w1 >> 8) & 0xff)
		operands = []string{vgpr(addr), vgpr(data0)}
	}
	if offset != 0 {
		operands = append(operands, fmt.Sprintf("offset:%d", offset))
	}
	d.emit(mnem, operands...)
	return 2
}

// decodeFLAT reverses encodeFLAT's layout: ENCODING(6,31:26)=110111,
// OP(8,25:18); word1 ADDR(8,7:0), VDST(8,23:16) on loads or DATA(8,15:8) on
// stores.
func (d *Decoder) decodeFLAT(w uint32, i int) int {
	op := (w >> 18) & 0xff
	mnem := mnemonicFor(isa.EncFLAT, op, d.gen)
	if i+1 >= len(d.words) {
		return 1
	}
	w1 := d.words[i+1]
	addr := int(w1 & 0xff)
	def, _ := isa.ByEncodingOpcode(isa.EncFLAT, op, d.gen)
	if def.HasDst {
		vdst := int((w1 >> 16) & 0xff)
		d.emit(mnem, vgpr(vdst), vgpr(addr))
	} else {
		data := int((w1 >> 8) & 0xff)
		d.emit(mnem, vgpr(addr), vgpr(data))
	}
	return 2
}

// decodeMUBUF/decodeMTBUF reverse emitBufferWords' shared word1 layout:
// VADDR(8,7:0), VDATA(8,15:8), SRSRC(5,20:16, SGPR-quad index), SOFFSET
// (8,31:24).
func (d *Decoder) decodeMUBUF(w uint32, i int) int {
	return d.decodeBuffer(isa.EncMUBUF, (w>>16)&0x3ff, w&0xfff, i)
}

func (d *Decoder) decodeMTBUF(w uint32, i int) int {
	return d.decodeBuffer(isa.EncMTBUF, (w>>19)&0x7f, w&0xfff, i)
}

func (d *Decoder) decodeBuffer(enc isa.Encoding, op, offset uint32, i int) int {
	mnem := mnemonicFor(enc, op, d.gen)
	if i+1 >= len(d.words) {
		return 1
	}
	w1 := d.words[i+1]
	vaddr := int(w1 & 0xff)
	vdata := int((w1 >> 8) & 0xff)
	srsrc := int((w1 >> 16) & 0x1f)
	soffset := int((w1 >> 24) & 0xff)
	operands := []string{vgpr(vdata), vgpr(vaddr), fmt.Sprintf("s[%d:%d]", srsrc*4, srsrc*4+3), sgpr(soffset)}
	if offset != 0 {
		operands = append(operands, fmt.Sprintf("offset:%d", offset))
	}
	d.emit(mnem, operands...)
	return 2
}

// decodeMIMG reverses encodeMIMG's layout: ENCODING(6,31:26)=111100,
// OP(8,25:18); word1 VADDR(8,7:0), VDATA(8,15:8), SRSRC(5,20:16), SSAMP
// (5,25:21, SGPR-quad index, absent on sampler-less ops).
func (d *Decoder) decodeMIMG(w uint32, i int) int {
	op := (w >> 18) & 0xff
	mnem := mnemonicFor(isa.EncMIMG, op, d.gen)
	if i+1 >= len(d.words) {
		return 1
	}
	w1 := d.words[i+1]
	vaddr := int(w1 & 0xff)
	vdata := int((w1 >> 8) & 0xff)
	srsrc := int((w1 >> 16) & 0x1f)
	ssamp := int((w1 >> 21) & 0x1f)
	operands := []string{vgpr(vdata), vgpr(vaddr), fmt.Sprintf("s[%d:%d]", srsrc*4, srsrc*4+3)}
	if ssamp != 0 {
		operands = append(operands, fmt.Sprintf("s[%d:%d]", ssamp*4, ssamp*4+3))
	}
	d.emit(mnem, operands...)
	return 2
}

// decodeEXP reverses encodeEXP's layout: ENCODING(6,31:26)=110001,
// TGT(8,19:12); word1 VSRC0(8,7:0), VSRC1(8,15:8), VSRC2(8,23:16),
// VSRC3(8,31:24).
func (d *Decoder) decodeEXP(w uint32, i int) int {
	tgt := (w >> 12) & 0xff
	mnem := "exp"
	if i+1 >= len(d.words) {
		return 1
	}
	w1 := d.words[i+1]
	vsrc0 := int(w1 & 0xff)
	vsrc1 := int((w1 >> 8) & 0xff)
	vsrc2 := int((w1 >> 16) & 0xff)
	vsrc3 := int((w1 >> 24) & 0xff)
	d.emit(mnem, expTargetName(tgt), vgpr(vsrc0), vgpr(vsrc1), vgpr(vsrc2), vgpr(vsrc3))
	return 2
}

func expTargetName(tgt uint32) string {
	switch {
	case tgt <= 7:
		return fmt.Sprintf("mrt%d", tgt)
	case tgt == 8:
		return "z"
	case tgt == 9:
		return "null"
	case tgt >= 12 && tgt <= 15:
		return fmt.Sprintf("pos%d", tgt-12)
	case tgt >= 32 && tgt <= 63:
		return fmt.Sprintf("param%d", tgt-32)
	default:
		return fmt.Sprintf("%d", tgt)
	}
}
