package isa

// Encoding names one GCN instruction word format. Field widths and prefix
// bits are documented alongside each encoder case in internal/gcn/asm; this
// enum only distinguishes which case applies.
type Encoding int

const (
	EncSOP2 Encoding = iota
	EncSOP1
	EncSOPK
	EncSOPC
	EncSOPP
	EncSMEM
	EncVOP1
	EncVOP2
	EncVOPC
	EncVOP3
	EncVOP3P
	EncVINTRP
	EncDS
	EncMUBUF
	EncMTBUF
	EncMIMG
	EncEXP
	EncFLAT
)

func (e Encoding) String() string {
	names := [...]string{
		"SOP2", "SOP1", "SOPK", "SOPC", "SOPP", "SMEM",
		"VOP1", "VOP2", "VOPC", "VOP3", "VOP3P", "VINTRP",
		"DS", "MUBUF", "MTBUF", "MIMG", "EXP", "FLAT",
	}
	if int(e) < 0 || int(e) >= len(names) {
		return "?"
	}
	return names[e]
}

// InstrDef is one mnemonic's table row: its encoding format, opcode within
// that format, generation legality, and operand shape.
type InstrDef struct {
	Mnemonic string
	Encoding Encoding
	Opcode   uint32
	Arch     ArchMask
	// NumOperands is the textual operand count the mnemonic expects,
	// including an implicit vcc operand the syntax spells out (e.g.
	// v_cndmask_b32 and v_add_co_u32 count 4); encodeVOP2 drops the fourth
	// operand of any 4-operand row from the VOP2 encoding.
	NumOperands int
	HasDst      bool
}

// HWRegID names the fields recognized inside hwreg(id, offset, width),
// confirmed against spec §8 E4 (trapsts=3).
var HWRegID = map[string]int{
	"mode": 1, "status": 2, "trapsts": 3, "hw_id": 4,
	"gpr_alloc": 5, "lds_alloc": 6, "ib_sts": 7,
	"pc_lo": 8, "pc_hi": 9, "inst_dw0": 10, "inst_dw1": 11,
	"ib_dbg0": 12, "ib_dbg1": 13, "flush_ib": 14,
}

// EncodeHWReg packs hwreg(id, offset, width) into the 16-bit SIMM16 value
// s_setreg/s_getreg family instructions carry, per §8 E4: bits0-5 id,
// bits6-10 offset, bits11-15 (width-1).
func EncodeHWReg(id, offset, width int) uint16 {
	return uint16(id&0x3f) | uint16(offset&0x1f)<<6 | uint16((width-1)&0x1f)<<11
}
