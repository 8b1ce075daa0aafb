package isa

// RegClass distinguishes the register files an operand field can name.
type RegClass int

const (
	ClassScalar RegClass = iota
	ClassVector
	ClassNone // inline constant, literal, or special (vcc/exec/m0/scc as a field value)
)

// RegRef names a register or register range (e.g. s[4:5] has Count=2).
type RegRef struct {
	Class RegClass
	Index int
	Count int
}

// namedScalar maps register aliases to their SSRC/SDST field encoding.
// Values above 128 are the shared inline-constant region (see InlineInt and
// InlineFloat).
var namedScalar = map[string]int{
	"flat_scratch_lo": 102, "flat_scratch_hi": 103,
	"xnack_mask_lo": 104, "xnack_mask_hi": 105,
	"vcc_lo": 106, "vcc_hi": 107,
	"tba_lo": 108, "tba_hi": 109,
	"tma_lo": 110, "tma_hi": 111,
	"m0": 124, "exec_lo": 126, "exec_hi": 127,
	"vccz": 251, "execz": 252, "scc": 253,
}

// ScalarFieldValue returns the 8/9-bit SSRC/SRC field encoding of a named
// scalar register alias (vcc_lo, m0, exec_lo, scc, ...), and whether name
// is such an alias. Inline constants are looked up with InlineInt and
// InlineFloat instead.
//
// This is the operand-encoding table verified against spec §8's fixtures
// E3-E5: field<128 is a plain SGPR index (E3's s103 on GCN1.5 resolves the
// spec's Open Question the same way -- the field is the physical register
// number, not bounds-checked against a generation's SGPR count), 128 is
// the integer zero, 129-192 are +1..+64, 193-208 are -1..-16, 240-247 are
// the eight named floats, and 255 (LiteralSSRC in the 8-bit field,
// LiteralSrc9 in the 9-bit vector-capable SRC field) means "literal
// follows."
func ScalarFieldValue(name string) (int, bool) {
	if v, ok := namedScalar[name]; ok {
		return v, true
	}
	return 0, false
}

// InlineInt returns the SSRC/SRC field value for the integer constant v if
// it falls in the inline range (-16..64), else ok=false.
func InlineInt(v int64) (int, bool) {
	switch {
	case v >= 1 && v <= 64:
		return 128 + int(v), true
	case v >= -16 && v <= -1:
		return 192 - int(v), true // -1 -> 193 ... -16 -> 208
	case v == 0:
		return 128, true
	default:
		return 0, false
	}
}

var inlineFloats = map[float64]int{
	0.5: 240, -0.5: 241, 1.0: 242, -1.0: 243,
	2.0: 244, -2.0: 245, 4.0: 246, -4.0: 247,
}

// InlineFloat returns the field value for v if it is one of the eight
// inline floating constants.
func InlineFloat(v float64) (int, bool) {
	f, ok := inlineFloats[v]
	return f, ok
}

const (
	// LiteralSSRC is the SOP2/SOPC/SOPK 8-bit-field "literal follows" value.
	LiteralSSRC = 255
	// LiteralSrc9 is the VOP*/9-bit-field "literal follows" value (identical
	// numerically to LiteralSSRC; kept distinct for readability at call sites).
	LiteralSrc9 = 255
	// VGPROffset9 is added to a VGPR index to land it in the 9-bit SRC
	// field's VGPR range (256-511), confirmed by no fixture directly but
	// standard across the GCN ISA manuals for VOP1/VOP2/VOPC/VOP3 SRC0.
	VGPROffset9 = 256

	// SDWASrc9 and DPPSrc9 are the two VOP1/VOP2/VOPC SRC0 sentinel values
	// (GCN1.2+) meaning "this instruction's real src0 and modifier fields
	// live in a trailing control dword" instead of "a literal trails" --
	// the same trailing-extra-word convention as LiteralSrc9, just with a
	// structured control word instead of a raw 32-bit constant.
	SDWASrc9 = 249
	DPPSrc9  = 250
)
