// Package disasm reconstructs GCN assembly text from a section's raw
// words: two-pass label discovery then per-word decode, grounded on the
// teacher's gas.Generator (_examples/lcox74-bfcc/internal/codegen/gas/gas.go)
// generalized from "collectTargets then Generate" over an IR op list to
// "collectLabels then Decode" over a raw little-endian word stream.
package disasm

import (
	"fmt"
	"strings"

	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// Decoder reconstructs assembly text for one section's word stream.
type Decoder struct {
	words   []uint32
	gen     isa.Generation
	section int
	labels  map[int]string // word-index -> label name, from pass 1
	out     strings.Builder
}

// New creates a Decoder over data, which must be a whole number of 32-bit
// words (short trailing bytes are dropped, matching an assembler's own
// word-aligned section discipline).
func New(data []byte, gen isa.Generation, sectionID int) *Decoder {
	words := make([]uint32, len(data)/4)
	for i := range words {
		o := i * 4
		words[i] = uint32(data[o]) | uint32(data[o+1])<<8 | uint32(data[o+2])<<16 | uint32(data[o+3])<<24
	}
	return &Decoder{words: words, gen: gen, section: sectionID, labels: map[int]string{}}
}

// Decode returns the full disassembly text, including discovered branch
// labels (named ".L<decimal target offset>_<section>", matching §8 E6).
func (d *Decoder) Decode() string {
	d.collectLabels()
	i := 0
	for i < len(d.words) {
		if label, ok := d.labels[i*4]; ok {
			fmt.Fprintf(&d.out, "%s:\n", label)
		}
		n := d.decodeOne(i)
		if n == 0 {
			n = 1
		}
		i += n
	}
	if label, ok := d.labels[len(d.words)*4]; ok {
		fmt.Fprintf(&d.out, "%s:\n", label)
	}
	return d.out.String()
}

// collectLabels pre-scans every word for SOPP branch-class instructions and
// records their absolute target offsets, so forward branches' labels exist
// before Decode's single emission pass reaches them -- the same two-pass
// shape as the teacher's collectTargets/Generate split.
func (d *Decoder) collectLabels() {
	for i, w := range d.words {
		if !isSOPP(w) {
			continue
		}
		op := (w >> 16) & 0x7f
		if !isBranchOpcode(op) {
			continue
		}
		simm16 := int16(w & 0xffff)
		target := (i*4 + 4) + int(simm16)*4
		d.labels[target] = fmt.Sprintf(".L%d_%d", target, d.section)
	}
}

func isBranchOpcode(op uint32) bool {
	switch op {
	case 2, 4, 5, 6, 7, 8:
		return true
	}
	return false
}

func isSOPP(w uint32) bool { return w>>23 == 0b101111111 }
func isSOPC(w uint32) bool { return w>>23 == 0b101111110 }
func isSOP1(w uint32) bool { return w>>23 == 0b101111101 }
func isSOPK(w uint32) bool { return w>>28 == 0b1011 && !isSOP1(w) && !isSOPC(w) && !isSOPP(w) }
func isSOP2(w uint32) bool { return w>>30 == 0b10 }
func isVOP1(w uint32) bool { return w>>25 == 0b0111111 }
func isVOPC(w uint32) bool { return w>>25 == 0b0111110 }
func isVOP2(w uint32) bool { return w>>31 == 0 }

// The remaining families all mark themselves with a 6-bit value in
// bits31:26 starting "11", distinct from SOP*'s "10..." prefixes and
// VOP2's bit31=0.
func isSMEM(w uint32) bool   { return w>>26 == 0b110000 }
func isEXP(w uint32) bool    { return w>>26 == 0b110001 }
func isVINTRP(w uint32) bool { return w>>26 == 0b110010 }
func isVOP3(w uint32) bool   { return w>>26 == 0b110100 }
func isVOP3P(w uint32) bool  { return w>>26 == 0b110101 }
func isDS(w uint32) bool     { return w>>26 == 0b110110 }
func isFLAT(w uint32) bool   { return w>>26 == 0b110111 }
func isMUBUF(w uint32) bool  { return w>>26 == 0b111000 }
func isMTBUF(w uint32) bool  { return w>>26 == 0b111010 }
func isMIMG(w uint32) bool   { return w>>26 == 0b111100 }

// decodeOne decodes the instruction starting at word index i and writes its
// canonical text (16-column mnemonic field, comma-space operands) to d.out,
// returning the number of words it consumed (1, or 2 when a literal/imm32
// trails).
func (d *Decoder) decodeOne(i int) int {
	w := d.words[i]
	switch {
	case isSOPP(w):
		return d.decodeSOPP(w, i)
	case isSOP1(w):
		return d.decodeSOP1(w)
	case isSOPC(w):
		return d.decodeSOPC(w, i)
	case isSOPK(w):
		return d.decodeSOPK(w, i)
	case isSOP2(w):
		return d.decodeSOP2(w, i)
	case isVOPC(w):
		return d.decodeVOPC(w, i)
	case isVOP1(w):
		return d.decodeVOP1(w, i)
	case isSMEM(w):
		return d.decodeSMEM(w, i)
	case isEXP(w):
		return d.decodeEXP(w, i)
	case isVINTRP(w):
		return d.decodeVINTRP(w, i)
	case isVOP3(w):
		return d.decodeVOP3(w, i)
	case isVOP3P(w):
		return d.decodeVOP3P(w, i)
	case isDS(w):
		return d.decodeDS(w, i)
	case isFLAT(w):
		return d.decodeFLAT(w, i)
	case isMUBUF(w):
		return d.decodeMUBUF(w, i)
	case isMTBUF(w):
		return d.decodeMTBUF(w, i)
	case isMIMG(w):
		return d.decodeMIMG(w, i)
	case isVOP2(w):
		return d.decodeVOP2(w, i)
	default:
		fmt.Fprintf(&d.out, "    .int 0x%08x\n", w)
		return 1
	}
}

func (d *Decoder) emit(mnemonic string, operands ...string) {
	if len(operands) == 0 {
		fmt.Fprintf(&d.out, "    %s\n", mnemonic)
		return
	}
	pad := mnemonic
	if len(pad) < 16 {
		pad += strings.Repeat(" ", 16-len(pad))
	} else {
		pad += " "
	}
	fmt.Fprintf(&d.out, "    %s%s\n", pad, strings.Join(operands, ", "))
}

func sgpr(field int) string {
	if name, ok := reverseNamed[field]; ok {
		return name
	}
	return fmt.Sprintf("s%d", field)
}

func vgpr(idx int) string { return fmt.Sprintf("v%d", idx) }

// ssrcOperand formats an 8-bit SSRC/SDST-convention field value (no
// trailing-literal resolution -- callers needing the literal word pass it
// in separately).
func ssrcOperand(field int, literal uint32, hasLiteral bool) string {
	switch {
	case field == isa.LiteralSSRC && hasLiteral:
		return fmt.Sprintf("0x%x", literal)
	case field >= 128 && field <= 192:
		return fmt.Sprintf("%d", field-128)
	case field >= 193 && field <= 208:
		return fmt.Sprintf("%d", 192-field)
	default:
		if name, ok := inlineFloatName[field]; ok {
			return name
		}
		return sgpr(field)
	}
}

var inlineFloatName = map[int]string{
	240: "0.5", 241: "-0.5", 242: "1.0", 243: "-1.0",
	244: "2.0", 245: "-2.0", 246: "4.0", 247: "-4.0",
}

var reverseNamed = map[int]string{
	102: "flat_scratch_lo", 103: "flat_scratch_hi",
	104: "xnack_mask_lo", 105: "xnack_mask_hi",
	106: "vcc_lo", 107: "vcc_hi", 124: "m0",
	126: "exec_lo", 127: "exec_hi",
	251: "vccz", 252: "execz", 253: "scc",
}
