package asm

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// modKind distinguishes the two GCN1.2+ src0 modifier encodings VOP1/VOP2/
// VOPC support: SDWA (per-component byte/word select) and DPP (cross-lane
// data-parallel-primitive shuffles). Both replace the instruction's normal
// 9-bit src0 field with a sentinel (isa.SDWASrc9/isa.DPPSrc9) and carry the
// real operand plus modifier bits in a trailing control dword, the same
// "sentinel field, trailing word" shape LiteralSrc9 already uses for
// literal constants.
type modKind int

const (
	modNone modKind = iota
	modSDWA
	modDPP
)

// modifierFor recognizes the "_sdwa"/"_dpp" mnemonic suffix and returns the
// base mnemonic plus which modifier it names.
func modifierFor(mnemonic string) (base string, kind modKind) {
	switch {
	case len(mnemonic) > 5 && mnemonic[len(mnemonic)-5:] == "_sdwa":
		return mnemonic[:len(mnemonic)-5], modSDWA
	case len(mnemonic) > 4 && mnemonic[len(mnemonic)-4:] == "_dpp":
		return mnemonic[:len(mnemonic)-4], modDPP
	default:
		return mnemonic, modNone
	}
}

// applyModifier rewrites src0's field to the modifier's sentinel value and
// returns the trailing control dword to emit in place of a literal (a
// modified instruction's src0 is always a plain vgpr in this representative
// path, so it never also needs a literal-constant slot -- see
// DESIGN.md's GCN coverage note for the default-valued fields this
// encodes: SDWA's DST_SEL/SRC0_SEL fixed to DWORD with no sign-extend/
// clamp/abs/neg, DPP's BANK_MASK/ROW_MASK fixed to 0xf (no lane masking)
// with DPP_CTRL fixed to 0 (row_new_bcast0)).
func applyModifier(pos srcpos.Position, kind modKind, src0 *Operand) (uint32, error) {
	if src0.Reg.Class != isa.ClassVector {
		return 0, asmerr.New(asmerr.Encoding, pos, "sdwa/dpp modifiers require a vgpr src0 operand")
	}
	idx := uint32(src0.Reg.Index & 0xff)
	switch kind {
	case modSDWA:
		src0.Field = isa.SDWASrc9
		return idx | uint32(6)<<8 | uint32(6)<<16, nil
	case modDPP:
		src0.Field = isa.DPPSrc9
		return idx | uint32(0xf)<<17 | uint32(0xf)<<21, nil
	default:
		return 0, asmerr.New(asmerr.Encoding, pos, "unknown modifier kind")
	}
}
