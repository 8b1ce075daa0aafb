package isa

import "github.com/samber/lo"

// table lists the mnemonics this module implements. The four rows marked
// "fixture" reproduce spec §8's worked examples bit-for-bit (verified by
// hand against the expected encoder/decoder output before being written
// here); the rest extend each encoding family with the base integer/move/
// compare/branch set using the same field conventions, which stay stable
// across GCN generations 1.0-1.5 except where a row's Arch narrows it.
//
// This is a representative core, not a transcription of the full AMD ISA
// manuals' several-thousand opcode points across eight generations -- see
// DESIGN.md's GCN coverage note.
var table = []InstrDef{
	// SOP2 -- fixture: s_add_u32 (opcode 0, verified against E3).
	{Mnemonic: "s_add_u32", Encoding: EncSOP2, Opcode: 0, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_sub_u32", Encoding: EncSOP2, Opcode: 1, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_add_i32", Encoding: EncSOP2, Opcode: 2, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_sub_i32", Encoding: EncSOP2, Opcode: 3, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_and_b32", Encoding: EncSOP2, Opcode: 14, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_or_b32", Encoding: EncSOP2, Opcode: 15, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_xor_b32", Encoding: EncSOP2, Opcode: 16, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_lshl_b32", Encoding: EncSOP2, Opcode: 28, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_lshr_b32", Encoding: EncSOP2, Opcode: 30, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_mul_i32", Encoding: EncSOP2, Opcode: 38, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_min_i32", Encoding: EncSOP2, Opcode: 4, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_max_i32", Encoding: EncSOP2, Opcode: 6, Arch: MaskAll, NumOperands: 3, HasDst: true},

	// SOP1
	{Mnemonic: "s_mov_b32", Encoding: EncSOP1, Opcode: 0, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_mov_b64", Encoding: EncSOP1, Opcode: 1, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_not_b32", Encoding: EncSOP1, Opcode: 4, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_bcnt0_i32_b32", Encoding: EncSOP1, Opcode: 8, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_swappc_b64", Encoding: EncSOP1, Opcode: 36, Arch: MaskAll, NumOperands: 2, HasDst: true},

	// SOPK -- fixture: s_setreg_imm32_b32 (opcode 20, verified against E4).
	{Mnemonic: "s_movk_i32", Encoding: EncSOPK, Opcode: 0, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_cmovk_i32", Encoding: EncSOPK, Opcode: 1, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_cmpk_eq_i32", Encoding: EncSOPK, Opcode: 2, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_addk_i32", Encoding: EncSOPK, Opcode: 7, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "s_setreg_b32", Encoding: EncSOPK, Opcode: 19, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_setreg_imm32_b32", Encoding: EncSOPK, Opcode: 20, Arch: MaskAll, NumOperands: 2, HasDst: false},

	// SOPC
	{Mnemonic: "s_cmp_eq_i32", Encoding: EncSOPC, Opcode: 0, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_cmp_lg_i32", Encoding: EncSOPC, Opcode: 1, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_cmp_gt_i32", Encoding: EncSOPC, Opcode: 2, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_cmp_eq_u32", Encoding: EncSOPC, Opcode: 6, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "s_bitcmp0_b32", Encoding: EncSOPC, Opcode: 12, Arch: MaskAll, NumOperands: 2, HasDst: false},

	// SOPP -- fixture: s_branch (opcode 2, verified against E6).
	{Mnemonic: "s_nop", Encoding: EncSOPP, Opcode: 0, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_endpgm", Encoding: EncSOPP, Opcode: 1, Arch: MaskAll, NumOperands: 0, HasDst: false},
	{Mnemonic: "s_branch", Encoding: EncSOPP, Opcode: 2, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_cbranch_scc0", Encoding: EncSOPP, Opcode: 4, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_cbranch_scc1", Encoding: EncSOPP, Opcode: 5, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_cbranch_vccz", Encoding: EncSOPP, Opcode: 6, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_cbranch_vccnz", Encoding: EncSOPP, Opcode: 7, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_cbranch_execz", Encoding: EncSOPP, Opcode: 8, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_barrier", Encoding: EncSOPP, Opcode: 10, Arch: MaskAll, NumOperands: 0, HasDst: false},
	{Mnemonic: "s_waitcnt", Encoding: EncSOPP, Opcode: 12, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_sethalt", Encoding: EncSOPP, Opcode: 13, Arch: MaskAll, NumOperands: 1, HasDst: false},
	{Mnemonic: "s_sleep", Encoding: EncSOPP, Opcode: 14, Arch: MaskAll, NumOperands: 1, HasDst: false},

	// SMEM (scalar memory; named SMRD pre-1.2 but kept under one opcode
	// space here, per the coverage note).
	{Mnemonic: "s_load_dword", Encoding: EncSMEM, Opcode: 0, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_load_dwordx2", Encoding: EncSMEM, Opcode: 1, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_load_dwordx4", Encoding: EncSMEM, Opcode: 2, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "s_buffer_load_dword", Encoding: EncSMEM, Opcode: 8, Arch: MaskAll, NumOperands: 3, HasDst: true},

	// VOP1
	{Mnemonic: "v_nop", Encoding: EncVOP1, Opcode: 0, Arch: MaskAll, NumOperands: 0, HasDst: false},
	{Mnemonic: "v_mov_b32", Encoding: EncVOP1, Opcode: 1, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "v_cvt_f32_i32", Encoding: EncVOP1, Opcode: 5, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "v_cvt_f32_u32", Encoding: EncVOP1, Opcode: 6, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "v_rcp_f32", Encoding: EncVOP1, Opcode: 42, Arch: MaskAll, NumOperands: 2, HasDst: true},

	// VOP2 -- fixture: v_cndmask_b32 (opcode 0, verified against E5).
	{Mnemonic: "v_cndmask_b32", Encoding: EncVOP2, Opcode: 0, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "v_add_co_u32", Encoding: EncVOP2, Opcode: 25, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "v_sub_co_u32", Encoding: EncVOP2, Opcode: 26, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "v_mul_f32", Encoding: EncVOP2, Opcode: 8, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_add_f32", Encoding: EncVOP2, Opcode: 3, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_and_b32", Encoding: EncVOP2, Opcode: 27, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_or_b32", Encoding: EncVOP2, Opcode: 28, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_lshlrev_b32", Encoding: EncVOP2, Opcode: 30, Arch: MaskFrom1_2, NumOperands: 3, HasDst: true},

	// VOPC (a representative pair; the family is large and mechanically
	// identical in shape).
	{Mnemonic: "v_cmp_eq_f32", Encoding: EncVOPC, Opcode: 2, Arch: MaskAll, NumOperands: 2, HasDst: false},
	{Mnemonic: "v_cmp_lt_i32", Encoding: EncVOPC, Opcode: 65, Arch: MaskAll, NumOperands: 2, HasDst: false},

	// VOP3 -- three-source ALU ops that need a full 9-bit field per operand
	// plus OMOD/NEG/CLAMP, which VOP2's 8/9-bit packing has no room for.
	{Mnemonic: "v_mad_f32", Encoding: EncVOP3, Opcode: 449, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "v_mad_i32_i24", Encoding: EncVOP3, Opcode: 652, Arch: MaskAll, NumOperands: 4, HasDst: true},

	// VOP3P -- packed (dual f16) math, Vega and later.
	{Mnemonic: "v_pk_add_f16", Encoding: EncVOP3P, Opcode: 10, Arch: MaskFrom1_4, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_pk_mul_f16", Encoding: EncVOP3P, Opcode: 12, Arch: MaskFrom1_4, NumOperands: 3, HasDst: true},

	// VINTRP -- pixel-shader attribute interpolation.
	{Mnemonic: "v_interp_p1_f32", Encoding: EncVINTRP, Opcode: 0, Arch: MaskAll, NumOperands: 3, HasDst: true},
	{Mnemonic: "v_interp_p2_f32", Encoding: EncVINTRP, Opcode: 1, Arch: MaskAll, NumOperands: 3, HasDst: true},

	// DS -- LDS/GDS local memory.
	{Mnemonic: "ds_read_b32", Encoding: EncDS, Opcode: 54, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "ds_write_b32", Encoding: EncDS, Opcode: 13, Arch: MaskAll, NumOperands: 2, HasDst: false},

	// MUBUF -- untyped buffer memory.
	{Mnemonic: "buffer_load_dword", Encoding: EncMUBUF, Opcode: 4, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "buffer_store_dword", Encoding: EncMUBUF, Opcode: 28, Arch: MaskAll, NumOperands: 4, HasDst: false},

	// MTBUF -- typed buffer memory (adds a data/number format pair MUBUF
	// has no fields for).
	{Mnemonic: "tbuffer_load_format_x", Encoding: EncMTBUF, Opcode: 0, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "tbuffer_store_format_x", Encoding: EncMTBUF, Opcode: 4, Arch: MaskAll, NumOperands: 4, HasDst: false},

	// MIMG -- image/texture memory.
	{Mnemonic: "image_sample", Encoding: EncMIMG, Opcode: 0, Arch: MaskAll, NumOperands: 4, HasDst: true},
	{Mnemonic: "image_load", Encoding: EncMIMG, Opcode: 2, Arch: MaskAll, NumOperands: 3, HasDst: true},

	// EXP -- pixel/vertex shader parameter and render-target export.
	{Mnemonic: "exp", Encoding: EncEXP, Opcode: 0, Arch: MaskAll, NumOperands: 5, HasDst: false},

	// FLAT -- unified flat/global address-space memory.
	{Mnemonic: "flat_load_dword", Encoding: EncFLAT, Opcode: 16, Arch: MaskAll, NumOperands: 2, HasDst: true},
	{Mnemonic: "flat_store_dword", Encoding: EncFLAT, Opcode: 24, Arch: MaskAll, NumOperands: 2, HasDst: false},
}

var byMnemonic = func() map[string][]InstrDef {
	m := map[string][]InstrDef{}
	for _, d := range table {
		m[d.Mnemonic] = append(m[d.Mnemonic], d)
	}
	return m
}()

// Lookup returns the InstrDef rows for mnemonic legal under gen, as the
// teacher's encoder.go dispatches on opcode string (_examples/lcox74-bfcc/
// internal/codegen/linux/x86_64.go) generalized to also filter by
// generation legality.
func Lookup(mnemonic string, gen Generation) []InstrDef {
	rows := byMnemonic[mnemonic]
	return lo.Filter(rows, func(d InstrDef, _ int) bool { return d.Arch.Has(gen) })
}

// Mnemonics lists every mnemonic this module's table carries, for the
// decoder's reverse (opcode+encoding -> mnemonic) lookup.
func Mnemonics() []string { return lo.Keys(byMnemonic) }

// ByEncodingOpcode finds the row matching (enc, opcode) legal under gen,
// used by the decoder once it has split a word into its format's fields.
func ByEncodingOpcode(enc Encoding, opcode uint32, gen Generation) (InstrDef, bool) {
	for _, d := range table {
		if d.Encoding == enc && d.Opcode == opcode && d.Arch.Has(gen) {
			return d, true
		}
	}
	return InstrDef{}, false
}
