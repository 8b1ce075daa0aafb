// Package isa holds the GCN instruction-set tables shared by the encoder
// (internal/gcn/asm) and decoder (internal/gcn/disasm): generations,
// register field conventions, per-encoding bit layouts, and the
// mnemonic-keyed instruction table. It is grounded on the teacher's
// pkg/amd64 instruction set (_examples/lcox74-bfcc/pkg/amd64/instructions.go)
// generalized from "one Go function per x86_64 instruction, hand-picked for
// the Brainfuck backend's needs" to "one table row per GCN mnemonic,
// dispatched generically by encoding format" — the teacher's own
// dispatcher, pkg/amd64/encoder.go, is the direct model for Lookup below.
package isa

// Generation enumerates the GCN/RDNA generations named in the Glossary.
type Generation int

const (
	Gen1_0 Generation = iota
	Gen1_1
	Gen1_2
	Gen1_4
	Gen1_4_1
	Gen1_5
	Gen1_5_1
	Gen1_5Wave32
)

var genNames = [...]string{
	Gen1_0: "GCN1.0", Gen1_1: "GCN1.1", Gen1_2: "GCN1.2",
	Gen1_4: "GCN1.4", Gen1_4_1: "GCN1.4.1",
	Gen1_5: "GCN1.5", Gen1_5_1: "GCN1.5.1", Gen1_5Wave32: "GCN1.5(wave32)",
}

func (g Generation) String() string {
	if int(g) < 0 || int(g) >= len(genNames) {
		return "unknown"
	}
	return genNames[g]
}

// ArchMask is a bitmask over Generation, letting one table row declare
// legality across several generations at once.
type ArchMask uint16

func MaskOf(gens ...Generation) ArchMask {
	var m ArchMask
	for _, g := range gens {
		m |= 1 << uint(g)
	}
	return m
}

// Has reports whether g is legal under m.
func (m ArchMask) Has(g Generation) bool {
	return m&(1<<uint(g)) != 0
}

// MaskAll covers every generation this module implements.
var MaskAll = MaskOf(Gen1_0, Gen1_1, Gen1_2, Gen1_4, Gen1_4_1, Gen1_5, Gen1_5_1, Gen1_5Wave32)

// MaskFrom1_2 covers GCN1.2 and later (DPP/SDWA-bearing generations).
var MaskFrom1_2 = MaskOf(Gen1_2, Gen1_4, Gen1_4_1, Gen1_5, Gen1_5_1, Gen1_5Wave32)

// MaskFrom1_4 covers GCN1.4 (Vega) and later, where packed-math VOP3P
// instructions were introduced.
var MaskFrom1_4 = MaskOf(Gen1_4, Gen1_4_1, Gen1_5, Gen1_5_1, Gen1_5Wave32)
