package asm

import (
	"encoding/binary"
	"testing"

	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/internal/section"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func newCtx(gen isa.Generation) *Context {
	s := section.New(".text", section.TypeProgBits, section.FlagExecutable, 4, true)
	return &Context{Section: s, SectionID: expr.SectionID(1), Scope: expr.NewScope(nil), Gen: gen, File: "t.s"}
}

func wordAt(t *testing.T, ctx *Context, off int) uint32 {
	t.Helper()
	c := ctx.Section.Content()
	return binary.LittleEndian.Uint32(c[off : off+4])
}

// E3: s_add_u32 s21, s4, s61 -> 0x80153d04
func TestEncodeSOP2Fixture(t *testing.T) {
	ctx := newCtx(isa.Gen1_0)
	off, err := EncodeLine(ctx, "s_add_u32 s21, s4, s61")
	if err != nil {
		t.Fatal(err)
	}
	if got := wordAt(t, ctx, off); got != 0x80153d04 {
		t.Fatalf("word = %#x, want 0x80153d04", got)
	}
}

// Spec §9 Open Question: s_add_u32 s21, s4, s103 on GCN1.5 -> 0x80156704,
// resolved by treating the field as the physical register number directly.
func TestEncodeSOP2HighSGPR(t *testing.T) {
	ctx := newCtx(isa.Gen1_5)
	off, err := EncodeLine(ctx, "s_add_u32 s21, s4, s103")
	if err != nil {
		t.Fatal(err)
	}
	if got := wordAt(t, ctx, off); got != 0x80156704 {
		t.Fatalf("word = %#x, want 0x80156704", got)
	}
}

// E4: s_setreg_imm32_b32 hwreg(trapsts, 3, 10), 0x45d2a
// -> 0xba0048c3 0x00045d2a
func TestEncodeSOPKHWRegFixture(t *testing.T) {
	ctx := newCtx(isa.Gen1_0)
	off, err := EncodeLine(ctx, "s_setreg_imm32_b32 hwreg(trapsts, 3, 10), 0x45d2a")
	if err != nil {
		t.Fatal(err)
	}
	if got := wordAt(t, ctx, off); got != 0xba0048c3 {
		t.Fatalf("word0 = %#x, want 0xba0048c3", got)
	}
	if got := wordAt(t, ctx, off+4); got != 0x00045d2a {
		t.Fatalf("word1 = %#x, want 0x00045d2a", got)
	}
}

// E5: v_cndmask_b32 v154, 0x445aa, v107, vcc -> 0x0134d6ff 0x000445aa
func TestEncodeVOP2LiteralFixture(t *testing.T) {
	ctx := newCtx(isa.Gen1_0)
	off, err := EncodeLine(ctx, "v_cndmask_b32 v154, 0x445aa, v107, vcc")
	if err != nil {
		t.Fatal(err)
	}
	if got := wordAt(t, ctx, off); got != 0x0134d6ff {
		t.Fatalf("word0 = %#x, want 0x0134d6ff", got)
	}
	if got := wordAt(t, ctx, off+4); got != 0x000445aa {
		t.Fatalf("word1 = %#x, want 0x000445aa", got)
	}
}

// E6 (encode direction): three s_branch instructions at offsets 0, 4, 8
// targeting labels at 0x910 and 0x420 must reproduce
// 0xbf820243 0xbf820106 0xbf820105.
func TestEncodeSOPPBranchFixture(t *testing.T) {
	ctx := newCtx(isa.Gen1_0)

	off0, err := EncodeLine(ctx, "s_branch .L2320_0")
	if err != nil {
		t.Fatal(err)
	}
	off1, err := EncodeLine(ctx, "s_branch .L1056_0")
	if err != nil {
		t.Fatal(err)
	}
	off2, err := EncodeLine(ctx, "s_branch .L1056_0")
	if err != nil {
		t.Fatal(err)
	}

	res := expr.NewResolver()
	l1056 := ctx.Scope.DefineSymbol(".L1056_0")
	l2320 := ctx.Scope.DefineSymbol(".L2320_0")
	res.Define(l1056, srcpos.Position{}, ctx.SectionID, 1056)
	res.Define(l2320, srcpos.Position{}, ctx.SectionID, 2320)

	if got := wordAt(t, ctx, off0); got != 0xbf820243 {
		t.Fatalf("word0 = %#x, want 0xbf820243", got)
	}
	if got := wordAt(t, ctx, off1); got != 0xbf820106 {
		t.Fatalf("word1 = %#x, want 0xbf820106", got)
	}
	if got := wordAt(t, ctx, off2); got != 0xbf820105 {
		t.Fatalf("word2 = %#x, want 0xbf820105", got)
	}
}

func TestInlineIntConstantNoLiteralWord(t *testing.T) {
	ctx := newCtx(isa.Gen1_0)
	off, err := EncodeLine(ctx, "s_add_u32 s0, s1, 5")
	if err != nil {
		t.Fatal(err)
	}
	if size := ctx.Section.Size(); size != off+4 {
		t.Fatalf("inline constant 5 should not emit a trailing literal word, section size = %d", size)
	}
}
