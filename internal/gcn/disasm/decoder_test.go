package disasm

import (
	"strings"
	"testing"

	"github.com/clrx-go/clrx/internal/gcn/isa"
)

func wordsToBytes(words ...uint32) []byte {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = append(b, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return b
}

// E3: 0x80153d04 -> s_add_u32 s21, s4, s61
func TestDecodeSOP2Fixture(t *testing.T) {
	d := New(wordsToBytes(0x80153d04), isa.Gen1_0, 0)
	out := d.Decode()
	if !strings.Contains(out, "s_add_u32") || !strings.Contains(out, "s21") ||
		!strings.Contains(out, "s4") || !strings.Contains(out, "s61") {
		t.Fatalf("decode = %q, missing expected operands", out)
	}
}

// E4: 0xba0048c3 0x00045d2a -> s_setreg_imm32_b32 hwreg(trapsts,3,10), 0x45d2a
func TestDecodeSOPKHWRegFixture(t *testing.T) {
	d := New(wordsToBytes(0xba0048c3, 0x00045d2a), isa.Gen1_0, 0)
	out := d.Decode()
	if !strings.Contains(out, "s_setreg_imm32_b32") || !strings.Contains(out, "hwreg(trapsts, 3, 10)") ||
		!strings.Contains(out, "0x45d2a") {
		t.Fatalf("decode = %q, missing expected hwreg/imm32", out)
	}
}

// E5: 0x0134d6ff 0x000445aa -> v_cndmask_b32 v154, 0x445aa, v107, vcc
func TestDecodeVOP2LiteralFixture(t *testing.T) {
	d := New(wordsToBytes(0x0134d6ff, 0x000445aa), isa.Gen1_0, 0)
	out := d.Decode()
	for _, want := range []string{"v_cndmask_b32", "v154", "0x445aa", "v107", "vcc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("decode = %q, missing %q", out, want)
		}
	}
}

// E6: three s_branch words decode with operands naming the expected
// absolute byte-offset labels (2320 and 1056), matching spec §8's worked
// example. The labels' own definitions fall outside this 3-word fragment
// (as in the spec's excerpt), so only the branch operands are checked here.
func TestDecodeSOPPBranchFixture(t *testing.T) {
	d := New(wordsToBytes(0xbf820243, 0xbf820106, 0xbf820105), isa.Gen1_0, 0)
	out := d.Decode()
	if !strings.Contains(out, ".L2320_0") {
		t.Fatalf("decode = %q, missing .L2320_0 operand", out)
	}
	if !strings.Contains(out, ".L1056_0") {
		t.Fatalf("decode = %q, missing .L1056_0 operand", out)
	}
	if strings.Count(out, "s_branch") != 3 {
		t.Fatalf("decode = %q, want 3 s_branch instructions", out)
	}
}
