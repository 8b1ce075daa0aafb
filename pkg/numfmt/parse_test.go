package numfmt

import (
	"math"
	"testing"
)

func TestParseIntBases(t *testing.T) {
	tests := []struct {
		text string
		want uint64
	}{
		{"0x1A", 0x1a},
		{"0X1a", 0x1a},
		{"0b1011", 0b1011},
		{"0B1011", 0b1011},
		{"017", 017},
		{"0", 0},
		{"123", 123},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseInt(tt.text, 64, false)
			if err != nil {
				t.Fatalf("ParseInt(%q) error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q) = %#x, want %#x", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseIntErrors(t *testing.T) {
	tests := []string{"", "0xZZ", "0x", "99999999999999999999999999"}
	for _, text := range tests {
		if _, err := ParseInt(text, 32, false); err == nil {
			t.Errorf("ParseInt(%q) expected error, got none", text)
		}
	}
}

func TestHalfRoundTripExactValues(t *testing.T) {
	tests := []struct {
		v    float64
		bits uint16
	}{
		{0, 0x0000},
		{1, 0x3c00},
		{-1, 0xbc00},
		{2, 0x4000},
		{0.5, 0x3800},
		{65504, 0x7bff}, // largest finite half
	}
	for _, tt := range tests {
		if got := Float64ToHalfBits(tt.v); got != tt.bits {
			t.Errorf("Float64ToHalfBits(%v) = %#04x, want %#04x", tt.v, got, tt.bits)
		}
		if got := HalfBitsToFloat64(tt.bits); got != tt.v {
			t.Errorf("HalfBitsToFloat64(%#04x) = %v, want %v", tt.bits, got, tt.v)
		}
	}
}

// TestHalfRoundingCarryIntoExponent covers a float32 whose mantissa rounds
// up to 0x400 while the target half-exponent's own LSB is already set: the
// carry must add into the exponent field rather than collide with it.
func TestHalfRoundingCarryIntoExponent(t *testing.T) {
	f := math.Float32frombits(0x3AFFFFFF) // biased exp 117, mantissa 0x7fffff
	v := float64(f)
	const want = 0x1800 // exponent 6, mantissa 0
	if got := Float64ToHalfBits(v); got != want {
		t.Errorf("Float64ToHalfBits(%v) = %#04x, want %#04x", v, got, want)
	}
}

func TestFormatUintRadix(t *testing.T) {
	tests := []struct {
		v    uint64
		r    Radix
		want string
	}{
		{0x1a, Radix{Base: 16, Prefix: true}, "0x1a"},
		{0x1a, Radix{Base: 16, Prefix: true, Uppercase: true}, "0x1A"},
		{5, Radix{Base: 2, Prefix: true, MinWidth: 4}, "0b0101"},
		{255, Decimal, "255"},
	}
	for _, tt := range tests {
		if got := FormatUint(tt.v, tt.r); got != tt.want {
			t.Errorf("FormatUint(%d, %+v) = %q, want %q", tt.v, tt.r, got, tt.want)
		}
	}
}
