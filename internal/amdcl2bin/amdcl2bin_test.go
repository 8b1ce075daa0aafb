package amdcl2bin

import "testing"

func TestBuildParseRoundTrip(t *testing.T) {
	in := &Binary{
		GlobalData: []byte{1, 2, 3, 4, 5, 6, 7, 8},
		Kernels: []Kernel{
			{
				Header: KernelHeader{Name: "vecadd", SetupSize: 16, KernelArgsOffset: 0, KernelCodeOffset: 0, WorkGroupSize: [3]uint32{64, 1, 1}},
				Code:   []byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0},
			},
		},
	}
	in.Kernels[0].Metadata = buildKernelHeader(in.Kernels[0].Header)

	data := Build(in)
	out, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Kernels) != 1 {
		t.Fatalf("expected 1 kernel, got %d", len(out.Kernels))
	}
	if out.Kernels[0].Header.Name != "vecadd" {
		t.Fatalf("unexpected kernel name %q", out.Kernels[0].Header.Name)
	}
	if out.Kernels[0].Header.WorkGroupSize != [3]uint32{64, 1, 1} {
		t.Fatalf("unexpected work group size: %+v", out.Kernels[0].Header.WorkGroupSize)
	}
	if string(out.GlobalData) != string(in.GlobalData) {
		t.Fatalf("global data mismatch")
	}
	if string(out.Kernels[0].Code) != string(in.Kernels[0].Code) {
		t.Fatalf("kernel code mismatch: got %v want %v", out.Kernels[0].Code, in.Kernels[0].Code)
	}
}

func TestRelaRoundTrip(t *testing.T) {
	entries := []RelaEntry{
		{Offset: 0x10, Symbol: 3, Type: 1, Addend: -8},
		{Offset: 0x20, Symbol: 4, Type: 2, Addend: 16},
	}
	data := buildRela(entries)
	got := parseRela(data)
	if len(got) != 2 || got[0] != entries[0] || got[1] != entries[1] {
		t.Fatalf("rela round-trip mismatch: %+v != %+v", got, entries)
	}
}

func TestKernelHeaderRoundTrip(t *testing.T) {
	h := KernelHeader{Name: "k", SetupSize: 8, KernelArgsOffset: 24, KernelCodeOffset: 256, WorkGroupSize: [3]uint32{16, 16, 1}}
	raw := buildKernelHeader(h)
	got, err := parseKernelHeader("k", raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("header round-trip mismatch: %+v != %+v", got, h)
	}
}
