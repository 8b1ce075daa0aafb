package galliumbin

import (
	"reflect"
	"testing"

	"github.com/clrx-go/clrx/pkg/elf"
)

func buildInnerELF(t *testing.T, code []byte) []byte {
	t.Helper()
	bld := elf.NewBuilderFor(elf.EM_AMDGPU, elf.ET_REL)
	bld.AddSection(elf.Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: code, AddrAlign: 4})
	return bld.Build()
}

func TestContainerRoundTrip(t *testing.T) {
	code := make([]byte, 64)
	for i := range code {
		code[i] = byte(i)
	}
	inner := buildInnerELF(t, code)

	b := &Binary{
		Kernels: []GalliumKernel{
			{Name: "add", SectionID: 1, Offset: 0, Args: []GalliumArg{
				{Type: GalliumArgGlobal, Size: 8, TargetSize: 8, TargetAlign: 8},
				{Type: GalliumArgScalar, Size: 4, TargetSize: 4, TargetAlign: 4},
			}},
			{Name: "mul", SectionID: 1, Offset: 32, Args: []GalliumArg{
				{Type: GalliumArgGlobal, Size: 8, TargetSize: 8, TargetAlign: 8, SignExtended: true, Semantic: GalliumArgSemGridDim},
			}},
		},
		Sections: []GalliumSection{
			{ID: 1, Type: GalliumSectionText, Data: inner},
		},
	}

	data := Build(b)
	out, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Kernels, b.Kernels) {
		t.Fatalf("kernels mismatch: %+v != %+v", out.Kernels, b.Kernels)
	}
	if len(out.Sections) != 1 || string(out.Sections[0].Data) != string(inner) {
		t.Fatalf("section data mismatch")
	}

	names := out.ListKernels()
	if len(names) != 2 || names[0] != "add" || names[1] != "mul" {
		t.Fatalf("unexpected kernel list: %v", names)
	}

	addCode, err := out.KernelCode("add")
	if err != nil {
		t.Fatal(err)
	}
	if string(addCode) != string(code[0:32]) {
		t.Fatalf("add kernel code mismatch: got %v", addCode)
	}

	mulCode, err := out.KernelCode("mul")
	if err != nil {
		t.Fatal(err)
	}
	if string(mulCode) != string(code[32:64]) {
		t.Fatalf("mul kernel code mismatch: got %v", mulCode)
	}

	meta, err := out.KernelMetadata("mul")
	if err != nil {
		t.Fatal(err)
	}
	if len(meta) != galliumArgSize {
		t.Fatalf("unexpected metadata length %d", len(meta))
	}
}

func TestAMDGPUConfigRoundTripPreLLVM390(t *testing.T) {
	progInfo := [][]GalliumProgInfoEntry{
		{{Address: 0x80001000, Value: 0x42}, {Address: 0x80001001, Value: 0x7}, {Address: 0x80000a}},
		{{Address: 0x80001000, Value: 0x10}, {Address: 0x80001001, Value: 0x3}, {Address: 0x80000a, Value: 2}},
	}
	data := BuildAMDGPUConfig(progInfo)
	got, err := ParseAMDGPUConfig(data, false, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, progInfo) {
		t.Fatalf("proginfo mismatch: %+v != %+v", got, progInfo)
	}
}

func TestAMDGPUConfigRoundTripLLVM390(t *testing.T) {
	progInfo := [][]GalliumProgInfoEntry{
		{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}},
	}
	data := BuildAMDGPUConfig(progInfo)
	got, err := ParseAMDGPUConfig(data, true, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, progInfo) {
		t.Fatalf("proginfo mismatch: %+v != %+v", got, progInfo)
	}
	if len(data) != 40 {
		t.Fatalf("expected 40 bytes for llvm390 entry, got %d", len(data))
	}
}

func TestAMDGPUConfigSizeMismatch(t *testing.T) {
	if _, err := ParseAMDGPUConfig(make([]byte, 10), false, 2); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestLoadProgInfo(t *testing.T) {
	progInfo := [][]GalliumProgInfoEntry{
		{{Address: 0x80001000, Value: 1}, {Address: 0x80001001, Value: 2}, {Address: 0x80001002, Value: 3}},
	}
	config := BuildAMDGPUConfig(progInfo)

	bld := elf.NewBuilderFor(elf.EM_AMDGPU, elf.ET_REL)
	bld.AddSection(elf.Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: make([]byte, 16), AddrAlign: 4})
	bld.AddSection(elf.Section{Name: ".AMDGPU.config", Type: elf.SHT_PROGBITS, Data: config, AddrAlign: 4})
	inner := bld.Build()

	b := &Binary{
		Kernels:  []GalliumKernel{{Name: "k", SectionID: 1}},
		Sections: []GalliumSection{{ID: 1, Type: GalliumSectionText, Data: inner}},
	}
	if err := b.LoadProgInfo(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.ProgInfo, progInfo) {
		t.Fatalf("proginfo mismatch: %+v != %+v", b.ProgInfo, progInfo)
	}
}
