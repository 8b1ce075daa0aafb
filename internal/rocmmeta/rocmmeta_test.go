package rocmmeta

import (
	"reflect"
	"testing"
)

func seventeenArgKernel() Kernel {
	k := Kernel{
		Name: "vecadd", Symbol: "vecadd.kd", Language: "OpenCL C", LanguageVersion: []uint32{2, 0},
		GroupSegmentFixedSize: 0, PrivateSegmentFixedSize: 0,
		KernargSegmentSize: 17 * 8, KernargSegmentAlign: 8,
		WavefrontSize: 64, SgprCount: 12, VgprCount: 8,
		MaxFlatWorkgroupSize: 256, ReqdWorkgroupSize: []uint32{64, 1, 1},
	}
	for i := 0; i < 17; i++ {
		k.Args = append(k.Args, KernelArg{
			Name: "arg", TypeName: "float*", Size: 8, Offset: uint64(i) * 8,
			ValueKind: ValueGlobalBuffer, ValueType: "f32", AddressSpace: AddrGlobal,
		})
	}
	return k
}

// E8: a 17-argument kernel's MsgPack encoding must re-parse to a
// structurally-equal tree.
func TestEncodeDecodeRoundTrip17Args(t *testing.T) {
	m := &Metadata{
		Version: []uint32{1, 0},
		Kernels: []Kernel{seventeenArgKernel()},
		Printf:  []PrintfInfo{{ID: 1, ArgSizes: []uint32{4, 8}, FormatStr: "result=%d,%ld\n"}},
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.Version, got.Version) {
		t.Fatalf("version mismatch: %v != %v", m.Version, got.Version)
	}
	if len(got.Kernels) != 1 || len(got.Kernels[0].Args) != 17 {
		t.Fatalf("expected 1 kernel with 17 args, got %d kernels, %d args",
			len(got.Kernels), len(got.Kernels[0].Args))
	}
	if !reflect.DeepEqual(m.Kernels[0], got.Kernels[0]) {
		t.Fatalf("kernel round-trip mismatch:\nwant %+v\ngot  %+v", m.Kernels[0], got.Kernels[0])
	}
	if !reflect.DeepEqual(m.Printf, got.Printf) {
		t.Fatalf("printf round-trip mismatch: %+v != %+v", m.Printf, got.Printf)
	}
}

// Boundary case: a 0-argument kernel must encode and decode cleanly too.
func TestEncodeDecodeZeroArgKernel(t *testing.T) {
	m := &Metadata{Version: []uint32{1, 0}, Kernels: []Kernel{{
		Name: "noop", Symbol: "noop.kd", KernargSegmentAlign: 8, WavefrontSize: 64,
	}}}
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Kernels) != 1 || len(got.Kernels[0].Args) != 0 {
		t.Fatalf("expected 1 kernel with 0 args, got %+v", got.Kernels)
	}
}

// Boundary case: a 64-argument kernel.
func TestEncodeDecode64ArgKernel(t *testing.T) {
	k := Kernel{Name: "big", Symbol: "big.kd", KernargSegmentAlign: 8, WavefrontSize: 64}
	for i := 0; i < 64; i++ {
		k.Args = append(k.Args, KernelArg{Size: 4, Offset: uint64(i) * 4, ValueKind: ValueByValue, ValueType: "i32"})
	}
	m := &Metadata{Version: []uint32{1, 0}, Kernels: []Kernel{k}}
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Kernels[0].Args) != 64 {
		t.Fatalf("expected 64 args, got %d", len(got.Kernels[0].Args))
	}
}

func TestPrintfCodec(t *testing.T) {
	infos := []PrintfInfo{{ID: 3, ArgSizes: []uint32{4, 4, 8}, FormatStr: "x=%d y=%d z=%ld"}}
	raw := encodePrintfs(infos)
	back := decodePrintfs(raw)
	if !reflect.DeepEqual(infos, back) {
		t.Fatalf("printf codec round-trip mismatch: %+v != %+v", infos, back)
	}
}
