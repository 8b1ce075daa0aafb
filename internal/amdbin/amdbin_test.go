package amdbin

import (
	"reflect"
	"testing"
)

func TestKernelMetadataRoundTrip(t *testing.T) {
	args := []KernelArgMeta{
		{Kind: ArgPointer, Name: "input", Type: "float", VectorSize: 1},
		{Kind: ArgValue, Name: "count", Type: "int", VectorSize: 1},
	}
	data := BuildKernelMetadata(args)
	got, err := ParseKernelMetadata(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(args, got) {
		t.Fatalf("metadata round-trip mismatch: %+v != %+v", args, got)
	}
}

func TestCALNoteRoundTrip(t *testing.T) {
	notes := []CALNote{
		{Type: CALNoteProgInfo, Desc: BuildProgInfo([]ProgInfoEntry{{Address: 0x80001000, Value: 4}, {Address: 0x80001001, Value: 8}})},
		{Type: CALNoteEarlyExit, Desc: []byte{1, 0, 0, 0}},
	}
	data := BuildCALNotes(notes)
	got, err := ParseCALNotes(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Type != CALNoteProgInfo || got[1].Type != CALNoteEarlyExit {
		t.Fatalf("unexpected notes: %+v", got)
	}
	entries := ParseProgInfo(got[0].Desc)
	if len(entries) != 2 || entries[0].Address != 0x80001000 || entries[0].Value != 4 {
		t.Fatalf("unexpected proginfo entries: %+v", entries)
	}
}

func TestMainBinaryBuildParseRoundTrip(t *testing.T) {
	in := &MainBinary{
		CompileOpts: "-cl-std=CL1.2",
		Kernels: []Kernel{
			{
				Name:     "vecadd",
				InnerELF: []byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
				Args: []KernelArgMeta{
					{Kind: ArgPointer, Name: "a", Type: "float", VectorSize: 1},
					{Kind: ArgPointer, Name: "b", Type: "float", VectorSize: 1},
				},
			},
		},
	}
	data := Build(in)
	out, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Kernels) != 1 || out.Kernels[0].Name != "vecadd" {
		t.Fatalf("unexpected kernels: %+v", out.Kernels)
	}
	if !reflect.DeepEqual(out.Kernels[0].Args, in.Kernels[0].Args) {
		t.Fatalf("args mismatch: %+v != %+v", out.Kernels[0].Args, in.Kernels[0].Args)
	}
	if string(out.Kernels[0].InnerELF) != string(in.Kernels[0].InnerELF) {
		t.Fatalf("inner ELF bytes mismatch")
	}
}
