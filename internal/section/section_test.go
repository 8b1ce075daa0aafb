package section

import (
	"bytes"
	"testing"

	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func TestAppendAndAlign(t *testing.T) {
	s := New(".text", TypeProgBits, FlagReadable|FlagExecutable, 4, true)
	off := s.Append([]byte{1, 2, 3})
	if off != 0 {
		t.Fatalf("first append offset = %d, want 0", off)
	}
	s.AlignTo(4)
	if s.Size() != 4 {
		t.Fatalf("size after align = %d, want 4", s.Size())
	}
	if !bytes.Equal(s.Content(), []byte{1, 2, 3, 0}) {
		t.Fatalf("content = %v, want padded to 4 bytes", s.Content())
	}
}

func TestWriteAtPatchesExistingBytes(t *testing.T) {
	s := New(".data", TypeProgBits, FlagWritable|FlagReadable, 1, true)
	s.Append([]byte{0, 0, 0, 0})
	s.WriteAt(0, []byte{0xef, 0xbe, 0xad, 0xde})
	if !bytes.Equal(s.Content(), []byte{0xef, 0xbe, 0xad, 0xde}) {
		t.Fatalf("content = %x, want deadbeef little-endian bytes", s.Content())
	}
}

// E2 from spec §8: ".int end - start; start: .fill 10, 1, 0; end:"
func TestForwardFillScenario(t *testing.T) {
	s := New(".text", TypeProgBits, FlagReadable, 1, true)
	scope := expr.NewScope(nil)
	res := expr.NewResolver()

	intExpr, err := expr.NewParser("end - start", scope, "e2.s").Parse()
	if err != nil {
		t.Fatal(err)
	}
	dataOffset := s.Append(make([]byte, 4))
	intExpr.SetTarget(expr.TargetData{Writer: s, Offset: dataOffset, Width: expr.Width32})

	start := scope.DefineSymbol("start")
	res.Define(start, srcpos.Position{}, expr.SectionID(1), uint64(s.Append(nil)))
	s.Append(make([]byte, 10)) // .fill 10, 1, 0
	end := scope.DefineSymbol("end")
	res.Define(end, srcpos.Position{}, expr.SectionID(1), uint64(s.Size()))

	want := []byte{0x0a, 0x00, 0x00, 0x00}
	got := s.Content()[dataOffset : dataOffset+4]
	if !bytes.Equal(got, want) {
		t.Fatalf(".int end-start = %x, want %x", got, want)
	}
	for _, b := range s.Content()[dataOffset+4 : dataOffset+4+10] {
		if b != 0 {
			t.Fatalf(".fill region not zero: %v", s.Content()[dataOffset+4:dataOffset+14])
		}
	}
}

func TestCodeFlowTargetViaExprTarget(t *testing.T) {
	s := New(".text", TypeProgBits, FlagExecutable, 4, true)
	idx := s.AddCodeFlow(0, FlowJump)

	scope := expr.NewScope(nil)
	res := expr.NewResolver()
	e, err := expr.NewParser("label", scope, "cf.s").Parse()
	if err != nil {
		t.Fatal(err)
	}
	e.SetTarget(expr.TargetCodeFlow{Setter: s, Entry: idx})

	label := scope.DefineSymbol("label")
	res.Define(label, srcpos.Position{}, expr.SectionID(1), 0x420)

	if s.CodeFlow[idx].TargetOffset != 0x420 {
		t.Fatalf("code flow target = %#x, want 0x420", s.CodeFlow[idx].TargetOffset)
	}
}
