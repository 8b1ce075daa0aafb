// Package section implements the append-mostly byte-section model of
// §4.D: ordered content with patchable slots, alignment, code-flow
// entries, relocations, and the per-section auxiliary handlers named in
// the Data Model. It is grounded on the teacher's elf.Segment/
// elf.Builder.AddLoadSegment shape (_examples/lcox74-bfcc/pkg/elf/elf.go),
// generalized from "one segment per loaded OS image" to "one section per
// assembler section," and on its x86_64 backend's jumpFixup/resolveFixups
// mechanism (internal/codegen/linux/x86_64.go), generalized from two fixup
// kinds resolved in one final pass to arbitrary relocations resolved
// incrementally as symbols resolve.
package section

import "github.com/clrx-go/clrx/internal/expr"

// Type distinguishes what a section's bytes represent; NOBITS sections
// (like ELF's SHT_NOBITS) carry a Size but no Content.
type Type int

const (
	TypeProgBits Type = iota
	TypeNoBits
	TypeStrTab
	TypeSymTab
	TypeNote
	TypeRelocation
)

// Flags is a bitmask of the section attributes named in the Data Model.
type Flags uint16

const (
	FlagWritable Flags = 1 << iota
	FlagReadable
	FlagExecutable
	FlagAbsAddr
	FlagCode
)

// KernelID names the owning kernel of a section, or NoKernel for sections
// not tied to one (e.g. a shared .text holding several kernels' code).
type KernelID int

const NoKernel KernelID = -1

// CodeFlowKind classifies one entry in a section's code-flow list.
type CodeFlowKind int

const (
	FlowJump CodeFlowKind = iota
	FlowCondJump
	FlowCall
	FlowReturn
	FlowStart
	FlowEnd
)

// CodeFlowEntry records one control-flow point discovered while assembling
// or disassembling a section: an instruction at Offset that (for jump/call
// kinds) targets TargetOffset once resolved.
type CodeFlowEntry struct {
	Offset       int
	TargetOffset int64
	TargetSec    expr.SectionID
	Kind         CodeFlowKind
	resolved     bool
}

// Section is one entry in the assembler's section table.
type Section struct {
	Name       string
	Kernel     KernelID
	Type       Type
	Flags      Flags
	Align      int
	RelSpace   int // relative-space id, for address arithmetic across sections sharing a base
	RelAddress uint64

	content []byte // nil for sections that carry size only (TypeNoBits)
	size    int

	CodeFlow []CodeFlowEntry

	// Relocations holds every relocation this section's content still needs
	// once a referenced symbol never resolved locally (§4.E "Relocations").
	Relocations Table

	ISAUsage   *UsageHandler
	LinearDeps *LinearDepHandler
	WaitStates *WaitStateHandler
}

// New creates a section. NOBITS sections should pass hasContent=false.
func New(name string, typ Type, flags Flags, align int, hasContent bool) *Section {
	s := &Section{Name: name, Kernel: NoKernel, Type: typ, Flags: flags, Align: maxInt(align, 1)}
	if hasContent {
		s.content = make([]byte, 0, 256)
	}
	s.ISAUsage = newUsageHandler()
	s.LinearDeps = newLinearDepHandler()
	s.WaitStates = newWaitStateHandler()
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Size returns the section's current length in bytes, whether or not it
// carries real content.
func (s *Section) Size() int {
	if s.content != nil {
		return len(s.content)
	}
	return s.size
}

// Content returns the section's backing bytes (nil for NOBITS sections).
func (s *Section) Content() []byte { return s.content }

// Append writes data at the current end of the section and returns the
// offset it was written at.
func (s *Section) Append(data []byte) int {
	offset := s.Size()
	if s.content != nil {
		s.content = append(s.content, data...)
	} else {
		s.size += len(data)
	}
	return offset
}

// Grow extends a NOBITS section by n zero bytes (conceptually; no bytes
// are actually stored) and returns the offset it starts at.
func (s *Section) Grow(n int) int {
	offset := s.Size()
	s.size += n
	return offset
}

// AlignTo pads the section with zero bytes until its size is a multiple of
// align, per §4.D "Alignment directives grow the content with zero fill
// rounded up."
func (s *Section) AlignTo(align int) {
	if align <= 1 {
		return
	}
	cur := s.Size()
	rem := cur % align
	if rem == 0 {
		return
	}
	s.Append(make([]byte, align-rem))
}

// WriteAt patches previously written bytes in place; it satisfies
// expr.DataWriter so an Expression's TargetData can patch a section
// without internal/section importing internal/expr's Target types.
func (s *Section) WriteAt(offset int, data []byte) {
	if s.content == nil {
		return // NOBITS sections carry no patchable bytes
	}
	copy(s.content[offset:offset+len(data)], data)
}

// AddCodeFlow appends a code-flow entry and returns its index, which a
// caller can hand to SetCodeFlowTarget (directly, or via an
// expr.TargetCodeFlow) once the branch target resolves.
func (s *Section) AddCodeFlow(offset int, kind CodeFlowKind) int {
	s.CodeFlow = append(s.CodeFlow, CodeFlowEntry{Offset: offset, Kind: kind, TargetSec: expr.UndefSection})
	return len(s.CodeFlow) - 1
}

// AddRelocation records a relocation against this section's content,
// returning its index in Relocations.
func (s *Section) AddRelocation(r Relocation) int {
	s.Relocations.Add(r)
	return len(s.Relocations.Entries()) - 1
}

// SetCodeFlowTarget satisfies expr.CodeFlowSetter.
func (s *Section) SetCodeFlowTarget(entryIndex int, value int64, sec expr.SectionID) {
	e := &s.CodeFlow[entryIndex]
	e.TargetOffset = value
	e.TargetSec = sec
	e.resolved = true
}
