// Package galliumbin implements the Gallium (Mesa) OpenCL kernel container
// (§4.J): a custom, non-ELF outer framing — kernel count, per-kernel
// name/section/offset/argument records, a section table — where one
// section embeds the actual inner ELF carrying code and an
// ".AMDGPU.config" table of per-kernel PGM_RSRC/SCRATCH resource entries.
//
// Grounded on original_source/amdbin/GalliumBinaries.cpp: the
// GalliumBinary constructor (outer framing parse, lines ~276-400) and
// GalliumBinGenerator::generateInternal (outer framing write, lines
// ~775-920) for the custom container; GalliumElfBinaryBase::loadFromElf
// (lines ~45-120) for ".AMDGPU.config" entry sizing (3 entries pre-LLVM
// 3.9, 5 entries at LLVM >= 3.9, detected from entry size 24 vs 40 bytes).
package galliumbin

import (
	"encoding/binary"
	"fmt"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/binfmt"
	"github.com/clrx-go/clrx/pkg/elf"
)

// GalliumSectionType is a Gallium outer-container section's kind.
type GalliumSectionType uint32

const (
	GalliumSectionText GalliumSectionType = iota
	GalliumSectionData
	GalliumSectionBSS
)

func (t GalliumSectionType) String() string {
	switch t {
	case GalliumSectionText:
		return "TEXT"
	case GalliumSectionData:
		return "DATA"
	case GalliumSectionBSS:
		return "BSS"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint32(t))
	}
}

// GalliumArgType is a kernel argument's Gallium wire type.
type GalliumArgType uint32

const (
	GalliumArgScalar GalliumArgType = iota
	GalliumArgConstant
	GalliumArgGlobal
	GalliumArgLocal
	GalliumArgImage2DRdOnly
	GalliumArgImage2DWrOnly
	GalliumArgImage3DRdOnly
	GalliumArgImage3DWrOnly
	GalliumArgSampler
)

// GalliumArgSemantic further qualifies an argument's role beyond its type.
type GalliumArgSemantic uint32

const (
	GalliumArgSemGeneral GalliumArgSemantic = iota
	GalliumArgSemGridDim
	GalliumArgSemGridOffset
	GalliumArgSemImageSize
	GalliumArgSemImageFormat
)

// GalliumArg is one kernel argument's Gallium metadata record (wire size
// 24 bytes: six little-endian uint32 fields).
type GalliumArg struct {
	Type         GalliumArgType
	Size         uint32
	TargetSize   uint32
	TargetAlign  uint32
	SignExtended bool
	Semantic     GalliumArgSemantic
}

const galliumArgSize = 24

func decodeGalliumArg(b []byte) GalliumArg {
	return GalliumArg{
		Type:         GalliumArgType(binary.LittleEndian.Uint32(b)),
		Size:         binary.LittleEndian.Uint32(b[4:]),
		TargetSize:   binary.LittleEndian.Uint32(b[8:]),
		TargetAlign:  binary.LittleEndian.Uint32(b[12:]),
		SignExtended: binary.LittleEndian.Uint32(b[16:]) != 0,
		Semantic:     GalliumArgSemantic(binary.LittleEndian.Uint32(b[20:])),
	}
}

func (a GalliumArg) encode() []byte {
	b := make([]byte, galliumArgSize)
	binary.LittleEndian.PutUint32(b, uint32(a.Type))
	binary.LittleEndian.PutUint32(b[4:], a.Size)
	binary.LittleEndian.PutUint32(b[8:], a.TargetSize)
	binary.LittleEndian.PutUint32(b[12:], a.TargetAlign)
	if a.SignExtended {
		binary.LittleEndian.PutUint32(b[16:], 1)
	}
	binary.LittleEndian.PutUint32(b[20:], uint32(a.Semantic))
	return b
}

// GalliumKernel is one outer-container kernel record: its name, the
// section and byte offset its code lives at, and its argument table.
type GalliumKernel struct {
	Name      string
	SectionID uint32
	Offset    uint32
	Args      []GalliumArg
}

// GalliumSection is one outer-container section record. Exactly one
// section (of type GalliumSectionText) embeds the inner ELF.
type GalliumSection struct {
	ID   uint32
	Type GalliumSectionType
	Data []byte
}

// GalliumProgInfoEntry is one ".AMDGPU.config" (address, value) resource
// record (PGM_RSRC1/PGM_RSRC2/SCRATCH, plus SGPR/VGPR spill counts on
// LLVM >= 3.9 binaries).
type GalliumProgInfoEntry struct {
	Address uint32
	Value   uint32
}

// Binary is a parsed (or to-be-built) Gallium kernel container.
type Binary struct {
	Kernels  []GalliumKernel
	Sections []GalliumSection
	// LLVM390 selects the ".AMDGPU.config" entry count per kernel: 5
	// entries (40 bytes) when true, 3 entries (24 bytes) when false.
	LLVM390 bool
	// ProgInfo holds each kernel's config entries, indexed in the same
	// order as Kernels.
	ProgInfo [][]GalliumProgInfoEntry
}

var _ binfmt.InnerBinary = (*Binary)(nil)

func (b *Binary) ListKernels() []string {
	names := make([]string, len(b.Kernels))
	for i, k := range b.Kernels {
		names[i] = k.Name
	}
	return names
}

func (b *Binary) kernelIndex(name string) (int, error) {
	for i := range b.Kernels {
		if b.Kernels[i].Name == name {
			return i, nil
		}
	}
	return -1, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: no such kernel %q", name)
}

// textSection returns the section carrying the inner ELF.
func (b *Binary) textSection() ([]byte, error) {
	for _, s := range b.Sections {
		if s.Type == GalliumSectionText {
			return s.Data, nil
		}
	}
	return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: no TEXT section present")
}

// KernelCode returns the kernel's code bytes: the inner ELF's ".text"
// content starting at the kernel's recorded offset, continuing to the
// nearest higher offset recorded by any other kernel, or to the section
// end. Kernel order in the container does not matter here.
func (b *Binary) KernelCode(name string) ([]byte, error) {
	idx, err := b.kernelIndex(name)
	if err != nil {
		return nil, err
	}
	text, err := b.textSection()
	if err != nil {
		return nil, err
	}
	f, err := elf.Open(text)
	if err != nil {
		return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: inner ELF: %v", err)
	}
	_, code, ok := f.SectionByName(".text")
	if !ok {
		return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: inner ELF has no .text")
	}
	start := b.Kernels[idx].Offset
	end := uint32(len(code))
	for j, k := range b.Kernels {
		if j != idx && k.Offset > start && k.Offset < end {
			end = k.Offset
		}
	}
	if uint64(start) > uint64(len(code)) || uint64(end) > uint64(len(code)) || start > end {
		return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: kernel %q offset out of range", name)
	}
	return code[start:end], nil
}

// KernelMetadata returns the kernel's argument table, encoded back into
// its 24-byte-per-argument wire form.
func (b *Binary) KernelMetadata(name string) ([]byte, error) {
	idx, err := b.kernelIndex(name)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, a := range b.Kernels[idx].Args {
		out = append(out, a.encode()...)
	}
	return out, nil
}

// LoadProgInfo parses the inner ELF's ".AMDGPU.config" section into
// b.ProgInfo, one entry slice per kernel (5 entries/kernel on LLVM390
// binaries, 3 otherwise), per GalliumElfBinaryBase::loadFromElf's
// amdGPUConfigSize>>3 computation.
func (b *Binary) LoadProgInfo() error {
	text, err := b.textSection()
	if err != nil {
		return err
	}
	f, err := elf.Open(text)
	if err != nil {
		return asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: inner ELF: %v", err)
	}
	_, config, ok := f.SectionByName(".AMDGPU.config")
	if !ok {
		return asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: inner ELF has no .AMDGPU.config")
	}
	progInfo, err := ParseAMDGPUConfig(config, b.LLVM390, len(b.Kernels))
	if err != nil {
		return err
	}
	b.ProgInfo = progInfo
	return nil
}

// ParseAMDGPUConfig splits a raw ".AMDGPU.config" section's bytes into one
// entry slice per kernel, given the binary's LLVM390 flag.
func ParseAMDGPUConfig(data []byte, llvm390 bool, kernelsNum int) ([][]GalliumProgInfoEntry, error) {
	perKernel := 3
	if llvm390 {
		perKernel = 5
	}
	entrySize := perKernel * 8
	if kernelsNum <= 0 {
		return nil, nil
	}
	if len(data) != entrySize*kernelsNum {
		return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: .AMDGPU.config size %d does not match %d kernels * %d bytes", len(data), kernelsNum, entrySize)
	}
	out := make([][]GalliumProgInfoEntry, kernelsNum)
	for i := 0; i < kernelsNum; i++ {
		chunk := data[i*entrySize : (i+1)*entrySize]
		entries := make([]GalliumProgInfoEntry, perKernel)
		for j := 0; j < perKernel; j++ {
			entries[j] = GalliumProgInfoEntry{
				Address: binary.LittleEndian.Uint32(chunk[j*8:]),
				Value:   binary.LittleEndian.Uint32(chunk[j*8+4:]),
			}
		}
		out[i] = entries
	}
	return out, nil
}

// BuildAMDGPUConfig is ParseAMDGPUConfig's inverse.
func BuildAMDGPUConfig(progInfo [][]GalliumProgInfoEntry) []byte {
	var out []byte
	for _, entries := range progInfo {
		for _, e := range entries {
			var buf [8]byte
			binary.LittleEndian.PutUint32(buf[0:], e.Address)
			binary.LittleEndian.PutUint32(buf[4:], e.Value)
			out = append(out, buf[:]...)
		}
	}
	return out
}
