// Package amdcl2bin implements the AMDCL2 (OpenCL 2.0) binary container
// (§4.H–J): same outer-ELF shape as internal/amdbin, but the inner
// ".text" is itself an ELF holding a code segment, global data, rw data,
// bss, sampler-init data, a ".rela.hsatext" relocation section, and a
// kernel-header/metadata pair per kernel. Driver-version detection walks
// symbol names and a single byte in ".note"; the device table is then
// selected by driver-version range.
//
// Grounded on original_source/amdbin/AmdCL2Binaries.cpp's
// AmdCL2MainGPUBinaryBase constructor (driver-version detection, lines
// ~537-720) and its inner-binary section layout (lines ~35-260), and the
// teacher's internal/codegen/linux/x86_64.go GenerateELF() shape for
// "assemble payload bytes, hand to an ELF builder".
package amdcl2bin

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/binfmt"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func mainPos() srcpos.Position { return srcpos.Position{File: "amdcl2bin"} }

// KernelHeader is one kernel's fixed-size descriptor record preceding its
// metadata bytes in the inner ELF's kernel-header section.
type KernelHeader struct {
	Name               string
	SetupSize          uint32
	KernelArgsOffset    uint32
	KernelCodeOffset    uint32
	WorkGroupSize      [3]uint32
}

// Kernel is one AMDCL2 kernel: its header, raw metadata bytes, and a
// slice of its own code carved from the inner ELF's shared ".text".
type Kernel struct {
	Header   KernelHeader
	Metadata []byte
	Code     []byte
}

// Binary is a parsed (or to-be-built) AMDCL2 container.
type Binary struct {
	Kernels       []Kernel
	GlobalData    []byte
	RWData        []byte
	BSSSize       uint32
	SamplerInit   []byte
	RelaEntries   []RelaEntry
	DriverVersion uint32
}

// RelaEntry is one ".rela.hsatext" relocation: offset, symbol index,
// relocation type, and addend, matching Elf64_Rela's layout.
type RelaEntry struct {
	Offset uint64
	Symbol uint32
	Type   uint32
	Addend int64
}

var _ binfmt.InnerBinary = (*Binary)(nil)

func (b *Binary) ListKernels() []string {
	names := make([]string, len(b.Kernels))
	for i, k := range b.Kernels {
		names[i] = k.Header.Name
	}
	return names
}

func (b *Binary) find(name string) (*Kernel, error) {
	for i := range b.Kernels {
		if b.Kernels[i].Header.Name == name {
			return &b.Kernels[i], nil
		}
	}
	return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: no such kernel %q", name)
}

func (b *Binary) KernelCode(name string) ([]byte, error) {
	k, err := b.find(name)
	if err != nil {
		return nil, err
	}
	return k.Code, nil
}

func (b *Binary) KernelMetadata(name string) ([]byte, error) {
	k, err := b.find(name)
	if err != nil {
		return nil, err
	}
	return k.Metadata, nil
}
