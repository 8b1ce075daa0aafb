package amdbin

import (
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/binfmt"
	"github.com/clrx-go/clrx/pkg/elf"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func mainPos() srcpos.Position { return srcpos.Position{File: "amdbin"} }

// Kernel is one legacy-binary kernel: its inner ELF, decoded argument
// metadata, and optional header bytes.
type Kernel struct {
	Name     string
	InnerELF []byte
	Header   []byte
	Args     []KernelArgMeta
}

// MainBinary is a parsed (or to-be-built) legacy AMD OpenCL 1.x binary: one
// outer ELF whose .text carries each kernel's inner ELF and whose .rodata
// carries the metadata and header blobs of the per-kernel symbol triple
// this package's doc comment describes.
type MainBinary struct {
	Kernels      []Kernel
	GlobalData   []byte
	CompileOpts  string
}

var _ binfmt.InnerBinary = (*MainBinary)(nil)

func (b *MainBinary) ListKernels() []string {
	names := make([]string, len(b.Kernels))
	for i, k := range b.Kernels {
		names[i] = k.Name
	}
	return names
}

func (b *MainBinary) kernel(name string) (*Kernel, error) {
	for i := range b.Kernels {
		if b.Kernels[i].Name == name {
			return &b.Kernels[i], nil
		}
	}
	return nil, asmerr.New(asmerr.Binary, mainPos(), "amdbin: no such kernel %q", name)
}

func (b *MainBinary) KernelCode(name string) ([]byte, error) {
	k, err := b.kernel(name)
	if err != nil {
		return nil, err
	}
	return k.InnerELF, nil
}

func (b *MainBinary) KernelMetadata(name string) ([]byte, error) {
	k, err := b.kernel(name)
	if err != nil {
		return nil, err
	}
	return BuildKernelMetadata(k.Args), nil
}

const (
	metadataSuffix = "_metadata"
	headerSuffix   = "_header"
	kernelSuffix   = "_kernel"
	openCLPrefix   = "__OpenCL_"
)

// Parse decodes an outer ELF per this package's layout: every
// "__OpenCL_<name>_metadata"/"_header"/"_kernel" symbol triple becomes one
// Kernel, matched by name.
func Parse(data []byte) (*MainBinary, error) {
	f, err := elf.Open(data)
	if err != nil {
		return nil, asmerr.New(asmerr.Binary, mainPos(), "amdbin: %v", err)
	}

	byName := map[string]*Kernel{}
	order := []string{}
	get := func(name string) *Kernel {
		if k, ok := byName[name]; ok {
			return k
		}
		k := &Kernel{Name: name}
		byName[name] = k
		order = append(order, name)
		return k
	}

	for _, sym := range f.Symbols() {
		if sym.Name == "__OpenCL_compile_options" {
			continue
		}
		if !strings.HasPrefix(sym.Name, openCLPrefix) {
			continue
		}
		rest := sym.Name[len(openCLPrefix):]
		switch {
		case strings.HasSuffix(rest, metadataSuffix):
			kname := strings.TrimSuffix(rest, metadataSuffix)
			raw, err := f.SymbolBytes(sym)
			if err != nil {
				return nil, asmerr.New(asmerr.Binary, mainPos(), "amdbin: metadata for %q: %v", kname, err)
			}
			args, err := ParseKernelMetadata(raw)
			if err != nil {
				return nil, asmerr.New(asmerr.Binary, mainPos(), "amdbin: metadata for %q: %v", kname, err)
			}
			get(kname).Args = args
		case strings.HasSuffix(rest, headerSuffix):
			kname := strings.TrimSuffix(rest, headerSuffix)
			raw, err := f.SymbolBytes(sym)
			if err == nil {
				get(kname).Header = raw
			}
		case strings.HasSuffix(rest, kernelSuffix):
			kname := strings.TrimSuffix(rest, kernelSuffix)
			raw, err := f.SymbolBytes(sym)
			if err != nil {
				return nil, asmerr.New(asmerr.Binary, mainPos(), "amdbin: inner ELF for %q: %v", kname, err)
			}
			get(kname).InnerELF = raw
		}
	}

	bin := &MainBinary{}
	for _, name := range order {
		bin.Kernels = append(bin.Kernels, *byName[name])
	}
	return bin, nil
}

// Build assembles the outer ELF: a .text section carrying each kernel's
// inner ELF, a .rodata section carrying the metadata, header and compile-
// options blobs, and a symbol table indexing them (§4.H).
func Build(b *MainBinary) []byte {
	bld := elf.NewBuilderFor(elf.EM_X86_64, elf.ET_EXEC)

	var text, rodata []byte
	addBlob := func(dst *[]byte, data []byte) (off, size uint64) {
		off = uint64(len(*dst))
		*dst = append(*dst, data...)
		return off, uint64(len(data))
	}

	const textIdx, rodataIdx = uint16(1), uint16(2) // .text, then .rodata (after SHT_NULL)
	for _, k := range b.Kernels {
		metaBytes := BuildKernelMetadata(k.Args)
		off, size := addBlob(&rodata, metaBytes)
		bld.AddSymbol(elf.Symbol{Name: openCLPrefix + k.Name + metadataSuffix, Bind: elf.STB_LOCAL, Type: elf.STT_OBJECT, Shndx: rodataIdx, Value: off, Size: size})

		if len(k.Header) > 0 {
			off, size = addBlob(&rodata, k.Header)
			bld.AddSymbol(elf.Symbol{Name: openCLPrefix + k.Name + headerSuffix, Bind: elf.STB_LOCAL, Type: elf.STT_OBJECT, Shndx: rodataIdx, Value: off, Size: size})
		}

		off, size = addBlob(&text, k.InnerELF)
		bld.AddSymbol(elf.Symbol{Name: openCLPrefix + k.Name + kernelSuffix, Bind: elf.STB_GLOBAL, Type: elf.STT_OBJECT, Shndx: textIdx, Value: off, Size: size})
	}
	if b.CompileOpts != "" {
		off, size := addBlob(&rodata, []byte(b.CompileOpts))
		bld.AddSymbol(elf.Symbol{Name: "__OpenCL_compile_options", Bind: elf.STB_LOCAL, Type: elf.STT_OBJECT, Shndx: rodataIdx, Value: off, Size: size})
	}

	bld.AddSection(elf.Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: text, AddrAlign: 1})
	bld.AddSection(elf.Section{Name: ".rodata", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Data: rodata, AddrAlign: 1})
	return bld.Build()
}
