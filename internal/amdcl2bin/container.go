package amdcl2bin

import (
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/elf"
)

const (
	metadataPrefix = "__OpenCL_&__OpenCL_"
	metadataSuffix = "_kernel_metadata"
)

// Parse decodes an outer ELF per this package's layout: its ".text"
// section is itself an ELF (code/.data/.bss/.rodata sampler-init/
// ".rela.hsatext"), and each kernel's metadata is addressed by an outer
// "__OpenCL_&__OpenCL_<name>_kernel_metadata" symbol.
func Parse(data []byte) (*Binary, error) {
	outer, err := elf.Open(data)
	if err != nil {
		return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: outer ELF: %v", err)
	}

	_, innerRaw, ok := outer.SectionByName(".text")
	if !ok {
		return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: outer ELF has no .text")
	}
	inner, err := elf.Open(innerRaw)
	if err != nil {
		return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: inner ELF: %v", err)
	}

	b := &Binary{}
	if _, d, ok := inner.SectionByName(".data"); ok {
		b.GlobalData = d
	}
	if sh, _, ok := inner.SectionByName(".bss"); ok {
		b.BSSSize = uint32(sh.Size)
	}
	if _, d, ok := inner.SectionByName(".rodata"); ok {
		b.SamplerInit = d
	}
	if _, relaData, ok := inner.SectionByName(".rela.hsatext"); ok {
		b.RelaEntries = parseRela(relaData)
	}

	innerSyms := inner.Symbols()
	b.DriverVersion = 191205
	if len(innerSyms) != 0 && innerSyms[0].Name == "" {
		b.DriverVersion = 200406
	}
	if noteSh, noteData, ok := inner.SectionByName(".note"); ok && noteSh.Size == 200 && len(noteData) > 197 && noteData[197] != 0 {
		b.DriverVersion = 203603
	}

	_, code, hasText := inner.SectionByName(".text")

	for _, sym := range outer.Symbols() {
		if !strings.HasPrefix(sym.Name, metadataPrefix) || !strings.HasSuffix(sym.Name, metadataSuffix) {
			continue
		}
		name := sym.Name[len(metadataPrefix) : len(sym.Name)-len(metadataSuffix)]
		raw, err := outer.SymbolBytes(sym)
		if err != nil {
			return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: metadata for %q: %v", name, err)
		}
		hdr, err := parseKernelHeader(name, raw)
		if err != nil {
			return nil, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: kernel %q: %v", name, err)
		}
		var kcode []byte
		if hasText {
			start := hdr.KernelCodeOffset
			if uint64(start) <= uint64(len(code)) {
				kcode = code[start:]
			}
		}
		b.Kernels = append(b.Kernels, Kernel{Header: hdr, Metadata: raw, Code: kcode})
	}
	// Each kernel's code ends where the next-higher kernel's code begins.
	for i := range b.Kernels {
		start := b.Kernels[i].Header.KernelCodeOffset
		for _, other := range b.Kernels {
			if off := other.Header.KernelCodeOffset; off > start && int(off-start) < len(b.Kernels[i].Code) {
				b.Kernels[i].Code = b.Kernels[i].Code[:off-start]
			}
		}
	}
	return b, nil
}

// Build assembles the outer/inner ELF pair: the inner ELF's .text/.data/
// .bss/.rodata/.rela.hsatext sections, wrapped by an outer ELF carrying
// that inner image as its own .text plus one metadata symbol per kernel.
func Build(b *Binary) []byte {
	inner := elf.NewBuilderFor(elf.EM_AMDGPU, elf.ET_REL)

	var code []byte
	for _, k := range b.Kernels {
		code = append(code, k.Code...)
	}
	inner.AddSection(elf.Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: code, AddrAlign: 256})
	if len(b.GlobalData) > 0 {
		inner.AddSection(elf.Section{Name: ".data", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Data: b.GlobalData, AddrAlign: 8})
	}
	if b.BSSSize > 0 {
		inner.AddSection(elf.Section{Name: ".bss", Type: elf.SHT_NOBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, AddrAlign: 8, EntSize: 0, Data: make([]byte, b.BSSSize)})
	}
	if len(b.SamplerInit) > 0 {
		inner.AddSection(elf.Section{Name: ".rodata", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Data: b.SamplerInit, AddrAlign: 4})
	}
	if len(b.RelaEntries) > 0 {
		inner.AddSection(elf.Section{Name: ".rela.hsatext", Type: elf.SHT_RELA, Data: buildRela(b.RelaEntries), AddrAlign: 8, EntSize: 24})
	}
	innerBytes := inner.Build()

	outer := elf.NewBuilderFor(elf.EM_X86_64, elf.ET_EXEC)
	outer.AddSection(elf.Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: innerBytes, AddrAlign: 1})

	var rodata []byte
	for _, k := range b.Kernels {
		meta := k.Metadata
		if len(meta) == 0 {
			meta = buildKernelHeader(k.Header)
		}
		off := uint64(len(rodata))
		rodata = append(rodata, meta...)
		outer.AddSymbol(elf.Symbol{
			Name:  metadataPrefix + k.Header.Name + metadataSuffix,
			Bind:  elf.STB_GLOBAL,
			Type:  elf.STT_OBJECT,
			Shndx: 2, // .text is section 1, .rodata is section 2
			Value: off,
			Size:  uint64(len(meta)),
		})
	}
	outer.AddSection(elf.Section{Name: ".rodata", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Data: rodata, AddrAlign: 1})
	return outer.Build()
}

func parseRela(data []byte) []RelaEntry {
	var out []RelaEntry
	for i := 0; i+24 <= len(data); i += 24 {
		info := leUint64(data[i+8:])
		out = append(out, RelaEntry{
			Offset: leUint64(data[i:]),
			Symbol: uint32(info >> 32),
			Type:   uint32(info),
			Addend: int64(leUint64(data[i+16:])),
		})
	}
	return out
}

func buildRela(entries []RelaEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = appendLE64(out, e.Offset)
		out = appendLE64(out, uint64(e.Symbol)<<32|uint64(e.Type))
		out = appendLE64(out, uint64(e.Addend))
	}
	return out
}
