package elf

import "sort"

// Segment is a single PT_LOAD (or PT_NOTE) program-header-backed region of
// the output file. Grounded directly on the teacher's pkg/elf.Segment.
type Segment struct {
	VAddr uint64
	Data  []byte
	MemSz uint64
	Flags uint32
	IsBSS bool
	Type  uint32 // defaults to PT_LOAD when zero
}

// Section is a single SHT_* entry the Builder will place into the section
// header table. Name is resolved against the builder's shstrtab at Build
// time.
type Section struct {
	Name      string
	Type      uint32
	Flags     uint64
	Addr      uint64
	Data      []byte
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// Symbol is a pre-sort-order-agnostic symbol table entry; Builder sorts
// local symbols before global/weak ones before assigning final indices, per
// the ELF gABI's st_info-ordering requirement (sh_info records the index of
// the first non-local symbol).
type Symbol struct {
	Name  string
	Bind  uint8
	Type  uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Builder assembles an ELF64 file: the teacher's original ET_EXEC/PT_LOAD
// path (SetEntry/AddLoadSegment/AddBSSSegment) still works unchanged, and
// AddSection/AddSymbol extend it to ET_DYN/ET_REL-style outputs carrying a
// full section header table, symbol table, string tables, a SysV hash
// section, and a dynamic section.
type Builder struct {
	machine  uint16
	etype    uint16
	entry    uint64
	segments []Segment
	sections []Section
	symbols  []Symbol
	dynamic  []Dyn64
	withHash bool
}

// NewBuilder starts a Builder for an ET_EXEC, EM_X86_64 image, matching the
// teacher's original constructor exactly.
func NewBuilder() *Builder {
	return &Builder{machine: EM_X86_64, etype: ET_EXEC}
}

// NewBuilderFor starts a Builder for an arbitrary (machine, type) pair, the
// entry point used by the GCN container layers (EM_AMDGPU, ET_DYN/ET_REL).
func NewBuilderFor(machine, etype uint16) *Builder {
	return &Builder{machine: machine, etype: etype}
}

func (b *Builder) SetEntry(addr uint64) { b.entry = addr }

func (b *Builder) AddLoadSegment(vaddr uint64, data []byte, flags uint32) {
	b.segments = append(b.segments, Segment{VAddr: vaddr, Data: data, MemSz: uint64(len(data)), Flags: flags, Type: PT_LOAD})
}

func (b *Builder) AddBSSSegment(vaddr uint64, size uint64, flags uint32) {
	b.segments = append(b.segments, Segment{VAddr: vaddr, MemSz: size, Flags: flags, IsBSS: true, Type: PT_LOAD})
}

// AddSection appends a section; Build assigns it an index (1-based, after
// the mandatory SHT_NULL[0]) in call order.
func (b *Builder) AddSection(s Section) int {
	b.sections = append(b.sections, s)
	return len(b.sections)
}

// AddSymbol appends a symbol to the dynamic/static symbol table Build
// assembles; the returned index is only final after sorting, so callers
// needing a stable index should look it up by name post-Build.
func (b *Builder) AddSymbol(s Symbol) { b.symbols = append(b.symbols, s) }

// AddDynamic appends one DT_* entry, emitted in call order, NULL-terminated
// automatically.
func (b *Builder) AddDynamic(tag, val uint64) {
	b.dynamic = append(b.dynamic, Dyn64{Tag: tag, Val: val})
}

// WithHash requests a SHT_HASH section built over the symbol table once one
// has been added.
func (b *Builder) WithHash(enable bool) { b.withHash = enable }

// Build lays out the final file. When no sections/symbols/dynamic entries
// were added it reproduces the teacher's original PT_LOAD-only layout
// exactly; otherwise it also emits .symtab/.strtab/.shstrtab (and .hash/
// .dynamic when requested) and a full section header table.
func (b *Builder) Build() []byte {
	if len(b.sections) == 0 && len(b.symbols) == 0 && len(b.dynamic) == 0 {
		return b.buildSegmentsOnly()
	}
	return b.buildFull()
}

func (b *Builder) buildSegmentsOnly() []byte {
	phnum := len(b.segments)
	phOff := uint64(ELF64HeaderSize)
	dataOff := alignUp(phOff+uint64(phnum)*ELF64PhdrSize, PageSize)

	out := make([]byte, dataOff)
	var phdrs []byte
	cur := dataOff
	for i := range b.segments {
		seg := &b.segments[i]
		fileSz := uint64(len(seg.Data))
		ph := Phdr64{
			Type: segType(seg), Flags: seg.Flags, Off: cur, VAddr: seg.VAddr, PAddr: seg.VAddr,
			FileSz: fileSz, MemSz: seg.MemSz, Align: PageSize,
		}
		if seg.IsBSS {
			ph.Off, ph.FileSz = 0, 0
		}
		phdrs = writePhdr(phdrs, ph)
		if !seg.IsBSS {
			out = append(out, seg.Data...)
			cur += fileSz
		}
	}
	copy(out[phOff:], phdrs)

	hdr := Header64{
		Type: b.etype, Machine: b.machine, Version: EV_CURRENT, Entry: b.entry,
		PhOff: phOff, EhSize: ELF64HeaderSize, PhEntSize: ELF64PhdrSize, PhNum: uint16(phnum),
	}
	head := writeHeader(hdr)
	copy(out[:len(head)], head)
	return out
}

func segType(seg *Segment) uint32 {
	if seg.Type != 0 {
		return seg.Type
	}
	return PT_LOAD
}

// buildFull lays out header + optional phdrs + section data + shstrtab +
// section header table. Sections are placed in AddSection order followed by
// the synthesized .strtab/.symtab/.hash/.dynamic/.shstrtab sections.
func (b *Builder) buildFull() []byte {
	shstrtab := NewStringTable()

	type placed struct {
		sec  Shdr64
		data []byte
	}
	var all []placed

	// index 0: SHT_NULL
	all = append(all, placed{sec: Shdr64{}})

	for _, s := range b.sections {
		all = append(all, placed{
			sec: Shdr64{
				Name: shstrtab.Add(s.Name), Type: s.Type, Flags: s.Flags, Addr: s.Addr,
				Size: uint64(len(s.Data)), Link: s.Link, Info: s.Info,
				AddrAlign: orDefault(s.AddrAlign, 1), EntSize: s.EntSize,
			},
			data: s.Data,
		})
	}

	symtabIdx, strtabIdx := 0, 0
	if len(b.symbols) > 0 {
		strtab := NewStringTable()
		sorted := append([]Symbol(nil), b.symbols...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Bind == STB_LOCAL && sorted[j].Bind != STB_LOCAL })
		firstGlobal := uint32(len(sorted) + 1)
		for i, s := range sorted {
			if s.Bind != STB_LOCAL {
				firstGlobal = uint32(i + 1)
				break
			}
		}

		var symData []byte
		symData = appendSym64(symData, Sym64{}) // STN_UNDEF
		for _, s := range sorted {
			symData = appendSym64(symData, Sym64{
				Name: strtab.Add(s.Name), Info: ST_INFO(s.Bind, s.Type), Shndx: s.Shndx,
				Value: s.Value, Size: s.Size,
			})
		}

		strtabIdx = len(all)
		all = append(all, placed{sec: Shdr64{Name: shstrtab.Add(".strtab"), Type: SHT_STRTAB, AddrAlign: 1}, data: strtab.Bytes()})

		symtabIdx = len(all)
		all = append(all, placed{
			sec: Shdr64{
				Name: shstrtab.Add(".symtab"), Type: SHT_SYMTAB, Link: uint32(strtabIdx),
				Info: firstGlobal, AddrAlign: 8, EntSize: ELF64SymSize,
			},
			data: symData,
		})

		if b.withHash {
			names := make([]string, len(sorted)+1)
			for i, s := range sorted {
				names[i+1] = s.Name
			}
			_, hashData := BuildHash(names)
			all = append(all, placed{
				sec:  Shdr64{Name: shstrtab.Add(".hash"), Type: SHT_HASH, Link: uint32(symtabIdx), AddrAlign: 4, EntSize: 4},
				data: hashData,
			})
		}
	}

	if len(b.dynamic) > 0 {
		all = append(all, placed{
			sec:  Shdr64{Name: shstrtab.Add(".dynamic"), Type: SHT_DYNAMIC, Link: uint32(strtabIdx), AddrAlign: 8, EntSize: ELF64DynSize},
			data: BuildDynamic(b.dynamic),
		})
	}

	shstrtabIdx := len(all)
	shstrtabName := shstrtab.Add(".shstrtab")
	all = append(all, placed{sec: Shdr64{Name: shstrtabName, Type: SHT_STRTAB, AddrAlign: 1}, data: shstrtab.Bytes()})

	phnum := len(b.segments)
	phOff := uint64(0)
	if phnum > 0 {
		phOff = ELF64HeaderSize
	}
	dataStart := uint64(ELF64HeaderSize) + uint64(phnum)*ELF64PhdrSize

	out := make([]byte, dataStart)
	var phdrs []byte
	cur := dataStart
	for i := range b.segments {
		seg := &b.segments[i]
		fileSz := uint64(len(seg.Data))
		ph := Phdr64{Type: segType(seg), Flags: seg.Flags, Off: cur, VAddr: seg.VAddr, PAddr: seg.VAddr, FileSz: fileSz, MemSz: seg.MemSz, Align: PageSize}
		if seg.IsBSS {
			ph.Off, ph.FileSz = 0, 0
		}
		phdrs = writePhdr(phdrs, ph)
		if !seg.IsBSS {
			out = append(out, seg.Data...)
			cur += fileSz
		}
	}
	if phnum > 0 {
		copy(out[phOff:], phdrs)
	}

	for i := range all {
		if i == 0 {
			continue
		}
		cur = alignUp(cur, all[i].sec.AddrAlign)
		for uint64(len(out)) < cur {
			out = append(out, 0)
		}
		all[i].sec.Off = cur
		all[i].sec.Size = uint64(len(all[i].data))
		out = append(out, all[i].data...)
		cur += uint64(len(all[i].data))
	}

	shOff := alignUp(cur, 8)
	for uint64(len(out)) < shOff {
		out = append(out, 0)
	}
	for _, p := range all {
		out = append(out, writeShdr(p.sec)...)
	}

	hdr := Header64{
		Type: b.etype, Machine: b.machine, Version: EV_CURRENT, Entry: b.entry,
		PhOff: phOff, ShOff: shOff, EhSize: ELF64HeaderSize,
		PhEntSize: ELF64PhdrSize, PhNum: uint16(phnum),
		ShEntSize: ELF64ShdrSize, ShNum: uint16(len(all)), ShStrNdx: uint16(shstrtabIdx),
	}
	head := writeHeader(hdr)
	copy(out[:len(head)], head)
	return out
}

func orDefault(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func writeHeader(h Header64) []byte {
	out := make([]byte, 0, ELF64HeaderSize)
	out = append(out, ELFMAG0, ELFMAG1, ELFMAG2, ELFMAG3, ELFCLASS64, ELFDATA2LSB, EV_CURRENT, ELFOSABI_NONE)
	out = append(out, make([]byte, 8)...)
	out = appendLE16(out, h.Type)
	out = appendLE16(out, h.Machine)
	out = appendLE32(out, EV_CURRENT)
	out = appendLE64(out, h.Entry)
	out = appendLE64(out, h.PhOff)
	out = appendLE64(out, h.ShOff)
	out = appendLE32(out, h.Flags)
	out = appendLE16(out, ELF64HeaderSize)
	out = appendLE16(out, ELF64PhdrSize)
	out = appendLE16(out, h.PhNum)
	out = appendLE16(out, ELF64ShdrSize)
	out = appendLE16(out, h.ShNum)
	out = appendLE16(out, h.ShStrNdx)
	return out
}

func writePhdr(out []byte, p Phdr64) []byte {
	out = appendLE32(out, p.Type)
	out = appendLE32(out, p.Flags)
	out = appendLE64(out, p.Off)
	out = appendLE64(out, p.VAddr)
	out = appendLE64(out, p.PAddr)
	out = appendLE64(out, p.FileSz)
	out = appendLE64(out, p.MemSz)
	out = appendLE64(out, p.Align)
	return out
}

func writeShdr(s Shdr64) []byte {
	var out []byte
	out = appendLE32(out, s.Name)
	out = appendLE32(out, s.Type)
	out = appendLE64(out, s.Flags)
	out = appendLE64(out, s.Addr)
	out = appendLE64(out, s.Off)
	out = appendLE64(out, s.Size)
	out = appendLE32(out, s.Link)
	out = appendLE32(out, s.Info)
	out = appendLE64(out, s.AddrAlign)
	out = appendLE64(out, s.EntSize)
	return out
}

func appendSym64(out []byte, s Sym64) []byte {
	out = appendLE32(out, s.Name)
	out = append(out, s.Info, s.Other)
	out = appendLE16(out, s.Shndx)
	out = appendLE64(out, s.Value)
	out = appendLE64(out, s.Size)
	return out
}
