package elf

import (
	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func binErr(offset uint64, format string, args ...any) *asmerr.Diagnostic {
	return asmerr.New(asmerr.Binary, srcpos.Position{File: "elf", Offset: int(offset)}, format, args...)
}

// File is a parsed ELF64 image: the header plus indexed section, symbol,
// and dynamic-entry views. Bounds are checked at parse time so callers
// never slice past the backing buffer (§4.G).
type File struct {
	Header   Header64
	Sections []Shdr64
	raw      []byte

	shstrtab *StringTable
	strtab   *StringTable
	symbols  []Sym64
}

// Open parses data as an ELF64 file, validating the identification block,
// class, and endianness, and resolving the PN_XNUM overflow marker (when
// e_phnum == PN_XNUM, the true count lives in section[0].sh_info).
func Open(data []byte) (*File, error) {
	if len(data) < ELF64HeaderSize {
		return nil, binErr(0, "elf: file too short for a header (%d bytes)", len(data))
	}
	if data[0] != ELFMAG0 || data[1] != ELFMAG1 || data[2] != ELFMAG2 || data[3] != ELFMAG3 {
		return nil, binErr(0, "elf: bad magic")
	}
	if data[4] != ELFCLASS64 {
		return nil, binErr(4, "elf: unsupported class %d (only ELFCLASS64 is read by this package)", data[4])
	}
	if data[5] != ELFDATA2LSB {
		return nil, binErr(5, "elf: unsupported data encoding %d (only little-endian is read)", data[5])
	}

	h := Header64{}
	copy(h.Ident[:], data[:16])
	h.Type = leUint16(data[16:])
	h.Machine = leUint16(data[18:])
	h.Version = leUint32(data[20:])
	h.Entry = leUint64(data[24:])
	h.PhOff = leUint64(data[32:])
	h.ShOff = leUint64(data[40:])
	h.Flags = leUint32(data[48:])
	h.EhSize = leUint16(data[52:])
	h.PhEntSize = leUint16(data[54:])
	h.PhNum = leUint16(data[56:])
	h.ShEntSize = leUint16(data[58:])
	h.ShNum = leUint16(data[60:])
	h.ShStrNdx = leUint16(data[62:])

	f := &File{Header: h, raw: data}

	if h.ShOff != 0 {
		shnum := int(h.ShNum)
		if shnum > 0 {
			if err := f.checkBounds(h.ShOff, uint64(shnum)*ELF64ShdrSize); err != nil {
				return nil, err
			}
		}
		for i := 0; i < shnum; i++ {
			off := h.ShOff + uint64(i)*ELF64ShdrSize
			sh, err := parseShdr(data, off)
			if err != nil {
				return nil, err
			}
			f.Sections = append(f.Sections, sh)
		}
		// PN_XNUM: the real program-header count overflowed into
		// section[0].sh_info.
		if h.PhNum == PN_XNUM && len(f.Sections) > 0 {
			f.Header.PhNum = uint16(f.Sections[0].Info)
		}
		if len(f.Sections) > int(h.ShStrNdx) {
			tbl := f.Sections[h.ShStrNdx]
			data, err := f.sectionBytes(tbl)
			if err != nil {
				return nil, err
			}
			f.shstrtab = &StringTable{data: data}
		}
	}

	for _, sh := range f.Sections {
		if sh.Type == SHT_SYMTAB || sh.Type == SHT_DYNSYM {
			syms, err := parseSymtab(data, sh)
			if err != nil {
				return nil, err
			}
			f.symbols = syms
			if int(sh.Link) < len(f.Sections) {
				strData, err := f.sectionBytes(f.Sections[sh.Link])
				if err != nil {
					return nil, err
				}
				f.strtab = &StringTable{data: strData}
			}
			break
		}
	}

	return f, nil
}

func (f *File) checkBounds(off, size uint64) error {
	if off > uint64(len(f.raw)) || size > uint64(len(f.raw))-off {
		return binErr(off, "elf: section/segment at offset %#x size %#x exceeds file length %d", off, size, len(f.raw))
	}
	return nil
}

func parseShdr(data []byte, off uint64) (Shdr64, error) {
	if off+ELF64ShdrSize > uint64(len(data)) {
		return Shdr64{}, binErr(off, "elf: section header at %#x truncated", off)
	}
	b := data[off:]
	return Shdr64{
		Name: leUint32(b), Type: leUint32(b[4:]), Flags: leUint64(b[8:]),
		Addr: leUint64(b[16:]), Off: leUint64(b[24:]), Size: leUint64(b[32:]),
		Link: leUint32(b[40:]), Info: leUint32(b[44:]), AddrAlign: leUint64(b[48:]), EntSize: leUint64(b[56:]),
	}, nil
}

// sectionBytes returns the raw content of sh, bounds-checked against the
// file.
func (f *File) sectionBytes(sh Shdr64) ([]byte, error) {
	if sh.Type == SHT_NOBITS {
		return nil, nil
	}
	if err := f.checkBounds(sh.Off, sh.Size); err != nil {
		return nil, err
	}
	return f.raw[sh.Off : sh.Off+sh.Size], nil
}

// SectionName resolves a section's name via .shstrtab.
func (f *File) SectionName(sh Shdr64) string {
	if f.shstrtab == nil {
		return ""
	}
	s, _ := f.shstrtab.String(sh.Name)
	return s
}

// SectionByName returns the first section with the given name, bounds-
// checked content included.
func (f *File) SectionByName(name string) (Shdr64, []byte, bool) {
	for _, sh := range f.Sections {
		if f.SectionName(sh) == name {
			b, err := f.sectionBytes(sh)
			if err != nil {
				return sh, nil, false
			}
			return sh, b, true
		}
	}
	return Shdr64{}, nil, false
}

// SymbolBytes returns the bytes a symbol's (Shndx, Value, Size) addresses,
// resolving Value against its owning section's virtual address and file
// offset. Errors if Shndx names a special or out-of-range section.
func (f *File) SymbolBytes(sym Symbol) ([]byte, error) {
	if sym.Shndx == SHN_UNDEF || int(sym.Shndx) >= len(f.Sections) {
		return nil, binErr(0, "elf: symbol section index %d out of range", sym.Shndx)
	}
	sh := f.Sections[sym.Shndx]
	if sym.Value < sh.Addr {
		return nil, binErr(sh.Off, "elf: symbol value %#x precedes its section's address %#x", sym.Value, sh.Addr)
	}
	relOff := sym.Value - sh.Addr
	if relOff+sym.Size > sh.Size {
		return nil, binErr(sh.Off+relOff, "elf: symbol range [%#x,%#x) exceeds section size %#x", relOff, relOff+sym.Size, sh.Size)
	}
	if err := f.checkBounds(sh.Off+relOff, sym.Size); err != nil {
		return nil, err
	}
	return f.raw[sh.Off+relOff : sh.Off+relOff+sym.Size], nil
}

func parseSymtab(data []byte, sh Shdr64) ([]Sym64, error) {
	if sh.EntSize == 0 {
		return nil, binErr(sh.Off, "elf: symtab has zero entsize")
	}
	if sh.Off+sh.Size > uint64(len(data)) {
		return nil, binErr(sh.Off, "elf: symtab at %#x size %#x exceeds file length", sh.Off, sh.Size)
	}
	n := sh.Size / sh.EntSize
	syms := make([]Sym64, 0, n)
	for i := uint64(0); i < n; i++ {
		off := sh.Off + i*sh.EntSize
		b := data[off:]
		syms = append(syms, Sym64{
			Name: leUint32(b), Info: b[4], Other: b[5], Shndx: leUint16(b[6:]),
			Value: leUint64(b[8:]), Size: leUint64(b[16:]),
		})
	}
	return syms, nil
}

// Symbols returns the parsed symbol table (the first SHT_SYMTAB or
// SHT_DYNSYM section in section-header order), with names resolved.
func (f *File) Symbols() []Symbol {
	out := make([]Symbol, 0, len(f.symbols))
	for _, s := range f.symbols {
		name := ""
		if f.strtab != nil {
			name, _ = f.strtab.String(s.Name)
		}
		out = append(out, Symbol{Name: name, Bind: ST_BIND(s.Info), Type: ST_TYPE(s.Info), Shndx: s.Shndx, Value: s.Value, Size: s.Size})
	}
	return out
}

// Dynamic returns the parsed .dynamic section's entries, or nil if absent.
func (f *File) Dynamic() []Dyn64 {
	if _, data, ok := f.SectionByName(".dynamic"); ok {
		return ParseDynamic(data)
	}
	return nil
}
