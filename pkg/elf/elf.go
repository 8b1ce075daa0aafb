// Package elf implements the ELF binary container (§4.G): section and
// symbol tables, the SysV hash section, the dynamic section, and a
// bucket-count search that minimizes the hash table's total chain cost.
// Grounded on the teacher's own pkg/elf/elf.go (Header64/Phdr64 and the
// appendLEnn helpers), generalized from "one ET_EXEC x86-64 writer" to a
// reader+writer covering SHT_SYMTAB/SHT_DYNSYM/SHT_HASH/SHT_DYNAMIC.
// Only little-endian ELFCLASS64 files are handled: the ELFCLASS32
// constant is declared, but Open rejects class-32 input and the Builder
// writes ELF64 only.
package elf

import "encoding/binary"

// Identification
const (
	ELFMAG0 = 0x7f
	ELFMAG1 = 'E'
	ELFMAG2 = 'L'
	ELFMAG3 = 'F'

	ELFCLASS32 = 1
	ELFCLASS64 = 2

	ELFDATA2LSB = 1
	EV_CURRENT  = 1

	ELFOSABI_NONE = 0
)

// e_type
const (
	ET_NONE = 0
	ET_REL  = 1
	ET_EXEC = 2
	ET_DYN  = 3
)

// e_machine (AMD GCN toolchains use EM_AMDGPU; x86-64 kept for the
// teacher's original executable-writer path, still reachable via
// NewBuilder for ET_EXEC output).
const (
	EM_X86_64  = 62
	EM_AMDGPU  = 224
)

// Program header types/flags
const (
	PT_NULL    = 0
	PT_LOAD    = 1
	PT_DYNAMIC = 2
	PT_NOTE    = 4

	PF_X = 0x1
	PF_W = 0x2
	PF_R = 0x4
)

// Section header types
const (
	SHT_NULL     = 0
	SHT_PROGBITS = 1
	SHT_SYMTAB   = 2
	SHT_STRTAB   = 3
	SHT_RELA     = 4
	SHT_HASH     = 5
	SHT_DYNAMIC  = 6
	SHT_NOTE     = 7
	SHT_NOBITS   = 8
	SHT_REL      = 9
	SHT_DYNSYM   = 11
)

// Section header flags
const (
	SHF_WRITE     = 0x1
	SHF_ALLOC     = 0x2
	SHF_EXECINSTR = 0x4
)

// Special section indices
const (
	SHN_UNDEF  = 0
	SHN_ABS    = 0xfff1
	SHN_COMMON = 0xfff2
)

// PN_XNUM is the e_phnum sentinel meaning "real count is in
// section[0].sh_info" (§8's overflow-marker boundary case).
const PN_XNUM = 0xffff

// Symbol binding/type, packed into Sym.Info via ST_INFO.
const (
	STB_LOCAL  = 0
	STB_GLOBAL = 1
	STB_WEAK   = 2

	STT_NOTYPE = 0
	STT_OBJECT = 1
	STT_FUNC   = 2
	STT_SECTION = 3
)

func ST_INFO(bind, typ uint8) uint8 { return bind<<4 | (typ & 0xf) }
func ST_BIND(info uint8) uint8      { return info >> 4 }
func ST_TYPE(info uint8) uint8      { return info & 0xf }

// Dynamic section tags
const (
	DT_NULL   = 0
	DT_NEEDED = 1
	DT_HASH   = 4
	DT_STRTAB = 5
	DT_SYMTAB = 6
	DT_STRSZ  = 10
	DT_SYMENT = 11
)

const (
	ELF64HeaderSize = 64
	ELF64PhdrSize   = 56
	ELF64ShdrSize   = 64
	ELF64SymSize    = 24
	ELF64DynSize    = 16

	ELF32HeaderSize = 52
	ELF32PhdrSize   = 32
	ELF32ShdrSize   = 40
	ELF32SymSize    = 16
	ELF32DynSize    = 8

	PageSize        = 0x1000
	DefaultCodeBase = 0x400000
	DefaultBSSBase  = 0x600000
)

// Header64 is the ELF64 file header.
type Header64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

// Phdr64 is an ELF64 program header.
type Phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	VAddr  uint64
	PAddr  uint64
	FileSz uint64
	MemSz  uint64
	Align  uint64
}

// Shdr64 is an ELF64 section header.
type Shdr64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// Sym64 is an ELF64 symbol table entry.
type Sym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Dyn64 is an ELF64 dynamic section entry.
type Dyn64 struct {
	Tag uint64
	Val uint64
}

func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

func appendLE16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}
