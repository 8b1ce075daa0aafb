// Package amdbin implements the legacy AMD OpenCL 1.x binary container
// (§4.H): an outer ELF whose ".text" holds one inner ELF per kernel plus
// "__OpenCL_<name>_metadata"/"_header"/"_kernel" symbols in ".rodata", and
// whose inner ELF program headers carry ATI CAL notes describing the
// kernel's register/resource usage.
//
// Grounded on original_source/amdbin/AmdBinaries.cpp's CAL-note parsing
// loop (PT_NOTE segment walk, "ATI CAL" 8-byte note name, descSize-driven
// advance) and the teacher's internal/codegen/linux/x86_64.go
// GenerateELF() shape (build inner payload bytes, hand them to an ELF
// builder). CAL note type numbers are reconstructed from the public CAL
// ABI note-type ordering (the enum header defining them was not among the
// files kept for this retrieval pack) — see DESIGN.md.
package amdbin

import (
	"encoding/binary"
	"fmt"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// CALNoteType enumerates the ATI CAL note types carried in an inner ELF's
// PT_NOTE segment.
type CALNoteType uint32

const (
	CALNoteProgInfo CALNoteType = iota + 1
	CALNoteInputs
	CALNoteOutputs
	CALNoteCondOut
	CALNoteFloat32Consts
	CALNoteInt32Consts
	CALNoteBool32Consts
	CALNoteEarlyExit
	CALNoteGlobalBuffers
	CALNoteConstantBuffers
	CALNoteInputSamplers
	CALNotePersistentBuffers
	CALNoteScratchBuffers
	CALNoteSubConstantBuffers
	CALNoteUAVMailboxSize
	CALNoteUAV
	CALNoteUAVOpMask
)

func (t CALNoteType) String() string {
	switch t {
	case CALNoteProgInfo:
		return "PROGINFO"
	case CALNoteInputs:
		return "INPUTS"
	case CALNoteOutputs:
		return "OUTPUTS"
	case CALNoteCondOut:
		return "CONDOUT"
	case CALNoteFloat32Consts:
		return "FLOATCONSTS"
	case CALNoteInt32Consts:
		return "INTCONSTS"
	case CALNoteBool32Consts:
		return "BOOL32CONSTS"
	case CALNoteEarlyExit:
		return "EARLYEXIT"
	case CALNoteGlobalBuffers:
		return "GLOBAL_BUFFERS"
	case CALNoteConstantBuffers:
		return "CONSTANT_BUFFERS"
	case CALNoteInputSamplers:
		return "INPUT_SAMPLERS"
	case CALNotePersistentBuffers:
		return "PERSISTENT_BUFFERS"
	case CALNoteScratchBuffers:
		return "SCRATCH_BUFFERS"
	case CALNoteSubConstantBuffers:
		return "SUB_CONSTANT_BUFFERS"
	case CALNoteUAVMailboxSize:
		return "UAV_MAILBOX_SIZE"
	case CALNoteUAV:
		return "UAV"
	case CALNoteUAVOpMask:
		return "UAV_OP_MASK"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint32(t))
	}
}

// calNoteName is the fixed 8-byte, NUL-terminated note-name field every CAL
// note carries, per AmdBinaries.cpp's `memcmp(nhdr.name, "ATI CAL", 8)`
// check.
const calNoteName = "ATI CAL\x00"

const calNoteHeaderSize = 12 // nameSize(4) + descSize(4) + type(4)

func notePos(offset int) srcpos.Position {
	return srcpos.Position{File: "amdbin:calnote", Offset: offset}
}

// CALNote is one decoded PT_NOTE entry: its type and raw descriptor bytes.
type CALNote struct {
	Type CALNoteType
	Desc []byte
}

// ParseCALNotes walks a PT_NOTE segment's bytes, validating the "ATI CAL"
// note name on each entry, per AmdBinaries.cpp's CAL-note verification
// loop.
func ParseCALNotes(data []byte) ([]CALNote, error) {
	var notes []CALNote
	pos := 0
	for pos < len(data) {
		if pos+calNoteHeaderSize > len(data) {
			return nil, asmerr.New(asmerr.Binary, notePos(pos), "amdbin: CAL note header truncated at offset %d", pos)
		}
		nameSize := binary.LittleEndian.Uint32(data[pos:])
		descSize := binary.LittleEndian.Uint32(data[pos+4:])
		typ := binary.LittleEndian.Uint32(data[pos+8:])
		if nameSize != 8 {
			return nil, asmerr.New(asmerr.Binary, notePos(pos), "amdbin: wrong CAL note name size %d, want 8", nameSize)
		}
		nameStart := pos + calNoteHeaderSize
		nameEnd := nameStart + 8
		if nameEnd > len(data) {
			return nil, asmerr.New(asmerr.Binary, notePos(pos), "amdbin: CAL note name truncated at offset %d", pos)
		}
		if string(data[nameStart:nameEnd]) != calNoteName {
			return nil, asmerr.New(asmerr.Binary, notePos(pos), "amdbin: wrong CAL note name %q", data[nameStart:nameEnd])
		}
		descStart := nameEnd
		descEnd := descStart + int(descSize)
		if descEnd > len(data) {
			return nil, asmerr.New(asmerr.Binary, notePos(pos), "amdbin: CAL note desc size %d out of range at offset %d", descSize, pos)
		}
		notes = append(notes, CALNote{Type: CALNoteType(typ), Desc: data[descStart:descEnd]})
		pos = descEnd
	}
	return notes, nil
}

// BuildCALNotes packs notes back into a PT_NOTE segment's byte form.
func BuildCALNotes(notes []CALNote) []byte {
	var out []byte
	for _, n := range notes {
		out = appendLE32(out, 8)
		out = appendLE32(out, uint32(len(n.Desc)))
		out = appendLE32(out, uint32(n.Type))
		out = append(out, calNoteName...)
		out = append(out, n.Desc...)
	}
	return out
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

// ProgInfoEntry is one PROGINFO note's (address, value) register/resource
// record.
type ProgInfoEntry struct {
	Address uint32
	Value   uint32
}

// ParseProgInfo decodes a CALNoteProgInfo descriptor into its entries.
func ParseProgInfo(desc []byte) []ProgInfoEntry {
	var entries []ProgInfoEntry
	for i := 0; i+8 <= len(desc); i += 8 {
		entries = append(entries, ProgInfoEntry{
			Address: binary.LittleEndian.Uint32(desc[i:]),
			Value:   binary.LittleEndian.Uint32(desc[i+4:]),
		})
	}
	return entries
}

// BuildProgInfo is ParseProgInfo's inverse.
func BuildProgInfo(entries []ProgInfoEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = appendLE32(out, e.Address)
		out = appendLE32(out, e.Value)
	}
	return out
}
