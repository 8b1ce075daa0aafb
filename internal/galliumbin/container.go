package galliumbin

import (
	"encoding/binary"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func containerPos(offset int) srcpos.Position {
	return srcpos.Position{File: "galliumbin", Offset: offset}
}

// Parse decodes a Gallium outer container: a kernel count, one record per
// kernel (length-prefixed name, section id, offset, argument table), a
// section count, then one record per section (id, type, size, a
// size+4 redundancy check, a second size-repeat check, then the section's
// raw bytes). Grounded on GalliumBinary's constructor.
func Parse(data []byte) (*Binary, error) {
	if len(data) < 4 {
		return nil, asmerr.New(asmerr.Binary, containerPos(0), "galliumbin: binary too small")
	}
	kernelsNum := binary.LittleEndian.Uint32(data)
	pos := 4

	kernels := make([]GalliumKernel, 0, kernelsNum)
	for i := uint32(0); i < kernelsNum; i++ {
		if pos+4 > len(data) {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: truncated kernel record %d", i)
		}
		nameLen := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+nameLen > len(data) {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: kernel %d name too long", i)
		}
		name := string(data[pos : pos+nameLen])
		pos += nameLen

		if pos+12 > len(data) {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: truncated kernel record %d", i)
		}
		sectionID := binary.LittleEndian.Uint32(data[pos:])
		offset := binary.LittleEndian.Uint32(data[pos+4:])
		argsNum := binary.LittleEndian.Uint32(data[pos+8:])
		pos += 12

		args := make([]GalliumArg, 0, argsNum)
		for j := uint32(0); j < argsNum; j++ {
			if pos+galliumArgSize > len(data) {
				return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: kernel %d arg %d truncated", i, j)
			}
			args = append(args, decodeGalliumArg(data[pos:pos+galliumArgSize]))
			pos += galliumArgSize
		}
		kernels = append(kernels, GalliumKernel{Name: name, SectionID: sectionID, Offset: offset, Args: args})
	}

	if pos+4 > len(data) {
		return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: truncated section count")
	}
	sectionsNum := binary.LittleEndian.Uint32(data[pos:])
	pos += 4

	sections := make([]GalliumSection, 0, sectionsNum)
	for i := uint32(0); i < sectionsNum; i++ {
		if pos+20 > len(data) {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: truncated section record %d", i)
		}
		id := binary.LittleEndian.Uint32(data[pos:])
		typ := binary.LittleEndian.Uint32(data[pos+4:])
		size := binary.LittleEndian.Uint32(data[pos+8:])
		sizeOfData := binary.LittleEndian.Uint32(data[pos+12:])
		sizeFromHeader := binary.LittleEndian.Uint32(data[pos+16:])
		pos += 20
		if size != sizeOfData-4 || size != sizeFromHeader {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: section %d size fields do not match", i)
		}
		if pos+int(size) > len(data) {
			return nil, asmerr.New(asmerr.Binary, containerPos(pos), "galliumbin: section %d data out of range", i)
		}
		sections = append(sections, GalliumSection{ID: id, Type: GalliumSectionType(typ), Data: data[pos : pos+int(size)]})
		pos += int(size)
	}

	return &Binary{Kernels: kernels, Sections: sections}, nil
}

// Build is Parse's inverse: it reassembles the outer container's byte
// framing from a Binary's kernel and section records.
func Build(b *Binary) []byte {
	var out []byte
	out = appendLE32(out, uint32(len(b.Kernels)))
	for _, k := range b.Kernels {
		out = appendLE32(out, uint32(len(k.Name)))
		out = append(out, k.Name...)
		out = appendLE32(out, k.SectionID)
		out = appendLE32(out, k.Offset)
		out = appendLE32(out, uint32(len(k.Args)))
		for _, a := range k.Args {
			out = append(out, a.encode()...)
		}
	}
	out = appendLE32(out, uint32(len(b.Sections)))
	for _, s := range b.Sections {
		out = appendLE32(out, s.ID)
		out = appendLE32(out, uint32(s.Type))
		out = appendLE32(out, uint32(len(s.Data)))
		out = appendLE32(out, uint32(len(s.Data)+4))
		out = appendLE32(out, uint32(len(s.Data)))
		out = append(out, s.Data...)
	}
	return out
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}
