package amdcl2bin

import (
	"encoding/binary"

	"github.com/clrx-go/clrx/internal/asmerr"
)

// kernelHeaderFixedSize is the portion of a metadata blob this package
// reads structurally; the remainder is kept verbatim as Kernel.Metadata
// (argument descriptors and further driver-specific fields this package
// does not interpret).
const kernelHeaderFixedSize = 24

// parseKernelHeader decodes the fixed-size descriptor prefix of a
// kernel's raw metadata bytes (AmdGPUKernelHeader's size/offset fields,
// per getCL2KernelInfo).
func parseKernelHeader(name string, raw []byte) (KernelHeader, error) {
	if len(raw) < kernelHeaderFixedSize {
		return KernelHeader{}, asmerr.New(asmerr.Binary, mainPos(), "amdcl2bin: kernel metadata too short (%d bytes)", len(raw))
	}
	return KernelHeader{
		Name:             name,
		SetupSize:        binary.LittleEndian.Uint32(raw[0:]),
		KernelArgsOffset: binary.LittleEndian.Uint32(raw[4:]),
		KernelCodeOffset: binary.LittleEndian.Uint32(raw[8:]),
		WorkGroupSize: [3]uint32{
			binary.LittleEndian.Uint32(raw[12:]),
			binary.LittleEndian.Uint32(raw[16:]),
			binary.LittleEndian.Uint32(raw[20:]),
		},
	}, nil
}

// buildKernelHeader is parseKernelHeader's inverse for the fixed prefix;
// callers append their own argument-descriptor bytes after it.
func buildKernelHeader(h KernelHeader) []byte {
	buf := make([]byte, kernelHeaderFixedSize)
	binary.LittleEndian.PutUint32(buf[0:], h.SetupSize)
	binary.LittleEndian.PutUint32(buf[4:], h.KernelArgsOffset)
	binary.LittleEndian.PutUint32(buf[8:], h.KernelCodeOffset)
	binary.LittleEndian.PutUint32(buf[12:], h.WorkGroupSize[0])
	binary.LittleEndian.PutUint32(buf[16:], h.WorkGroupSize[1])
	binary.LittleEndian.PutUint32(buf[20:], h.WorkGroupSize[2])
	return buf
}
