package elf

import "encoding/binary"

func leUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func leUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func leUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
