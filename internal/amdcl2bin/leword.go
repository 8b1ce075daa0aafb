package amdcl2bin

import "encoding/binary"

func leUint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func appendLE64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}
