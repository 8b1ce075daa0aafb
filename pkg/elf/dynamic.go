package elf

// BuildDynamic packs an ordered list of dynamic entries into an SHT_DYNAMIC
// section's bytes, appending the mandatory DT_NULL terminator.
func BuildDynamic(entries []Dyn64) []byte {
	var out []byte
	for _, e := range entries {
		out = appendLE64(out, e.Tag)
		out = appendLE64(out, e.Val)
	}
	out = appendLE64(out, DT_NULL)
	out = appendLE64(out, 0)
	return out
}

// ParseDynamic reverses BuildDynamic, stopping at (and including) the
// DT_NULL terminator.
func ParseDynamic(data []byte) []Dyn64 {
	var entries []Dyn64
	for off := 0; off+ELF64DynSize <= len(data); off += ELF64DynSize {
		tag := leUint64(data[off:])
		val := leUint64(data[off+8:])
		entries = append(entries, Dyn64{Tag: tag, Val: val})
		if tag == DT_NULL {
			break
		}
	}
	return entries
}
