package elf

import "testing"

// The teacher's original PT_LOAD-only path must still produce a loadable
// ET_EXEC image with no section header table.
func TestBuilderSegmentsOnlyRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.SetEntry(DefaultCodeBase)
	b.AddLoadSegment(DefaultCodeBase, []byte{0x90, 0x90, 0xc3}, PF_R|PF_X)
	b.AddBSSSegment(DefaultBSSBase, 0x1000, PF_R|PF_W)

	out := b.Build()
	f, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.Type != ET_EXEC || f.Header.Machine != EM_X86_64 {
		t.Fatalf("unexpected header %+v", f.Header)
	}
	if f.Header.Entry != DefaultCodeBase {
		t.Fatalf("entry = %#x, want %#x", f.Header.Entry, DefaultCodeBase)
	}
	if f.Header.ShOff != 0 || len(f.Sections) != 0 {
		t.Fatalf("segments-only build should carry no section header table")
	}
}

// A full build with symbols must round-trip through Open: the .text
// section, the symbol count (including STN_UNDEF), and each symbol's name
// and binding survive.
func TestBuilderFullSymtabRoundTrip(t *testing.T) {
	b := NewBuilderFor(EM_AMDGPU, ET_REL)
	b.AddSection(Section{Name: ".text", Type: SHT_PROGBITS, Flags: SHF_ALLOC | SHF_EXECINSTR, Data: []byte{1, 2, 3, 4}, AddrAlign: 4})
	b.AddSymbol(Symbol{Name: "local_sym", Bind: STB_LOCAL, Type: STT_OBJECT, Shndx: 1, Value: 0, Size: 4})
	b.AddSymbol(Symbol{Name: "my_kernel", Bind: STB_GLOBAL, Type: STT_FUNC, Shndx: 1, Value: 0, Size: 4})

	out := b.Build()
	f, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if sh, data, ok := f.SectionByName(".text"); !ok || len(data) != 4 || sh.Type != SHT_PROGBITS {
		t.Fatalf(".text section missing or wrong, ok=%v data=%v", ok, data)
	}

	syms := f.Symbols()
	// index 0 is the synthetic STN_UNDEF entry.
	if len(syms) != 3 {
		t.Fatalf("want 3 symbols (undef + 2), got %d", len(syms))
	}
	var sawLocal, sawGlobal bool
	for _, s := range syms {
		switch s.Name {
		case "local_sym":
			sawLocal = true
			if s.Bind != STB_LOCAL {
				t.Fatalf("local_sym bind = %d, want STB_LOCAL", s.Bind)
			}
		case "my_kernel":
			sawGlobal = true
			if s.Bind != STB_GLOBAL {
				t.Fatalf("my_kernel bind = %d, want STB_GLOBAL", s.Bind)
			}
		}
	}
	if !sawLocal || !sawGlobal {
		t.Fatalf("missing expected symbol names: %+v", syms)
	}
}

// The dynamic section round-trips its tag/value pairs, NULL-terminated.
func TestBuilderDynamicRoundTrip(t *testing.T) {
	b := NewBuilderFor(EM_AMDGPU, ET_DYN)
	b.AddSymbol(Symbol{Name: "a_kernel", Bind: STB_GLOBAL, Type: STT_FUNC, Shndx: 1})
	b.WithHash(true)
	b.AddDynamic(DT_SYMTAB, 0)
	b.AddDynamic(DT_STRSZ, 42)

	out := b.Build()
	f, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	dyn := f.Dynamic()
	if len(dyn) < 3 {
		t.Fatalf("want at least 3 dynamic entries (2 + DT_NULL), got %d", len(dyn))
	}
	if dyn[0].Tag != DT_SYMTAB || dyn[1].Tag != DT_STRSZ || dyn[1].Val != 42 {
		t.Fatalf("unexpected dynamic entries: %+v", dyn)
	}
	if dyn[len(dyn)-1].Tag != DT_NULL {
		t.Fatalf("dynamic section must end with DT_NULL, got %+v", dyn[len(dyn)-1])
	}
	if _, _, ok := f.SectionByName(".hash"); !ok {
		t.Fatalf(".hash section requested via WithHash but not found")
	}
}

// BuildHash must keep every name reachable via its bucket chain regardless
// of the bucket count chosen, and must choose a bucket count no larger than
// the symbol count.
func TestBuildHashReachability(t *testing.T) {
	names := []string{"", "foo", "bar", "baz", "qux", "a_kernel_with_a_long_name"}
	nbucket, table := BuildHash(names)
	if nbucket == 0 || nbucket > uint32(len(names)) {
		t.Fatalf("nbucket = %d out of expected range [1,%d]", nbucket, len(names))
	}
	readU32 := func(i int) uint32 { return leUint32(table[i*4:]) }
	gotBuckets := readU32(0)
	gotChain := readU32(1)
	if gotBuckets != nbucket || gotChain != uint32(len(names)) {
		t.Fatalf("hash header = (%d,%d), want (%d,%d)", gotBuckets, gotChain, nbucket, len(names))
	}

	bucketBase := 2
	chainBase := bucketBase + int(nbucket)
	for i := 1; i < len(names); i++ {
		idx := elfHash(names[i]) % nbucket
		found := false
		for cur := readU32(bucketBase + int(idx)); cur != SHN_UNDEF; cur = readU32(chainBase + int(cur)) {
			if int(cur) == i {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("name %q (index %d) not reachable from its bucket chain", names[i], i)
		}
	}
}

// E7: symbols {foo,bar,baz,qux,quux} must all be recoverable by name via
// the chosen hash bucket layout, and the chosen bucket count must actually
// minimize the cost function over the searched range (not just "a" choice).
func TestBuildHashE7Fixture(t *testing.T) {
	names := []string{"", "foo", "bar", "baz", "qux", "quux"}
	nbucket, table := BuildHash(names)

	cost := func(b uint32) int64 {
		chainLen := make([]int, b)
		for i := 1; i < len(names); i++ {
			chainLen[elfHash(names[i])%b]++
		}
		c := int64(b)
		for _, l := range chainLen {
			c += int64(l) * int64(l)
		}
		return c
	}
	gotCost := cost(nbucket)
	for b := uint32(1); b <= uint32(len(names)); b++ {
		if c := cost(b); c < gotCost {
			t.Fatalf("nbucket=%d cost=%d beats chosen nbucket=%d cost=%d", b, c, nbucket, gotCost)
		}
	}

	readU32 := func(i int) uint32 { return leUint32(table[i*4:]) }
	bucketBase, chainBase := 2, 2+int(nbucket)
	for i, name := range names {
		if i == 0 {
			continue
		}
		idx := elfHash(name) % nbucket
		found := false
		for cur := readU32(bucketBase + int(idx)); cur != SHN_UNDEF; cur = readU32(chainBase + int(cur)) {
			if int(cur) == i {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%q not recoverable from hash table", name)
		}
	}
}

// StringTable dedups identical names and always reserves offset 0 for "".
func TestStringTableDedup(t *testing.T) {
	st := NewStringTable()
	a := st.Add("abc")
	b := st.Add("abc")
	if a != b {
		t.Fatalf("identical strings should share an offset: %d != %d", a, b)
	}
	if empty := st.Add(""); empty != 0 {
		t.Fatalf("empty string must be at offset 0, got %d", empty)
	}
	got, ok := st.String(a)
	if !ok || got != "abc" {
		t.Fatalf("String(%d) = %q,%v, want \"abc\",true", a, got, ok)
	}
}
