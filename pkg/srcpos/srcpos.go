// Package srcpos maps byte offsets in assembler/disassembler input to
// (file, line, column) triples for diagnostics.
package srcpos

import "fmt"

// Position identifies a single point in source text.
type Position struct {
	File   string // interned file name, empty for the primary input
	Offset int    // byte offset from the start of File
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

// String renders the position the way diagnostics print it: "file:line:col".
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Map tracks line/column state while scanning a single file and interns
// that file's name so Position values can be copied cheaply.
type Map struct {
	file string
	line int
	col  int
}

// NewMap starts a position map for the named file (empty for anonymous input).
func NewMap(file string) *Map {
	return &Map{file: file, line: 1, col: 1}
}

// At returns the current position without advancing.
func (m *Map) At(offset int) Position {
	return Position{File: m.file, Offset: offset, Line: m.line, Column: m.col}
}

// Advance moves the map's line/column state across b, which must be the
// byte at the offset most recently returned from At plus one.
func (m *Map) Advance(b byte) {
	if b == '\n' {
		m.line++
		m.col = 1
		return
	}
	m.col++
}

// Scan walks src from the start, calling emit(offset, Position) for every
// byte, and returns the end-of-input position. It mirrors the teacher's
// byte-table tokenizer loop (internal/core/tokenizer.go) generalized from
// "only record positions for command bytes" to "record every position a
// caller might ask for."
func (m *Map) Scan(src []byte, emit func(offset int, pos Position)) Position {
	for i, b := range src {
		if emit != nil {
			emit(i, m.At(i))
		}
		m.Advance(b)
	}
	return m.At(len(src))
}
