package expr

import "github.com/clrx-go/clrx/pkg/srcpos"

// DataWriter is implemented by a section's content buffer; it lets a
// TargetData patch bytes without internal/expr importing internal/section
// (the two packages are glued together by the assembler driver instead,
// keeping the dependency graph a DAG per §9's "tagged variant" guidance).
type DataWriter interface {
	WriteAt(offset int, data []byte)
}

// CodeFlowSetter lets a TargetCodeFlow patch one code-flow entry's target
// offset once the expression resolves.
type CodeFlowSetter interface {
	SetCodeFlowTarget(entryIndex int, value int64, section SectionID)
}

// Target is the sum type named by the Data Model: what an expression
// writes once it resolves. Exactly one of the concrete types below is
// ever installed via Expression.SetTarget.
type Target interface {
	// apply is called once with the expression's final (section, value).
	apply(section SectionID, value uint64)
}

// TargetSymbol resolves into a Symbol (the ordinary "label = expr" case).
type TargetSymbol struct {
	Sym *Symbol
}

func (t TargetSymbol) apply(section SectionID, value uint64) {
	// An .eqv-style alias is always redefinable (it never carries
	// FlagOnceDefined), so the error return can't fire here; true labels
	// are always defined through Resolver.Define instead.
	_, _ = t.Sym.Define(srcpos.Position{}, section, value)
}

// DataWidth is the byte width of a TargetData slot.
type DataWidth int

const (
	Width8 DataWidth = 1 << iota
	Width16
	Width32
	Width64
)

// TargetData writes a little-endian word into a section's content at a
// fixed offset once resolved — §4.C "Data slot".
type TargetData struct {
	Writer DataWriter
	Offset int
	Width  DataWidth
}

func (t TargetData) apply(_ SectionID, value uint64) {
	buf := make([]byte, t.Width)
	for i := range buf {
		buf[i] = byte(value >> (8 * i))
	}
	t.Writer.WriteAt(t.Offset, buf)
}

// TargetCodeFlow updates a code-flow entry's target field once resolved —
// §4.C "Code-flow".
type TargetCodeFlow struct {
	Setter CodeFlowSetter
	Entry  int
}

func (t TargetCodeFlow) apply(section SectionID, value uint64) {
	t.Setter.SetCodeFlowTarget(t.Entry, int64(value), section)
}
