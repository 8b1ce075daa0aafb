// Package asmerr defines the error-kind taxonomy shared by every core
// component (§7): each diagnostic carries its originating source position
// and one of a fixed set of kinds, following the teacher's position-carrying
// *Error / *RuntimeError pattern (internal/core/lower.go, internal/vm/errors.go)
// generalized to the core's many failure categories.
package asmerr

import (
	"fmt"

	"github.com/clrx-go/clrx/pkg/srcpos"
)

// Kind classifies a Diagnostic per §7's error-kind list.
type Kind int

const (
	Lexical Kind = iota
	Parse
	Symbol
	Expression
	Encoding
	Binary
	Config
)

var kindNames = [...]string{
	Lexical:    "lexical",
	Parse:      "parse",
	Symbol:     "symbol",
	Expression: "expression",
	Encoding:   "encoding",
	Binary:     "binary",
	Config:     "config",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Diagnostic is one reported failure. It satisfies the error interface so
// call sites that don't care about accumulation can treat it as a plain
// Go error.
type Diagnostic struct {
	Kind Kind
	Pos  srcpos.Position
	Msg  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Msg)
}

// New builds a Diagnostic; a thin constructor kept around so call sites
// read as `asmerr.New(asmerr.Symbol, pos, "undefined symbol %q", name)`.
func New(kind Kind, pos srcpos.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// List accumulates diagnostics across a pass, mirroring §7's "accumulate
// errors per top-level directive/instruction and continue where safe."
type List struct {
	items []*Diagnostic
}

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) {
	l.items = append(l.items, d)
}

// Addf is the New+Add shorthand used by most passes.
func (l *List) Addf(kind Kind, pos srcpos.Position, format string, args ...any) {
	l.Add(New(kind, pos, format, args...))
}

// Items returns the accumulated diagnostics in report order.
func (l *List) Items() []*Diagnostic {
	return l.items
}

// Empty reports whether no diagnostics were accumulated.
func (l *List) Empty() bool {
	return len(l.items) == 0
}

// Fatal wraps an unrecoverable failure (I/O, out-of-memory per §7) that
// aborts a pass immediately instead of accumulating.
type Fatal struct {
	Msg string
	Err error
}

func (f *Fatal) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Msg, f.Err)
	}
	return f.Msg
}

func (f *Fatal) Unwrap() error { return f.Err }
