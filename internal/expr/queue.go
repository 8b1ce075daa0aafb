package expr

import (
	"github.com/golang/glog"

	"github.com/clrx-go/clrx/pkg/srcpos"
)

// Resolver drives symbol definition the way §5 requires: defining a
// symbol resolves every dependent expression immediately (Symbol.Define
// already walks occurrences and recurses into any symbol a now-complete
// expression's target defines), so by the time Define returns, the whole
// dependency chain triggered by this one definition is settled. Resolver
// exists as the single entry point callers use instead of poking
// Symbol.Define directly, so the "one entry point, one queue" shape named
// in §5 has one place to log from. The shape mirrors the teacher's
// vm.VM/VMOption functional-options pattern (internal/vm/vm.go).
type Resolver struct {
	verbose bool
	defined int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithVerboseTrace makes the resolver log each symbol definition and the
// chain of symbols it unblocks via glog.V(1), grounded on google-kati's use
// of glog for internal pass tracing independent of user-facing output.
func WithVerboseTrace(v bool) ResolverOption {
	return func(r *Resolver) { r.verbose = v }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define resolves sym to (section, value) at pos and, transitively, every
// expression that becomes fully evaluable as a result. It reports an error
// if sym is a once-defined label (§3) that already carries a value.
func (r *Resolver) Define(sym *Symbol, pos srcpos.Position, section SectionID, value uint64) error {
	if r.verbose {
		glog.V(1).Infof("expr: defining %q = %#x (section %d)", sym.Name, value, section)
	}
	chained, err := sym.Define(pos, section, value)
	if err != nil {
		return err
	}
	r.defined += 1 + len(chained)
	if r.verbose {
		for _, c := range chained {
			glog.V(1).Infof("expr: %q unblocked %q = %#x", sym.Name, c.Name, c.Value)
		}
	}
	return nil
}

// Defined returns the running count of symbols this resolver has defined,
// directly or transitively, across every call to Define.
func (r *Resolver) Defined() int { return r.defined }
