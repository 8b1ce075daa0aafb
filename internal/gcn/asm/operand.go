// Package asm implements the GCN assembler: operand parsing, literal/inline-
// constant coercion, and per-encoding bit packing, routed through
// internal/expr and internal/section the same way the teacher's x86_64
// backend routes through its own jumpFixup mechanism
// (_examples/lcox74-bfcc/internal/codegen/linux/x86_64.go), generalized
// from two fixed fixup kinds to arbitrary forward-referencing expressions.
package asm

import (
	"math"
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// OperandKind distinguishes how an operand resolved during parsing.
type OperandKind int

const (
	OpReg OperandKind = iota
	OpInlineConst
	OpLiteral    // a 32-bit value known at parse time, not inline-eligible
	OpExpr       // an expr.Expression not yet resolvable to a constant
	OpHWReg      // hwreg(id, offset, width) pseudo-operand
	OpSendMsg    // sendmsg(...) pseudo-operand
	OpWaitCnt    // vmcnt()/expcnt()/lgkmcnt() pseudo-operand, combined into one SIMM16
)

// Operand is one parsed instruction argument.
type Operand struct {
	Kind     OperandKind
	Reg      isa.RegRef
	Field    int // SSRC/SRC field value for OpReg/OpInlineConst
	Literal  uint32
	Expr     *expr.Expression
	Position srcpos.Position
}

// ParseRegister recognizes s#, v#, s[a:b], v[a:b], and the named special
// registers (vcc, exec, m0, flat_scratch, ...), returning the register and
// its SSRC/SRC field encoding.
func ParseRegister(tok string) (isa.RegRef, int, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if v, ok := isa.ScalarFieldValue(tok); ok {
		return isa.RegRef{Class: isa.ClassNone, Index: v}, v, true
	}
	switch tok {
	case "vcc":
		return isa.RegRef{Class: isa.ClassNone, Index: 106, Count: 2}, 106, true
	case "exec":
		return isa.RegRef{Class: isa.ClassNone, Index: 126, Count: 2}, 126, true
	}
	for _, p := range []struct {
		prefix string
		class  isa.RegClass
		offset int
	}{
		{"s", isa.ClassScalar, 0},
		{"v", isa.ClassVector, isa.VGPROffset9},
	} {
		if !strings.HasPrefix(tok, p.prefix) {
			continue
		}
		rest := tok[len(p.prefix):]
		if rest == "" {
			continue
		}
		if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
			parts := strings.SplitN(rest[1:len(rest)-1], ":", 2)
			if len(parts) != 2 {
				continue
			}
			lo, errLo := strconv.Atoi(parts[0])
			hi, errHi := strconv.Atoi(parts[1])
			if errLo != nil || errHi != nil || hi < lo {
				continue
			}
			return isa.RegRef{Class: p.class, Index: lo, Count: hi - lo + 1}, lo + p.offset, true
		}
		idx, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		return isa.RegRef{Class: p.class, Index: idx, Count: 1}, idx + p.offset, true
	}
	return isa.RegRef{}, 0, false
}

// parseNumericLiteral recognizes integer and float literal syntax (0x.., 0b..,
// plain decimal, and float forms handled by pkg/numfmt).
func parseNumericLiteral(tok string) (uint32, bool, bool) {
	if strings.Contains(tok, ".") || strings.ContainsAny(tok, "eE") && !strings.HasPrefix(tok, "0x") {
		if f, err := strconv.ParseFloat(tok, 32); err == nil {
			return float32Bits(float32(f)), true, true
		}
	}
	if v, err := strconv.ParseInt(tok, 0, 64); err == nil {
		return uint32(v), false, true
	}
	if v, err := strconv.ParseUint(tok, 0, 64); err == nil {
		return uint32(v), false, true
	}
	return 0, false, false
}

func float32Bits(f float32) uint32 { return math.Float32bits(f) }

// Width9 reports the field width (8 vs 9 bits) for scalar-only encodings
// (SOP2/SOPC/SOPK) versus vector-capable ones (VOP*), since the "literal
// follows" sentinel and VGPR range differ between them.
type Width9 bool

const (
	Scalar8 Width9 = false
	Vector9 Width9 = true
)

// ParseOperand parses one textual operand into encoder-ready form. scope
// resolves bare identifiers as expressions (labels, equ symbols); w
// selects the 8-bit scalar-only or 9-bit vector-capable field convention.
func ParseOperand(tok string, scope *expr.Scope, file string, w Width9) (Operand, error) {
	tok = strings.TrimSpace(tok)
	if reg, field, ok := ParseRegister(tok); ok {
		return Operand{Kind: OpReg, Reg: reg, Field: field}, nil
	}
	if v, isFloat, ok := parseNumericLiteral(tok); ok {
		if isFloat {
			if fv, fok := isa.InlineFloat(float64(math.Float32frombits(v))); fok {
				return Operand{Kind: OpInlineConst, Field: fv}, nil
			}
		} else if iv, iok := isa.InlineInt(int64(int32(v))); iok {
			return Operand{Kind: OpInlineConst, Field: iv}, nil
		}
		return Operand{Kind: OpLiteral, Field: litField(w), Literal: v}, nil
	}
	p := expr.NewParser(tok, scope, file)
	e, err := p.Parse()
	if err != nil {
		return Operand{}, err
	}
	e.RegisterOccurrences()
	if res := e.Evaluate(true); res.Status == expr.EvalSuccess && res.Section == expr.AbsSection {
		if iv, iok := isa.InlineInt(int64(res.Value)); iok {
			return Operand{Kind: OpInlineConst, Field: iv}, nil
		}
		return Operand{Kind: OpLiteral, Field: litField(w), Literal: uint32(res.Value)}, nil
	}
	return Operand{Kind: OpExpr, Field: litField(w), Expr: e}, nil
}

func litField(w Width9) int {
	if w == Vector9 {
		return isa.LiteralSrc9
	}
	return isa.LiteralSSRC
}

// SplitOperands splits a comma-joined operand list, respecting nested
// parentheses and brackets (hwreg(...), s[4:5]).
func SplitOperands(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(s) {
		out = append(out, strings.TrimSpace(s[start:]))
	}
	return out
}
