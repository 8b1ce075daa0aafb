package asm

import (
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/internal/section"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

// Context bundles what an encoder call needs: the section it appends words
// to, the lexical scope operands resolve names against, the section's own
// ID (for code-flow/branch-target section-difference arithmetic), and the
// target generation (narrows which InstrDef rows Lookup considers legal).
type Context struct {
	Section   *section.Section
	SectionID expr.SectionID
	Scope     *expr.Scope
	Gen       isa.Generation
	File      string

	// Pos is the source position of the line currently being encoded, set
	// by the caller before each EncodeLine call so every asmerr.Diagnostic
	// this package returns carries a real file:line:col (§7).
	Pos srcpos.Position

	// modifier is set for the duration of one EncodeLine call when the
	// mnemonic carries an "_sdwa"/"_dpp" suffix; encodeVOP1/VOP2/VOPC read
	// it to route src0 through applyModifier instead of emitTrailingLiteral.
	modifier modKind

	// Pending collects every forward-referencing expression this context
	// has attached a Target to, resolved or not, so FinalizeRelocations can
	// sweep the ones still unresolved once assembly of a file finishes.
	Pending []*expr.Expression
}

// EncodeLine assembles one instruction line ("mnemonic op1, op2, ...",
// label and comment already stripped by the caller's line scanner) and
// appends its word(s) to ctx.Section, returning the offset it was written
// at.
func EncodeLine(ctx *Context, line string) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "empty instruction line")
	}
	fields := strings.SplitN(line, " ", 2)
	mnemonic := strings.ToLower(fields[0])
	var operandText string
	if len(fields) == 2 {
		operandText = fields[1]
	}

	base, mod := modifierFor(mnemonic)
	if mod != modNone && !isa.MaskFrom1_2.Has(ctx.Gen) {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: sdwa/dpp modifiers require GCN1.2 or later", mnemonic)
	}

	defs := isa.Lookup(base, ctx.Gen)
	if len(defs) == 0 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "unknown or generation-illegal mnemonic %q on %s", mnemonic, ctx.Gen)
	}
	def := defs[0]
	if mod != modNone && (def.Encoding != isa.EncVOP1 && def.Encoding != isa.EncVOP2 && def.Encoding != isa.EncVOPC) {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: sdwa/dpp modifiers only apply to VOP1/VOP2/VOPC instructions", mnemonic)
	}

	rawOperands := SplitOperands(operandText)
	ctx.modifier = mod
	defer func() { ctx.modifier = modNone }()

	switch def.Encoding {
	case isa.EncSOP2:
		return encodeSOP2(ctx, def, rawOperands)
	case isa.EncSOP1:
		return encodeSOP1(ctx, def, rawOperands)
	case isa.EncSOPK:
		return encodeSOPK(ctx, def, rawOperands)
	case isa.EncSOPC:
		return encodeSOPC(ctx, def, rawOperands)
	case isa.EncSOPP:
		return encodeSOPP(ctx, def, rawOperands)
	case isa.EncVOP1:
		return encodeVOP1(ctx, def, rawOperands)
	case isa.EncVOP2:
		return encodeVOP2(ctx, def, rawOperands)
	case isa.EncVOPC:
		return encodeVOPC(ctx, def, rawOperands)
	case isa.EncVOP3:
		return encodeVOP3(ctx, def, rawOperands)
	case isa.EncVOP3P:
		return encodeVOP3P(ctx, def, rawOperands)
	case isa.EncVINTRP:
		return encodeVINTRP(ctx, def, rawOperands)
	case isa.EncDS:
		return encodeDS(ctx, def, rawOperands)
	case isa.EncMUBUF:
		return encodeMUBUF(ctx, def, rawOperands)
	case isa.EncMTBUF:
		return encodeMTBUF(ctx, def, rawOperands)
	case isa.EncMIMG:
		return encodeMIMG(ctx, def, rawOperands)
	case isa.EncEXP:
		return encodeEXP(ctx, def, rawOperands)
	case isa.EncFLAT:
		return encodeFLAT(ctx, def, rawOperands)
	case isa.EncSMEM:
		return encodeSMEM(ctx, def, rawOperands)
	default:
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "encoding %s not yet implemented by this module", def.Encoding)
	}
}

// emitWord appends a 32-bit little-endian word and returns its offset.
func emitWord(s *section.Section, w uint32) int {
	return s.Append([]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)})
}

// attachLiteral records a forward-referencing literal operand's expression
// so it patches the just-emitted literal word once resolved (§4.C "Data
// slot" target, reused here rather than invented: the encoder is just
// another producer of TargetData, same as a plain ".int" directive).
func attachLiteral(ctx *Context, offset int, e *expr.Expression) {
	e.SetTarget(expr.TargetData{Writer: ctx.Section, Offset: offset, Width: expr.Width32})
	ctx.Pending = append(ctx.Pending, e)
}

func parseOperands(ctx *Context, raw []string, w Width9) ([]Operand, error) {
	ops := make([]Operand, len(raw))
	for i, tok := range raw {
		o, err := ParseOperand(tok, ctx.Scope, ctx.File, w)
		if err != nil {
			return nil, asmerr.New(asmerr.Encoding, ctx.Pos, "operand %d (%q): %v", i+1, tok, err)
		}
		ops[i] = o
	}
	return ops, nil
}

func needOperands(ctx *Context, n int, ops []Operand, mnemonic string) error {
	if len(ops) < n {
		return asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected %d operands, got %d", mnemonic, n, len(ops))
	}
	return nil
}

// --- SOP2: dst, src0, src1 ---

func encodeSOP2(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Scalar8)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 3, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0, src1 := ops[0], ops[1], ops[2]
	word := uint32(0b10)<<30 | def.Opcode<<23 | uint32(dst.Reg.Index&0x7f)<<16 | uint32(src1.Field&0xff)<<8 | uint32(src0.Field&0xff)
	off := emitWord(ctx.Section, word)
	if err := emitTrailingLiteral(ctx, off, src0, src1); err != nil {
		return 0, err
	}
	return off, nil
}

// emitTrailingLiteral appends a literal word for whichever operand actually
// needs one (at most one operand may be a literal per instruction), wiring
// an unresolved expression operand to patch that word later.
func emitTrailingLiteral(ctx *Context, wordOff int, candidates ...Operand) error {
	for _, c := range candidates {
		if c.Kind == OpLiteral {
			litOff := emitWord(ctx.Section, c.Literal)
			_ = litOff
			return nil
		}
		if c.Kind == OpExpr {
			litOff := emitWord(ctx.Section, 0)
			attachLiteral(ctx, litOff, c.Expr)
			return nil
		}
	}
	return nil
}

// --- SOP1: dst, src0 ---

func encodeSOP1(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Scalar8)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 2, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	dst, src0 := ops[0], ops[1]
	word := uint32(0b101111101)<<23 | uint32(dst.Reg.Index&0x7f)<<16 | def.Opcode<<8 | uint32(src0.Field&0xff)
	off := emitWord(ctx.Section, word)
	if err := emitTrailingLiteral(ctx, off, src0); err != nil {
		return 0, err
	}
	return off, nil
}

// --- SOPK: dst, SIMM16 (or hwreg()/sendmsg()-style pseudo operand) ---

func encodeSOPK(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	if len(raw) < 1 {
		return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: expected at least 1 operand", def.Mnemonic)
	}
	dstReg, dstField, hasDst := ParseRegister(raw[0])
	simmTok := ""
	if len(raw) > 1 {
		simmTok = raw[1]
	}

	var simm uint16
	var extra uint32
	var hasExtra bool
	switch {
	case strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw[0])), "hwreg("):
		v, err := ParseHWReg(raw[0])
		if err != nil {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%v", err)
		}
		simm = v
		if len(raw) > 1 {
			ops, err := parseOperands(ctx, raw[1:2], Scalar8)
			if err != nil {
				return 0, err
			}
			if ops[0].Kind == OpLiteral {
				extra, hasExtra = ops[0].Literal, true
			}
		}
	default:
		if !hasDst {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: malformed destination operand %q", def.Mnemonic, raw[0])
		}
		if simmTok == "" {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: missing SIMM16 operand", def.Mnemonic)
		}
		ops, err := parseOperands(ctx, []string{simmTok}, Scalar8)
		if err != nil {
			return 0, err
		}
		if ops[0].Kind != OpLiteral && ops[0].Kind != OpInlineConst {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%s: SIMM16 operand must be a constant", def.Mnemonic)
		}
		simm = uint16(ops[0].Literal)
	}

	sdst := 0
	if hasDst {
		sdst = dstField
	}
	_ = dstReg
	word := uint32(0b1011)<<28 | def.Opcode<<23 | uint32(sdst&0x7f)<<16 | uint32(simm)
	off := emitWord(ctx.Section, word)
	if hasExtra {
		emitWord(ctx.Section, extra)
	}
	return off, nil
}

// --- SOPC: src0, src1 (no destination; result goes to SCC) ---

func encodeSOPC(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	ops, err := parseOperands(ctx, raw, Scalar8)
	if err != nil {
		return 0, err
	}
	if err := needOperands(ctx, 2, ops, def.Mnemonic); err != nil {
		return 0, err
	}
	src0, src1 := ops[0], ops[1]
	word := uint32(0b101111110)<<23 | def.Opcode<<16 | uint32(src1.Field&0xff)<<8 | uint32(src0.Field&0xff)
	off := emitWord(ctx.Section, word)
	if err := emitTrailingLiteral(ctx, off, src0, src1); err != nil {
		return 0, err
	}
	return off, nil
}

// --- SOPP: an optional SIMM16 argument, or a branch-target label ---

func encodeSOPP(ctx *Context, def isa.InstrDef, raw []string) (int, error) {
	word := uint32(0b101111111)<<23 | def.Opcode<<16
	off := emitWord(ctx.Section, word)

	if len(raw) == 0 {
		return off, nil
	}
	tok := strings.TrimSpace(raw[0])

	switch {
	case strings.HasPrefix(def.Mnemonic, "s_branch") || strings.HasPrefix(def.Mnemonic, "s_cbranch"):
		return off, encodeBranchTarget(ctx, off, tok)
	case strings.HasPrefix(tok, "vmcnt") || strings.HasPrefix(tok, "expcnt") || strings.HasPrefix(tok, "lgkmcnt"):
		v, err := ParseWaitCnt(tok)
		if err != nil {
			return 0, asmerr.New(asmerr.Encoding, ctx.Pos, "%v", err)
		}
		ctx.Section.WriteAt(off, []byte{byte(v), byte(v >> 8), byte(word >> 16), byte(word >> 24)})
		return off, nil
	default:
		ops, err := parseOperands(ctx, raw, Scalar8)
		if err != nil {
			return 0, err
		}
		if len(ops) > 0 && (ops[0].Kind == OpLiteral || ops[0].Kind == OpInlineConst) {
			simm := uint16(ops[0].Literal)
			ctx.Section.WriteAt(off, []byte{byte(simm), byte(simm >> 8), byte(word >> 16), byte(word >> 24)})
		}
		return off, nil
	}
}

// encodeBranchTarget wires a (possibly forward-referencing) label into a
// just-emitted s_branch/s_cbranch_* word's SIMM16 field. §8 E6 verifies
// target = (instrOffset+4) + signed(SIMM16)*4, so the encoder direction
// solves for SIMM16 = (target - (instrOffset+4)) / 4, built as a raw
// postfix expression (label, here, SUB, 4, DIV) rather than through the
// text lexer, since "here" is a synthetic section-relative value with no
// surface syntax of its own.
func encodeBranchTarget(ctx *Context, wordOffset int, label string) error {
	sym, ok := ctx.Scope.Lookup(label)
	if !ok {
		sym = ctx.Scope.DefineLabel(label)
	}
	ctx.Section.AddCodeFlow(wordOffset, section.FlowJump)
	e := &expr.Expression{
		Ops: []expr.Op{expr.OpSymbol, expr.OpValue, expr.OpSub, expr.OpValue, expr.OpDivS},
		Args: []expr.Arg{
			{Sym: sym},
			{Value: uint64(wordOffset + 4), Section: ctx.SectionID},
			{},
			{Value: 4, Section: expr.AbsSection},
			{},
		},
		Positions: []srcpos.Position{ctx.Pos, ctx.Pos, ctx.Pos, ctx.Pos, ctx.Pos},
	}
	e.RegisterOccurrences()
	// The expression's Target is the word's low 16 bits (TargetData at
	// Width16); the code-flow entry added above is populated separately by
	// whatever later pass walks resolved branches (disassembly reconstructs
	// it directly from the decoded SIMM16 instead, since that direction
	// never needs a forward reference).
	e.SetTarget(expr.TargetData{Writer: ctx.Section, Offset: wordOffset, Width: expr.Width16})
	ctx.Pending = append(ctx.Pending, e)
	return nil
}
