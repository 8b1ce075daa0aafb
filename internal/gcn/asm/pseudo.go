package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/gcn/isa"
)

// ParseHWReg parses "hwreg(name, offset, width)" or "hwreg(name)" (offset=0,
// width=32 default per the ISA's documented defaults) into its packed
// 16-bit SIMM16 value (§8 E4).
func ParseHWReg(tok string) (uint16, error) {
	body, ok := callBody(tok, "hwreg")
	if !ok {
		return 0, fmt.Errorf("not a hwreg() operand: %q", tok)
	}
	args := SplitOperands(body)
	if len(args) == 0 {
		return 0, fmt.Errorf("hwreg() takes at least a register name")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	id, ok := isa.HWRegID[name]
	if !ok {
		if n, err := strconv.Atoi(name); err == nil {
			id = n
		} else {
			return 0, fmt.Errorf("unknown hwreg name %q", name)
		}
	}
	offset, width := 0, 32
	if len(args) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
			offset = v
		}
	}
	if len(args) > 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[2])); err == nil {
			width = v
		}
	}
	return isa.EncodeHWReg(id, offset, width), nil
}

// sendMsgID names the message classes recognized by sendmsg(), following the
// GCN message-passing mechanism used for GS/interrupt/halt-style signaling.
var sendMsgID = map[string]int{
	"interrupt": 1, "gs": 2, "gs_done": 3, "savewave": 4,
	"stall_wave_gen": 5, "halt_waves": 6, "ordered_ps_done": 7,
	"early_prim_dealloc": 8, "gs_alloc_req": 9, "get_doorbell": 10,
}

var gsOp = map[string]int{"nop": 0, "cut": 1, "emit": 2, "emit-cut": 3}

// ParseSendMsg parses "sendmsg(gs, emit, 0)"-style operands into the packed
// 16-bit value: bits0-3 message id, bits4-5 gs-op (whenever the second
// argument names one, for any message), bits8-9 stream id.
func ParseSendMsg(tok string) (uint16, error) {
	body, ok := callBody(tok, "sendmsg")
	if !ok {
		return 0, fmt.Errorf("not a sendmsg() operand: %q", tok)
	}
	args := SplitOperands(body)
	if len(args) == 0 {
		return 0, fmt.Errorf("sendmsg() takes a message name")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	id, ok := sendMsgID[name]
	if !ok {
		return 0, fmt.Errorf("unknown sendmsg message %q", name)
	}
	val := uint16(id & 0xf)
	if len(args) > 1 {
		op := strings.ToLower(strings.TrimSpace(args[1]))
		if code, ok := gsOp[op]; ok {
			val |= uint16(code&0x3) << 4
		}
	}
	if len(args) > 2 {
		if stream, err := strconv.Atoi(strings.TrimSpace(args[2])); err == nil {
			val |= uint16(stream&0x3) << 8
		}
	}
	return val, nil
}

// WaitCounts holds the three independently-specified s_waitcnt fields.
type WaitCounts struct {
	VMCnt, EXPCnt, LGKMCnt int
	HasVM, HasEXP, HasLGKM bool
}

// ParseWaitCnt folds one or more vmcnt()/expcnt()/lgkmcnt() pseudo-operands
// (possibly "&"-joined, as the assembler syntax allows) into the SIMM16
// value s_waitcnt packs them into: bits0-3 vmcnt (4 bits pre-1.2, low nibble
// here for simplicity), bits4-6 expcnt, bits8-12 lgkmcnt. A counter not
// named is set to its all-ones "no wait" value; bit 7 and bits 13-15 are 0.
func ParseWaitCnt(tok string) (uint16, error) {
	wc := WaitCounts{}
	for _, part := range strings.Split(tok, "&") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case strings.HasPrefix(part, "vmcnt"):
			v, err := intArg(part, "vmcnt")
			if err != nil {
				return 0, err
			}
			wc.VMCnt, wc.HasVM = v, true
		case strings.HasPrefix(part, "expcnt"):
			v, err := intArg(part, "expcnt")
			if err != nil {
				return 0, err
			}
			wc.EXPCnt, wc.HasEXP = v, true
		case strings.HasPrefix(part, "lgkmcnt"):
			v, err := intArg(part, "lgkmcnt")
			if err != nil {
				return 0, err
			}
			wc.LGKMCnt, wc.HasLGKM = v, true
		default:
			return 0, fmt.Errorf("unrecognized waitcnt term %q", part)
		}
	}
	return wc.Pack(), nil
}

// Pack encodes the wait counts into s_waitcnt's SIMM16, defaulting any
// unspecified field to its all-bits-set "no wait" value.
func (wc WaitCounts) Pack() uint16 {
	vm, exp, lgkm := 0xf, 0x7, 0x1f
	if wc.HasVM {
		vm = wc.VMCnt & 0xf
	}
	if wc.HasEXP {
		exp = wc.EXPCnt & 0x7
	}
	if wc.HasLGKM {
		lgkm = wc.LGKMCnt & 0x1f
	}
	return uint16(vm) | uint16(exp)<<4 | uint16(lgkm)<<8
}

func intArg(tok, fn string) (int, error) {
	body, ok := callBody(tok, fn)
	if !ok {
		return 0, fmt.Errorf("malformed %s() operand: %q", fn, tok)
	}
	return strconv.Atoi(strings.TrimSpace(body))
}

func callBody(tok, fn string) (string, bool) {
	tok = strings.TrimSpace(tok)
	low := strings.ToLower(tok)
	if !strings.HasPrefix(low, fn+"(") || !strings.HasSuffix(tok, ")") {
		return "", false
	}
	return tok[len(fn)+1 : len(tok)-1], true
}
