package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// parseOffsetModifier recognizes the "offset:N" trailing modifier shared by
// DS/MUBUF/MTBUF/FLAT memory instructions.
func parseOffsetModifier(tok string) (uint32, error) {
	tok = strings.TrimSpace(tok)
	const prefix = "offset:"
	if !strings.HasPrefix(strings.ToLower(tok), prefix) {
		return 0, fmt.Errorf("expected an offset:N modifier, got %q", tok)
	}
	v, err := strconv.ParseInt(tok[len(prefix):], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed offset modifier %q: %w", tok, err)
	}
	return uint32(v), nil
}
