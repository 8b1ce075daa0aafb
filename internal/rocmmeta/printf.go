package rocmmeta

import (
	"fmt"
	"strconv"
	"strings"
)

// encodePrintfs/decodePrintfs implement the "amdhsa.printf" array's element
// format: a colon-separated string "id:nargs:size1:size2:...:format", the
// same shape original_source's parsePrintfInfoString consumes (that
// function's body lives outside the files kept for this retrieval pack, so
// the colon-separated field order here is reconstructed from its call site
// and the surrounding field list rather than verified against its source).
func encodePrintfs(infos []PrintfInfo) []string {
	out := make([]string, 0, len(infos))
	for _, p := range infos {
		fields := make([]string, 0, len(p.ArgSizes)+2)
		fields = append(fields, strconv.FormatUint(uint64(p.ID), 10))
		fields = append(fields, strconv.Itoa(len(p.ArgSizes)))
		for _, sz := range p.ArgSizes {
			fields = append(fields, strconv.FormatUint(uint64(sz), 10))
		}
		fields = append(fields, p.FormatStr)
		out = append(out, strings.Join(fields, ":"))
	}
	return out
}

func decodePrintfs(raw []string) []PrintfInfo {
	out := make([]PrintfInfo, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) < 2 {
			continue
		}
		id64, _ := strconv.ParseUint(parts[0], 10, 32)
		nargs, _ := strconv.Atoi(parts[1])
		info := PrintfInfo{ID: uint32(id64)}
		if nargs >= 0 && len(parts) >= 3 {
			rest := strings.SplitN(parts[2], ":", nargs+1)
			for i := 0; i < nargs && i < len(rest); i++ {
				sz, _ := strconv.ParseUint(rest[i], 10, 32)
				info.ArgSizes = append(info.ArgSizes, uint32(sz))
			}
			if len(rest) > nargs {
				info.FormatStr = rest[nargs]
			}
		}
		out = append(out, info)
	}
	return out
}

func (p PrintfInfo) String() string {
	return fmt.Sprintf("printf#%d(%d args): %q", p.ID, len(p.ArgSizes), p.FormatStr)
}
