package amdbin

import (
	"strconv"
	"strings"

	"github.com/clrx-go/clrx/internal/asmerr"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

func metaPos(lineNo int) srcpos.Position {
	return srcpos.Position{File: "amdbin:metadata", Line: lineNo}
}

// KernelArgKind is the first field of each ';'-prefixed metadata line
// (AmdBinaries.cpp's `parseAmdGpuKernelMetadata`): what kind of argument
// the rest of the line describes.
type KernelArgKind int

const (
	ArgValue KernelArgKind = iota
	ArgPointer
	ArgImage
	ArgSampler
	ArgCounter
)

func (k KernelArgKind) String() string {
	switch k {
	case ArgValue:
		return "value"
	case ArgPointer:
		return "pointer"
	case ArgImage:
		return "image"
	case ArgSampler:
		return "sampler"
	case ArgCounter:
		return "counter"
	default:
		return "unknown"
	}
}

func parseArgKind(s string) (KernelArgKind, bool) {
	switch s {
	case "value":
		return ArgValue, true
	case "pointer":
		return ArgPointer, true
	case "image":
		return ArgImage, true
	case "sampler":
		return ArgSampler, true
	case "counter":
		return ArgCounter, true
	default:
		return 0, false
	}
}

// KernelArgMeta is one decoded kernel-argument metadata line. The original
// grammar (AmdBinaries.cpp) carries pointer-space/access qualifiers and
// vector-size fields per kind; this module implements the representative
// core fields (kind, name, type, vector size) the spec names, not the
// original's full per-kind field grammar.
type KernelArgMeta struct {
	Kind       KernelArgKind
	Name       string
	Type       string
	VectorSize int
}

// ParseKernelMetadata decodes a "__OpenCL_<name>_metadata" symbol's raw
// bytes: one ';'-prefixed, ':'-separated line per argument, in declaration
// order.
func ParseKernelMetadata(data []byte) ([]KernelArgMeta, error) {
	var args []KernelArgMeta
	lineNo := 0
	for _, line := range strings.Split(string(data), "\n") {
		lineNo++
		if line == "" {
			continue
		}
		if line[0] != ';' {
			return nil, asmerr.New(asmerr.Binary, metaPos(lineNo), "amdbin: metadata line %d is not a KernelDesc line", lineNo)
		}
		fields := strings.Split(line[1:], ":")
		if len(fields) == 0 {
			continue
		}
		kind, ok := parseArgKind(fields[0])
		if !ok {
			// non-argument descriptor lines (e.g. "version", "device") are
			// skipped, following the original's tolerant-of-unknown-lines
			// stance for forward compatibility.
			continue
		}
		arg := KernelArgMeta{Kind: kind}
		if len(fields) > 1 {
			arg.Name = fields[1]
		}
		if len(fields) > 2 {
			arg.Type = fields[2]
		}
		if len(fields) > 3 {
			if v, err := strconv.Atoi(fields[3]); err == nil {
				arg.VectorSize = v
			}
		}
		args = append(args, arg)
	}
	return args, nil
}

// BuildKernelMetadata is ParseKernelMetadata's inverse.
func BuildKernelMetadata(args []KernelArgMeta) []byte {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteByte(';')
		sb.WriteString(a.Kind.String())
		sb.WriteByte(':')
		sb.WriteString(a.Name)
		sb.WriteByte(':')
		sb.WriteString(a.Type)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(a.VectorSize))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
