// Package rocmmeta implements the newer of the two ROCm kernel metadata
// formats: a MsgPack-encoded tree under a top-level "amdhsa.version" /
// "amdhsa.kernels" / "amdhsa.printf" triple. Field and key names are
// grounded on original_source/amdbin/ROCmMetadataMP.cpp's own key-string
// table; the wire codec itself is github.com/vmihailenco/msgpack/v5, which
// already emits the minimal-length integer/string/map/array headers §8
// invariant 5 requires.
package rocmmeta

import "github.com/vmihailenco/msgpack/v5"

// AccessQualifier mirrors the three OpenCL-style access strings a kernel
// argument may carry.
type AccessQualifier string

const (
	AccessNone      AccessQualifier = ""
	AccessReadOnly  AccessQualifier = "read_only"
	AccessWriteOnly AccessQualifier = "write_only"
	AccessReadWrite AccessQualifier = "read_write"
)

// ValueKind enumerates ".value_kind", the argument's ABI role.
type ValueKind string

const (
	ValueByValue                 ValueKind = "by_value"
	ValueDynamicSharedPointer    ValueKind = "dynamic_shared_pointer"
	ValueGlobalBuffer            ValueKind = "global_buffer"
	ValueHiddenCompletionAction  ValueKind = "hidden_completion_action"
	ValueHiddenDefaultQueue      ValueKind = "hidden_default_queue"
	ValueHiddenGlobalOffsetX     ValueKind = "hidden_global_offset_x"
	ValueHiddenGlobalOffsetY     ValueKind = "hidden_global_offset_y"
	ValueHiddenGlobalOffsetZ     ValueKind = "hidden_global_offset_z"
	ValueHiddenMultigridSyncArg  ValueKind = "hidden_multigrid_sync_arg"
	ValueHiddenNone              ValueKind = "hidden_none"
	ValueHiddenPrintfBuffer      ValueKind = "hidden_printf_buffer"
	ValueImage                   ValueKind = "image"
	ValuePipe                    ValueKind = "pipe"
	ValueQueue                   ValueKind = "queue"
	ValueSampler                 ValueKind = "sampler"
)

// AddressSpace is ".address_space".
type AddressSpace string

const (
	AddrPrivate   AddressSpace = "private"
	AddrGlobal    AddressSpace = "global"
	AddrConstant  AddressSpace = "constant"
	AddrLocal     AddressSpace = "local"
	AddrGeneric   AddressSpace = "generic"
	AddrRegion    AddressSpace = "region"
)

// KernelArg is one entry of a kernel's ".args" array.
type KernelArg struct {
	Name           string          `msgpack:".name,omitempty"`
	TypeName       string          `msgpack:".type_name,omitempty"`
	Size           uint64          `msgpack:".size"`
	Offset         uint64          `msgpack:".offset"`
	ValueKind      ValueKind       `msgpack:".value_kind"`
	ValueType      string          `msgpack:".value_type"`
	PointeeAlign   uint64          `msgpack:".pointee_align,omitempty"`
	AddressSpace   AddressSpace    `msgpack:".address_space,omitempty"`
	Access         AccessQualifier `msgpack:".access,omitempty"`
	ActualAccess   AccessQualifier `msgpack:".actual_access,omitempty"`
	IsConst        bool            `msgpack:".is_const,omitempty"`
	IsRestrict     bool            `msgpack:".is_restrict,omitempty"`
	IsVolatile     bool            `msgpack:".is_volatile,omitempty"`
	IsPipe         bool            `msgpack:".is_pipe,omitempty"`
}

// Kernel is one entry of the top-level "amdhsa.kernels" array.
type Kernel struct {
	Name                      string      `msgpack:".name"`
	Symbol                    string      `msgpack:".symbol"`
	Language                  string      `msgpack:".language,omitempty"`
	LanguageVersion           []uint32    `msgpack:".language_version,omitempty"`
	Args                      []KernelArg `msgpack:".args,omitempty"`
	DeviceEnqueueSymbol       string      `msgpack:".device_enqueue_symbol,omitempty"`
	GroupSegmentFixedSize     uint64      `msgpack:".group_segment_fixed_size"`
	PrivateSegmentFixedSize   uint64      `msgpack:".private_segment_fixed_size"`
	KernargSegmentSize        uint64      `msgpack:".kernarg_segment_size"`
	KernargSegmentAlign       uint64      `msgpack:".kernarg_segment_align"`
	WavefrontSize             uint32      `msgpack:".wavefront_size"`
	SgprCount                uint32      `msgpack:".sgpr_count"`
	VgprCount                uint32      `msgpack:".vgpr_count"`
	SgprSpillCount            uint32      `msgpack:".sgpr_spill_count,omitempty"`
	VgprSpillCount            uint32      `msgpack:".vgpr_spill_count,omitempty"`
	MaxFlatWorkgroupSize      uint64      `msgpack:".max_flat_workgroup_size"`
	ReqdWorkgroupSize         []uint32    `msgpack:".reqd_workgroup_size,omitempty"`
	WorkgroupSizeHint         []uint32    `msgpack:".workgroup_size_hint,omitempty"`
	VecTypeHint               string      `msgpack:".vec_type_hint,omitempty"`
}

// PrintfInfo is one decoded "amdhsa.printf" entry: an ID followed by the
// format string's argument byte sizes and the format string itself.
type PrintfInfo struct {
	ID        uint32
	ArgSizes  []uint32
	FormatStr string
}

// Metadata is the full decoded tree.
type Metadata struct {
	Version []uint32
	Kernels []Kernel
	Printf  []PrintfInfo
}

type wireMetadata struct {
	Version []uint32 `msgpack:"amdhsa.version"`
	Kernels []Kernel `msgpack:"amdhsa.kernels"`
	Printf  []string `msgpack:"amdhsa.printf,omitempty"`
}

// Encode packs m to its minimal-length MsgPack byte form.
func Encode(m *Metadata) ([]byte, error) {
	w := wireMetadata{Version: m.Version, Kernels: m.Kernels, Printf: encodePrintfs(m.Printf)}
	return msgpack.Marshal(&w)
}

// Decode unpacks MsgPack bytes into a Metadata tree.
func Decode(data []byte) (*Metadata, error) {
	var w wireMetadata
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	m := &Metadata{Version: w.Version, Kernels: w.Kernels}
	m.Printf = decodePrintfs(w.Printf)
	return m, nil
}
