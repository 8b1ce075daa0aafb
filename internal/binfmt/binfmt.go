// Package binfmt defines the shared read contract every AMD GPU binary
// container variant satisfies once its outer ELF has been parsed, per
// spec §9's "union of inner-binary variants becomes a sum type with a
// shared list_kernels/kernel_code/kernel_metadata contract" guidance.
// internal/amdbin, internal/amdcl2bin, and internal/galliumbin each
// provide one implementation.
package binfmt

// InnerBinary is satisfied by a parsed AMD legacy, AMDCL2, or Gallium
// kernel container.
type InnerBinary interface {
	// ListKernels returns every kernel name the container carries, in
	// container order.
	ListKernels() []string
	// KernelCode returns the kernel's machine-code bytes.
	KernelCode(name string) ([]byte, error)
	// KernelMetadata returns the kernel's raw metadata payload (a
	// legacy ';'-delimited description string, an AMDCL2 kernel-header
	// struct, or a Gallium argument table, depending on variant).
	KernelMetadata(name string) ([]byte, error)
}

// GPUDeviceType identifies the target GPU architecture a kernel was
// compiled for, resolved from the inner ELF's e_machine/e_flags field via
// a small per-variant table (§4.H–J).
type GPUDeviceType uint32

const (
	GPUDeviceUnknown GPUDeviceType = iota
	GPUDeviceCypress
	GPUDevicePitcairn
	GPUDeviceTahiti
	GPUDeviceBonaire
	GPUDeviceHawaii
	GPUDeviceCarrizo
	GPUDeviceFiji
	GPUDeviceEllesmere
	GPUDeviceVega10
)
