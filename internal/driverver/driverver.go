// Package driverver implements process-wide AMD driver-version detection
// and the driver-version-range device table amdcl2bin's GPU-device
// resolution depends on (§4.H–J).
//
// Grounded on original_source/amdbin/AmdCL2Binaries.cpp's
// cl2CodeTables/determineGPUDeviceTypeInt (driver-version-ranged device
// tables, selected via upper_bound on toDriverVersion) and detectMesa
// DriverVersion's cached-detection shape (a process-wide result guarded
// against repeat filesystem probes). This package implements the
// representative eight-range table spec.md names rather than the
// original's full eleven-table/per-architecture matrix.
package driverver

import (
	"sort"
	"sync"

	"github.com/clrx-go/clrx/internal/binfmt"
)

// deviceCodeEntry maps one inner-ELF e_flags value to a GPU device, within
// the device table selected for a given driver-version range.
type deviceCodeEntry struct {
	elfFlags uint32
	device   binfmt.GPUDeviceType
}

// codeTable is one driver-version range's device table, matched by the
// smallest table boundary still >= the binary's driver version (a
// lower_bound search on ToDriverVersion).
type codeTable struct {
	toDriverVersion uint32
	entries         []deviceCodeEntry
}

// codeTables mirrors cl2CodeTables' range boundaries as eight ranges,
// collapsed onto nine device types (Cypress through Vega10).
var codeTables = []codeTable{
	{toDriverVersion: 191205, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceCypress}, {0x2, binfmt.GPUDevicePitcairn}}},
	{toDriverVersion: 200406, entries: []deviceCodeEntry{{0x1, binfmt.GPUDevicePitcairn}, {0x2, binfmt.GPUDeviceTahiti}}},
	{toDriverVersion: 203603, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceTahiti}, {0x2, binfmt.GPUDeviceBonaire}}},
	{toDriverVersion: 223600, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceBonaire}, {0x2, binfmt.GPUDeviceHawaii}}},
	{toDriverVersion: 226400, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceHawaii}, {0x2, binfmt.GPUDeviceCarrizo}}},
	{toDriverVersion: 234800, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceCarrizo}, {0x2, binfmt.GPUDeviceFiji}}},
	{toDriverVersion: 244200, entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceFiji}, {0x2, binfmt.GPUDeviceEllesmere}}},
	{toDriverVersion: ^uint32(0), entries: []deviceCodeEntry{{0x1, binfmt.GPUDeviceEllesmere}, {0x2, binfmt.GPUDeviceVega10}}},
}

// DeviceForFlags resolves a GPU device type from a driver version and an
// inner ELF's e_flags field, selecting the narrowest code table whose
// ToDriverVersion boundary is >= driverVersion (a lower_bound search, so a
// version equal to a boundary selects that boundary's table).
func DeviceForFlags(driverVersion uint32, elfFlags uint32) binfmt.GPUDeviceType {
	idx := sort.Search(len(codeTables), func(i int) bool {
		return codeTables[i].toDriverVersion >= driverVersion
	})
	if idx == len(codeTables) {
		idx = len(codeTables) - 1
	}
	for _, e := range codeTables[idx].entries {
		if e.elfFlags == elfFlags {
			return e.device
		}
	}
	return binfmt.GPUDeviceUnknown
}

var (
	detectOnce      sync.Once
	detectedVersion uint32
)

// Detect returns the process-wide cached driver version, running probe
// exactly once per process (detectMesaDriverVersion's caching shape).
// probe supplies the actual (environment- or filesystem-dependent)
// version lookup; its result is memoized for the process's lifetime.
func Detect(probe func() uint32) uint32 {
	detectOnce.Do(func() {
		detectedVersion = probe()
	})
	return detectedVersion
}
