package driverver

import (
	"testing"

	"github.com/clrx-go/clrx/internal/binfmt"
)

func TestDeviceForFlagsRangeBoundaries(t *testing.T) {
	cases := []struct {
		driverVersion uint32
		elfFlags      uint32
		want          binfmt.GPUDeviceType
	}{
		{100000, 0x1, binfmt.GPUDeviceCypress},
		{191205, 0x2, binfmt.GPUDevicePitcairn},
		{191206, 0x1, binfmt.GPUDevicePitcairn},
		{300000, 0x2, binfmt.GPUDeviceVega10},
	}
	for _, c := range cases {
		got := DeviceForFlags(c.driverVersion, c.elfFlags)
		if got != c.want {
			t.Fatalf("DeviceForFlags(%d, %#x) = %v, want %v", c.driverVersion, c.elfFlags, got, c.want)
		}
	}
}

func TestDeviceForFlagsUnknown(t *testing.T) {
	if got := DeviceForFlags(191205, 0xff); got != binfmt.GPUDeviceUnknown {
		t.Fatalf("expected unknown device, got %v", got)
	}
}

func TestDetectMemoizes(t *testing.T) {
	calls := 0
	probe := func() uint32 {
		calls++
		return 203603
	}
	v1 := Detect(probe)
	v2 := Detect(probe)
	if v1 != 203603 || v2 != 203603 {
		t.Fatalf("unexpected detected versions: %d, %d", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("expected probe to run once, ran %d times", calls)
	}
}
