package tools

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/shirou/gopsutil/mem"
)

// HostMemoryMiB returns the physical memory of the host in MiB.
func HostMemoryMiB() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to read host memory: %w", err)
	}
	return vm.Total / units.MiB, nil
}

// CheckMemoryCap fails when a jail asks for more memory than the host has.
// A zero cap means unlimited and always passes.
func CheckMemoryCap(capMiB, hostMiB uint64) error {
	if capMiB == 0 || capMiB <= hostMiB {
		return nil
	}
	return fmt.Errorf("max_physical_memory %s exceeds host memory %s",
		FormatMiB(capMiB), FormatMiB(hostMiB))
}

// FormatMiB renders a size given in MiB in human readable binary units.
func FormatMiB(mib uint64) string {
	return units.BytesSize(float64(mib) * units.MiB)
}

// ParseMiB parses a human readable size such as "512m" or "2GiB" and
// returns it in MiB, rounded down.
func ParseMiB(size string) (uint64, error) {
	bytes, err := units.RAMInBytes(size)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", size, err)
	}
	if bytes < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", size)
	}
	return uint64(bytes) / units.MiB, nil
}
