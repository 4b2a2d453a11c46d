package hostinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info describes the machine a measurement ran on
type Info struct {
	Hostname      string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	OS            string `json:"os" yaml:"os"`
	Platform      string `json:"platform,omitempty" yaml:"platform,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	Architecture  string `json:"architecture" yaml:"architecture"`
	CPUModel      string `json:"cpu_model,omitempty" yaml:"cpu_model,omitempty"`
	CPUThreads    int    `json:"cpu_threads,omitempty" yaml:"cpu_threads,omitempty"`
	RAMTotalBytes uint64 `json:"ram_total_bytes,omitempty" yaml:"ram_total_bytes,omitempty"`
	RAMFreeBytes  uint64 `json:"ram_free_bytes,omitempty" yaml:"ram_free_bytes,omitempty"`
}

// Detect gathers host details. Best effort: anything gopsutil cannot read
// on this platform is left empty.
func Detect() Info {
	info := Info{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUThreads:   runtime.NumCPU(),
	}

	if h, err := host.Info(); err == nil {
		info.Hostname = h.Hostname
		info.Platform = h.Platform
		info.KernelVersion = h.KernelVersion
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if threads, err := cpu.Counts(true); err == nil && threads > 0 {
		info.CPUThreads = threads
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		info.RAMTotalBytes = vmem.Total
		info.RAMFreeBytes = vmem.Available
	}

	return info
}

// FormatRAM renders a byte count as GB with one decimal
func FormatRAM(bytes uint64) string {
	if bytes == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
}

// String is a one-line summary used in log output
func (i Info) String() string {
	cpuModel := i.CPUModel
	if cpuModel == "" {
		cpuModel = "unknown cpu"
	}
	return fmt.Sprintf("%s/%s %s (%d threads) %s", i.OS, i.Architecture, cpuModel, i.CPUThreads, FormatRAM(i.RAMTotalBytes))
}
