package sysinfo

import (
	"context"
	"time"
)

// Process is a point-in-time view of one running process
type Process struct {
	PID        int32
	Name       string
	CPUPercent float64
	MemPercent float64
}

// Memory describes physical memory in bytes
type Memory struct {
	Total       uint64
	Used        uint64
	Free        uint64
	Shared      uint64
	Buffers     uint64
	Available   uint64
	UsedPercent float64
}

// Swap describes swap space in bytes
type Swap struct {
	Total uint64
	Used  uint64
	Free  uint64
}

// Usage describes one mounted filesystem in bytes
type Usage struct {
	Device      string
	Mountpoint  string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// Provider reports process, memory and disk statistics of the host. The list
// methods may return a partial result together with an error.
type Provider interface {
	// Processes lists every process that could be inspected; inaccessible ones are skipped
	Processes(ctx context.Context) ([]Process, error)
	// CPUPercent samples overall CPU utilisation over interval
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	Memory(ctx context.Context) (Memory, error)
	Swap(ctx context.Context) (Swap, error)
	// DiskUsage reports the filesystem holding path
	DiskUsage(ctx context.Context, path string) (Usage, error)
	// Filesystems reports every mounted filesystem; partitions that cannot be read are skipped
	Filesystems(ctx context.Context) ([]Usage, error)
}
