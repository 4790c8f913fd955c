package sysinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// HostProvider implements Provider on top of gopsutil
type HostProvider struct{}

// NewHostProvider creates a provider for the local machine
func NewHostProvider() *HostProvider {
	return &HostProvider{}
}

func (p *HostProvider) Processes(ctx context.Context) ([]Process, error) {
	procs, listErr := process.ProcessesWithContext(ctx)
	if listErr != nil && len(procs) == 0 {
		return nil, fmt.Errorf("failed to list processes: %w", listErr)
	}

	result := make([]Process, 0, len(procs))
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPercent, err := proc.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		memPercent, err := proc.MemoryPercentWithContext(ctx)
		if err != nil {
			continue
		}
		result = append(result, Process{
			PID:        proc.Pid,
			Name:       name,
			CPUPercent: cpuPercent,
			MemPercent: float64(memPercent),
		})
	}

	if listErr != nil {
		return result, fmt.Errorf("process list incomplete: %w", listErr)
	}
	return result, nil
}

func (p *HostProvider) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, fmt.Errorf("failed to sample cpu: %w", err)
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

func (p *HostProvider) Memory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("failed to read memory: %w", err)
	}
	return Memory{
		Total:       vm.Total,
		Used:        vm.Used,
		Free:        vm.Free,
		Shared:      vm.Shared,
		Buffers:     vm.Buffers,
		Available:   vm.Available,
		UsedPercent: vm.UsedPercent,
	}, nil
}

func (p *HostProvider) Swap(ctx context.Context) (Swap, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Swap{}, fmt.Errorf("failed to read swap: %w", err)
	}
	return Swap{Total: sw.Total, Used: sw.Used, Free: sw.Free}, nil
}

func (p *HostProvider) DiskUsage(ctx context.Context, path string) (Usage, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read disk usage of %s: %w", path, err)
	}
	return Usage{
		Mountpoint:  path,
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

func (p *HostProvider) Filesystems(ctx context.Context) ([]Usage, error) {
	partitions, listErr := disk.PartitionsWithContext(ctx, false)
	if listErr != nil && len(partitions) == 0 {
		return nil, fmt.Errorf("failed to list partitions: %w", listErr)
	}

	result := make([]Usage, 0, len(partitions))
	for _, partition := range partitions {
		usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			continue
		}
		result = append(result, Usage{
			Device:      partition.Device,
			Mountpoint:  partition.Mountpoint,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	if listErr != nil {
		return result, fmt.Errorf("partition list incomplete: %w", listErr)
	}
	return result, nil
}
