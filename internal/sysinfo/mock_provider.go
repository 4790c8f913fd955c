package sysinfo

import (
	"context"
	"time"
)

// MockProvider is a Provider returning canned values for testing
type MockProvider struct {
	ProcessList []Process
	CPU         float64
	Mem         Memory
	SwapSpace   Swap
	Disks       []Usage
	Err         error
	// ListErr is returned alongside ProcessList and Disks
	ListErr error

	Intervals []time.Duration
}

// NewMockProvider creates an empty MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Processes(ctx context.Context) ([]Process, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Process(nil), m.ProcessList...), m.ListErr
}

func (m *MockProvider) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	m.Intervals = append(m.Intervals, interval)
	if m.Err != nil {
		return 0, m.Err
	}
	return m.CPU, nil
}

func (m *MockProvider) Memory(ctx context.Context) (Memory, error) {
	if m.Err != nil {
		return Memory{}, m.Err
	}
	return m.Mem, nil
}

func (m *MockProvider) Swap(ctx context.Context) (Swap, error) {
	if m.Err != nil {
		return Swap{}, m.Err
	}
	return m.SwapSpace, nil
}

func (m *MockProvider) DiskUsage(ctx context.Context, path string) (Usage, error) {
	if m.Err != nil {
		return Usage{}, m.Err
	}
	for _, usage := range m.Disks {
		if usage.Mountpoint == path {
			return usage, nil
		}
	}
	return Usage{Mountpoint: path}, nil
}

func (m *MockProvider) Filesystems(ctx context.Context) ([]Usage, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Usage(nil), m.Disks...), m.ListErr
}
