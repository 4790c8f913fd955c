package sysinfo

import (
	"context"
	"os"
	"testing"
)

func TestHostProvider_Processes(t *testing.T) {
	provider := NewHostProvider()

	procs, err := provider.Processes(context.Background())
	if err != nil {
		t.Fatalf("Processes() failed: %v", err)
	}

	self := int32(os.Getpid())
	found := false
	for _, proc := range procs {
		if proc.PID == self {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected own pid %d in process list", self)
	}
}

func TestHostProvider_Memory(t *testing.T) {
	provider := NewHostProvider()

	memory, err := provider.Memory(context.Background())
	if err != nil {
		t.Fatalf("Memory() failed: %v", err)
	}
	if memory.Total == 0 {
		t.Error("Expected non-zero total memory")
	}
	if memory.Used > memory.Total {
		t.Errorf("Used memory %d exceeds total %d", memory.Used, memory.Total)
	}
}

func TestHostProvider_DiskUsage(t *testing.T) {
	provider := NewHostProvider()

	usage, err := provider.DiskUsage(context.Background(), "/")
	if err != nil {
		t.Fatalf("DiskUsage() failed: %v", err)
	}
	if usage.Total == 0 {
		t.Error("Expected non-zero size for /")
	}
}
