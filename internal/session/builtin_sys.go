package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/mainbong/termulator/internal/sysinfo"
)

const (
	gigabyte     = 1 << 30
	topProcesses = 10
)

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func cmdPs(ctx context.Context, s *Session, args []string) (int, string) {
	procs, err := s.sys.Processes(ctx)
	if err != nil {
		s.log.Warn("ps: %v", err)
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	lines := []string{"PID\tNAME\t\t\tCPU%\tMEM%"}
	for _, p := range procs {
		lines = append(lines, fmt.Sprintf("%d\t%-15s\t%.1f\t%.1f", p.PID, truncate(p.Name, 15), p.CPUPercent, p.MemPercent))
	}
	return 0, strings.Join(lines, "\n")
}

func cmdKill(ctx context.Context, s *Session, args []string) (int, string) {
	sig := unix.SIGTERM
	operands := args
	switch {
	case len(args) > 0 && args[0] == "--":
		operands = args[1:]
	case len(args) > 0 && args[0] == "-s":
		if len(args) < 2 {
			return 1, "kill: option requires an argument -- 's'"
		}
		parsed, ok := parseSignal(args[1])
		if !ok {
			return 1, fmt.Sprintf("kill: invalid signal: %s", args[1])
		}
		sig, operands = parsed, args[2:]
	case len(args) > 0 && len(args[0]) > 1 && strings.HasPrefix(args[0], "-"):
		parsed, ok := parseSignal(args[0][1:])
		if !ok {
			return 1, fmt.Sprintf("kill: invalid signal: %s", args[0][1:])
		}
		sig, operands = parsed, args[1:]
	}
	if len(operands) == 0 {
		return 1, "kill: missing process ID"
	}

	var lines []string
	for _, operand := range operands {
		pid, err := strconv.Atoi(operand)
		if err != nil || pid <= 0 {
			return 1, "kill: invalid process ID"
		}
		if err := unix.Kill(pid, sig); err != nil {
			switch {
			case errors.Is(err, unix.ESRCH):
				return 1, fmt.Sprintf("kill: no such process: %s", operand)
			case errors.Is(err, unix.EPERM):
				return 1, fmt.Sprintf("kill: permission denied: %s", operand)
			default:
				return 1, fmt.Sprintf("kill: %s: %v", operand, err)
			}
		}
		s.log.Info("sent %s to %d", unix.SignalName(sig), pid)
		lines = append(lines, fmt.Sprintf("Process %d killed", pid))
	}
	return 0, strings.Join(lines, "\n")
}

// parseSignal accepts a number, a name like TERM or a full name like SIGTERM
func parseSignal(value string) (syscall.Signal, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		if n <= 0 || n >= 65 {
			return 0, false
		}
		return syscall.Signal(n), true
	}
	name := strings.ToUpper(value)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	return sig, sig != 0
}

// cmdTop renders one snapshot; a statistic that cannot be read is shown as zero
func cmdTop(ctx context.Context, s *Session, args []string) (int, string) {
	cpuPercent, err := s.sys.CPUPercent(ctx, s.topInterval)
	if err != nil {
		s.log.Warn("top: cpu: %v", err)
	}
	mem, err := s.sys.Memory(ctx)
	if err != nil {
		s.log.Warn("top: memory: %v", err)
	}
	disk, err := s.sys.DiskUsage(ctx, "/")
	if err != nil {
		s.log.Warn("top: disk: %v", err)
	}
	procs, err := s.sys.Processes(ctx)
	if err != nil {
		s.log.Warn("top: processes: %v", err)
	}

	sort.Slice(procs, func(i, j int) bool {
		a, b := procs[i], procs[j]
		if a.CPUPercent != b.CPUPercent {
			return a.CPUPercent > b.CPUPercent
		}
		if a.MemPercent != b.MemPercent {
			return a.MemPercent > b.MemPercent
		}
		return a.PID > b.PID
	})
	if len(procs) > topProcesses {
		procs = procs[:topProcesses]
	}

	lines := []string{
		fmt.Sprintf("CPU Usage: %.1f%%", cpuPercent),
		fmt.Sprintf("Memory Usage: %.1f%% (%.1fGB / %.1fGB)", mem.UsedPercent, wholeGigabytes(mem.Used), wholeGigabytes(mem.Total)),
		fmt.Sprintf("Disk Usage: %.1f%% (%.1fGB / %.1fGB)", disk.UsedPercent, wholeGigabytes(disk.Used), wholeGigabytes(disk.Total)),
		"",
		"Top Processes:",
	}
	for _, p := range procs {
		lines = append(lines, fmt.Sprintf("%6d %-20s %6.1f%% %6.1f%%", p.PID, truncate(p.Name, 20), p.CPUPercent, p.MemPercent))
	}
	return 0, strings.Join(lines, "\n")
}

func wholeGigabytes(bytes uint64) float64 {
	return float64(bytes / gigabyte)
}

func cmdDf(ctx context.Context, s *Session, args []string) (int, string) {
	filesystems, err := s.sys.Filesystems(ctx)
	if err != nil {
		s.log.Warn("df: %v", err)
	}

	lines := []string{"Filesystem\t\tSize\tUsed\tAvail\tUse%\tMounted on"}
	for _, u := range filesystems {
		lines = append(lines, formatUsage(u))
	}
	return 0, strings.Join(lines, "\n")
}

func formatUsage(u sysinfo.Usage) string {
	var percent float64
	if u.Total > 0 {
		percent = float64(u.Used) / float64(u.Total) * 100
	}
	return fmt.Sprintf("%-15s\t%dG\t%dG\t%dG\t%.0f%%\t%s",
		truncate(u.Device, 15), u.Total/gigabyte, u.Used/gigabyte, u.Free/gigabyte, percent, u.Mountpoint)
}

func cmdFree(ctx context.Context, s *Session, args []string) (int, string) {
	mem, err := s.sys.Memory(ctx)
	if err != nil {
		s.log.Warn("free: memory: %v", err)
	}
	swap, err := s.sys.Swap(ctx)
	if err != nil {
		s.log.Warn("free: swap: %v", err)
	}

	lines := []string{
		"                total         used         free      shared  buff/cache   available",
		fmt.Sprintf("Mem:   %12d %11d %11d %11d %11d %11d",
			mem.Total/1024, mem.Used/1024, mem.Free/1024, mem.Shared/1024, mem.Buffers/1024, mem.Available/1024),
		fmt.Sprintf("Swap:   %12d %11d %11d", swap.Total/1024, swap.Used/1024, swap.Free/1024),
	}
	return 0, strings.Join(lines, "\n")
}

func cmdHistory(ctx context.Context, s *Session, args []string) (int, string) {
	return 0, s.history.Format()
}

func cmdClear(ctx context.Context, s *Session, args []string) (int, string) {
	if s.clear != nil {
		s.clear()
	}
	return 0, ""
}

func cmdExit(ctx context.Context, s *Session, args []string) (int, string) {
	s.running = false
	return 0, "Goodbye!"
}
