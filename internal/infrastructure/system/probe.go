package system

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// HostInfo is a snapshot of the machine the assistant runs on.
type HostInfo struct {
	OS        string
	Kernel    string
	Arch      string
	Hostname  string
	User      string
	Shell     string
	Processor string
	CPUs      int
	Memory    MemoryStats
	Load      string
	Tools     []string
}

// MemoryStats is physical memory in bytes.
type MemoryStats struct {
	Total     uint64
	Available uint64
}

// UsedPercent returns the share of memory in use, 0 when unknown.
func (m MemoryStats) UsedPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Total-m.Available) / float64(m.Total) * 100
}

// HostProbe gathers HostInfo from the OS and a few helper programs.
type HostProbe struct {
	toolsToCheck []string
}

func NewHostProbe() *HostProbe {
	return &HostProbe{
		toolsToCheck: []string{"pactl", "amixer", "osascript", "pkill", "ping", "at", "systemctl", "pmset", "dpkg-query", "rpm", "flatpak", "xdg-open"},
	}
}

// Collect gathers host data. Missing pieces are left empty.
func (p *HostProbe) Collect(ctx context.Context) HostInfo {
	hostname, _ := os.Hostname()
	info := HostInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Hostname: hostname,
		User:     currentUser(),
		Shell:    detectShell(),
		CPUs:     runtime.NumCPU(),
		Tools:    p.detectTools(),
	}

	switch runtime.GOOS {
	case "linux":
		info.Kernel = strings.TrimSpace(runCmd(ctx, "", "uname", "-r"))
		info.Processor = cpuModel("/proc/cpuinfo")
		info.Memory = readMemInfo("/proc/meminfo")
		info.Load = readLoadAvg("/proc/loadavg")
	case "darwin":
		info.Kernel = strings.TrimSpace(runCmd(ctx, "", "uname", "-r"))
		info.Processor = strings.TrimSpace(runCmd(ctx, "", "sysctl", "-n", "machdep.cpu.brand_string"))
		if total, err := strconv.ParseUint(strings.TrimSpace(runCmd(ctx, "", "sysctl", "-n", "hw.memsize")), 10, 64); err == nil {
			info.Memory.Total = total
		}
	case "windows":
		info.Kernel = strings.TrimSpace(runCmd(ctx, "", "cmd", "/C", "ver"))
		info.Processor = os.Getenv("PROCESSOR_IDENTIFIER")
	}
	return info
}

func (p *HostProbe) detectTools() []string {
	var available []string
	for _, tool := range p.toolsToCheck {
		if _, err := exec.LookPath(tool); err == nil {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	if comspec := os.Getenv("COMSPEC"); comspec != "" {
		return filepath.Base(comspec)
	}
	return "unknown"
}

func cpuModel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// readMemInfo parses MemTotal and MemAvailable (kB) from a meminfo file.
func readMemInfo(path string) MemoryStats {
	f, err := os.Open(path)
	if err != nil {
		return MemoryStats{}
	}
	defer f.Close()

	var stats MemoryStats
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			stats.Total = kb * 1024
		case "MemAvailable:":
			stats.Available = kb * 1024
		}
	}
	return stats
}

func readLoadAvg(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return ""
	}
	return strings.Join(fields[:3], " ")
}

func runCmd(ctx context.Context, dir string, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()
	cmd := exec.CommandContext(cctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ""
	}
	return string(out)
}

// cpuTimes is the aggregate line of /proc/stat.
type cpuTimes struct {
	idle  uint64
	total uint64
}

func readCPUTimes(path string) (cpuTimes, bool) {
	f, err := os.Open(path)
	if err != nil {
		return cpuTimes{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return cpuTimes{}, false
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuTimes{}, false
	}
	var t cpuTimes
	for i, field := range fields[1:] {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return cpuTimes{}, false
		}
		t.total += v
		// idle and iowait
		if i == 3 || i == 4 {
			t.idle += v
		}
	}
	return t, true
}

// ResourceSample is one monitor_resources reading.
type ResourceSample struct {
	At            time.Time
	CPUPercent    float64
	MemoryPercent float64
}

// ProcSampler reads CPU and memory usage from procfs. CPU usage is measured
// between consecutive calls, so the first sample reports 0.
type ProcSampler struct {
	Root string
	prev cpuTimes
	ok   bool
}

// Sample implements Sampler.
func (s *ProcSampler) Sample() (ResourceSample, error) {
	root := s.Root
	if root == "" {
		root = "/proc"
	}
	mem := readMemInfo(filepath.Join(root, "meminfo"))
	if mem.Total == 0 {
		return ResourceSample{}, errUnsupported("resource monitoring")
	}
	sample := ResourceSample{At: time.Now(), MemoryPercent: mem.UsedPercent()}

	cur, ok := readCPUTimes(filepath.Join(root, "stat"))
	if ok && s.ok && cur.total > s.prev.total {
		busy := float64((cur.total - s.prev.total) - (cur.idle - s.prev.idle))
		sample.CPUPercent = busy / float64(cur.total-s.prev.total) * 100
	}
	s.prev, s.ok = cur, ok
	return sample, nil
}
