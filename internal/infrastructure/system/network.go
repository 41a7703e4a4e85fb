package system

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"github.com/doeshing/jarvis-go/internal/domain"
)

var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.:-]*$`)

func (c *Controller) ping(ctx context.Context, p domain.Params) (string, error) {
	host := strings.TrimSpace(p.Text("hostname", "google.com"))
	if !hostnamePattern.MatchString(host) {
		return "", fmt.Errorf("invalid hostname %q", host)
	}
	countFlag := "-c"
	if c.opts.GOOS == "windows" {
		countFlag = "-n"
	}
	out, err := c.opts.Runner.Run(ctx, "ping", countFlag, "4", host)
	if err != nil {
		return "", fmt.Errorf("ping %s: %w", host, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Controller) publicIP(ctx context.Context, _ domain.Params) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.PublicIPURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("public ip lookup: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("public ip lookup: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public ip lookup: HTTP %d", resp.StatusCode)
	}
	ip := gjson.GetBytes(body, "ip").String()
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("public ip lookup: unexpected response %q", strings.TrimSpace(string(body)))
	}
	return fmt.Sprintf("Public IP: %s", ip), nil
}

func (c *Controller) networkInfo(_ context.Context, _ domain.Params) (string, error) {
	hostname, _ := os.Hostname()
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("network interfaces: %w", err)
	}

	primary := ""
	var lines []string
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		var shown []string
		for _, addr := range addrs {
			shown = append(shown, addr.String())
			ipNet, ok := addr.(*net.IPNet)
			if ok && primary == "" && iface.Flags&net.FlagLoopback == 0 && ipNet.IP.To4() != nil {
				primary = ipNet.IP.String()
			}
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", iface.Name, strings.Join(shown, ", ")))
	}
	sort.Strings(lines)
	if primary == "" {
		primary = "unknown"
	}
	return fmt.Sprintf("Hostname: %s, IP: %s\n%s", hostname, primary, strings.Join(lines, "\n")), nil
}

func (c *Controller) systemInfo(ctx context.Context, _ domain.Params) (string, error) {
	info := c.opts.Probe.Collect(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "System: %s %s (%s)\n", info.OS, info.Kernel, info.Arch)
	processor := info.Processor
	if processor == "" {
		processor = "Unknown"
	}
	fmt.Fprintf(&b, "Processor: %s\n", processor)
	fmt.Fprintf(&b, "CPU Count: %d\n", info.CPUs)
	if info.Memory.Total > 0 {
		fmt.Fprintf(&b, "Memory: %s total", humanize.IBytes(info.Memory.Total))
		if info.Memory.Available > 0 {
			fmt.Fprintf(&b, ", %.1f%% used", info.Memory.UsedPercent())
		}
		b.WriteString("\n")
	}
	if info.Load != "" {
		fmt.Fprintf(&b, "Load: %s\n", info.Load)
	}
	fmt.Fprintf(&b, "Host: %s (user %s, shell %s)", info.Hostname, info.User, info.Shell)
	if len(info.Tools) > 0 {
		fmt.Fprintf(&b, "\nTools: %s", strings.Join(info.Tools, ", "))
	}
	return b.String(), nil
}
