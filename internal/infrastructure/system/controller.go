// Package system implements the advanced-system actions of the catalog on the
// local machine: processes, files, power, network probes and raw commands.
package system

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const defaultPublicIPURL = "https://api.ipify.org?format=json"

// Prober collects host information for system_info.
type Prober interface {
	Collect(ctx context.Context) HostInfo
}

// Sampler produces one resource reading for monitor_resources.
type Sampler interface {
	Sample() (ResourceSample, error)
}

// Options configure a Controller. Only Runner is required.
type Options struct {
	Runner ports.Runner
	// Guard screens execute_command; nil disables screening.
	Guard  ports.SecurityService
	Logger ports.Logger
	Probe  Prober
	// Sampler defaults to a ProcSampler.
	Sampler     Sampler
	HTTPClient  *http.Client
	PublicIPURL string
	// GOOS selects platform commands; defaults to runtime.GOOS.
	GOOS string
	// Tick is the monitor_resources sampling interval.
	Tick time.Duration
}

type handler func(ctx context.Context, p domain.Params) (string, error)

// Controller executes catalog actions. It implements ports.ActionExecutor.
type Controller struct {
	opts     Options
	handlers map[domain.ActionID]handler
}

// NewController wires one handler per catalog action.
func NewController(opts Options) *Controller {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Probe == nil {
		opts.Probe = NewHostProbe()
	}
	if opts.Sampler == nil {
		opts.Sampler = &ProcSampler{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.PublicIPURL == "" {
		opts.PublicIPURL = defaultPublicIPURL
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}

	c := &Controller{opts: opts}
	c.handlers = map[domain.ActionID]handler{
		domain.ActionKillProcess:       c.killProcess,
		domain.ActionStartProcess:      c.startProcess,
		domain.ActionListProcesses:     c.listProcesses,
		domain.ActionSystemInfo:        c.systemInfo,
		domain.ActionNetworkInfo:       c.networkInfo,
		domain.ActionCreateFile:        createFile,
		domain.ActionDeleteFile:        deleteFile,
		domain.ActionCopyFile:          copyFile,
		domain.ActionMoveFile:          moveFile,
		domain.ActionListDirectory:     listDirectory,
		domain.ActionShutdown:          c.shutdown,
		domain.ActionRestart:           c.restart,
		domain.ActionHibernate:         c.hibernate,
		domain.ActionSleep:             c.sleep,
		domain.ActionPing:              c.ping,
		domain.ActionPublicIP:          c.publicIP,
		domain.ActionExecuteCommand:    c.executeCommand,
		domain.ActionScheduleTask:      c.scheduleTask,
		domain.ActionInstalledPrograms: c.installedPrograms,
		domain.ActionMonitorResources:  c.monitorResources,
	}
	return c
}

// Actions lists the actions this controller can run.
func (c *Controller) Actions() []domain.ActionID {
	ids := make([]domain.ActionID, 0, len(c.handlers))
	for id := range c.handlers {
		ids = append(ids, id)
	}
	return ids
}

// Run implements ports.ActionExecutor.
func (c *Controller) Run(ctx context.Context, action domain.ActionID, params domain.Params) (string, error) {
	h, ok := c.handlers[action]
	if !ok {
		return "", domain.Errorf(domain.KindUnknownAction, "system.run", "no handler for %q", action)
	}
	if params == nil {
		params = domain.Params{}
	}
	return h(ctx, params)
}

func errUnsupported(what string) error {
	return fmt.Errorf("%s is not supported on %s", what, runtime.GOOS)
}

func (c *Controller) warn(msg string, fields map[string]interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(msg, fields)
	}
}

func (c *Controller) killProcess(ctx context.Context, p domain.Params) (string, error) {
	target := strings.TrimSpace(p.Text("process_name", ""))
	if target == "" {
		return "", fmt.Errorf("process_name is empty")
	}
	pid, err := strconv.Atoi(target)
	isPID := err == nil && pid > 0

	var args []string
	var name string
	switch {
	case c.opts.GOOS == "windows" && isPID:
		name, args = "taskkill", []string{"/f", "/pid", target}
	case c.opts.GOOS == "windows":
		image := target
		if !strings.HasSuffix(strings.ToLower(image), ".exe") {
			image += ".exe"
		}
		name, args = "taskkill", []string{"/f", "/im", image}
	case isPID:
		name, args = "kill", []string{target}
	default:
		name, args = "pkill", []string{"-i", target}
	}

	if _, err := c.opts.Runner.Run(ctx, name, args...); err != nil {
		return "", fmt.Errorf("no process matching %q could be terminated: %w", target, err)
	}
	if isPID {
		return fmt.Sprintf("Process %d terminated", pid), nil
	}
	return fmt.Sprintf("Terminated processes matching '%s'", target), nil
}

func (c *Controller) startProcess(_ context.Context, p domain.Params) (string, error) {
	path := strings.TrimSpace(p.Text("executable_path", ""))
	if path == "" {
		return "", fmt.Errorf("executable_path is empty")
	}
	command := path
	if args := strings.TrimSpace(p.Text("args", "")); args != "" {
		command += " " + args
	}
	if err := c.opts.Runner.Start(command); err != nil {
		return "", err
	}
	return fmt.Sprintf("Started process: %s", path), nil
}

func (c *Controller) listProcesses(ctx context.Context, _ domain.Params) (string, error) {
	var out string
	var err error
	if c.opts.GOOS == "windows" {
		out, err = c.opts.Runner.Run(ctx, "tasklist", "/fo", "csv", "/nh")
	} else {
		out, err = c.opts.Runner.Run(ctx, "ps", "-eo", "pid=,comm=")
	}
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}
	return fmt.Sprintf("Found %d running processes", len(nonEmptyLines(out))), nil
}

var (
	taskNamePattern = regexp.MustCompile(`^[A-Za-z0-9_. -]{1,64}$`)
	clockPattern    = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
)

func (c *Controller) scheduleTask(ctx context.Context, p domain.Params) (string, error) {
	name := p.Text("task_name", "JARVIS_Task")
	command := strings.TrimSpace(p.Text("command", ""))
	at := strings.TrimSpace(p.Text("schedule_time", "12:00"))

	if command == "" {
		return "", fmt.Errorf("command is empty")
	}
	if !taskNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid task name %q", name)
	}
	if !clockPattern.MatchString(at) {
		return "", fmt.Errorf("schedule_time must be HH:MM, got %q", at)
	}
	if err := c.screen(command); err != nil {
		return "", err
	}

	var err error
	if c.opts.GOOS == "windows" {
		_, err = c.opts.Runner.Run(ctx, "schtasks", "/create", "/tn", name, "/tr", command, "/sc", "once", "/st", at)
	} else {
		if !c.opts.Runner.LookPath("at") {
			return "", fmt.Errorf("scheduling needs the 'at' command")
		}
		_, err = c.opts.Runner.Shell(ctx, fmt.Sprintf("echo %s | at %s", shellQuote(command), at))
	}
	if err != nil {
		return "", fmt.Errorf("schedule task: %w", err)
	}
	return fmt.Sprintf("Task '%s' scheduled successfully", name), nil
}

func (c *Controller) installedPrograms(ctx context.Context, _ domain.Params) (string, error) {
	type source struct {
		tool string
		args []string
	}
	var sources []source
	switch c.opts.GOOS {
	case "windows":
		sources = []source{{"winget", []string{"list", "--disable-interactivity"}}}
	case "darwin":
		sources = []source{{"ls", []string{"/Applications"}}, {"brew", []string{"list", "-1"}}}
	default:
		sources = []source{
			{"dpkg-query", []string{"-f", "${binary:Package}\n", "-W"}},
			{"rpm", []string{"-qa"}},
			{"pacman", []string{"-Qq"}},
			{"apk", []string{"info"}},
			{"flatpak", []string{"list", "--app", "--columns=application"}},
		}
	}

	total := 0
	var used []string
	for _, s := range sources {
		if !c.opts.Runner.LookPath(s.tool) {
			continue
		}
		out, err := c.opts.Runner.Run(ctx, s.tool, s.args...)
		if err != nil {
			c.warn("package listing failed", map[string]interface{}{"tool": s.tool, "error": err.Error()})
			continue
		}
		total += len(nonEmptyLines(out))
		used = append(used, s.tool)
	}
	if len(used) == 0 {
		return "", errUnsupported("listing installed programs")
	}
	return fmt.Sprintf("Found %d installed programs (%s)", total, strings.Join(used, ", ")), nil
}

func (c *Controller) monitorResources(ctx context.Context, p domain.Params) (string, error) {
	duration := p.Int("duration", 10)
	if duration < 1 {
		duration = 1
	}
	if duration > domain.MaxMonitorSeconds {
		duration = domain.MaxMonitorSeconds
	}

	var samples []ResourceSample
	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()
	for len(samples) < duration {
		sample, err := c.opts.Sampler.Sample()
		if err != nil {
			return "", err
		}
		samples = append(samples, sample)
		if len(samples) == duration {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}

	var cpuSum, memPeak float64
	for _, s := range samples {
		cpuSum += s.CPUPercent
		if s.MemoryPercent > memPeak {
			memPeak = s.MemoryPercent
		}
	}
	return fmt.Sprintf("System monitoring completed for %d seconds: average CPU %.1f%%, peak memory %.1f%%",
		len(samples), cpuSum/float64(len(samples)), memPeak), nil
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var _ ports.ActionExecutor = (*Controller)(nil)
