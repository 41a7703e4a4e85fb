package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/doeshing/jarvis-go/internal/ports"
)

// LocalRunner runs programs on the host.
type LocalRunner struct {
	shell string
}

// NewLocalRunner builds a new runner, shell defaults to $SHELL, then /bin/sh
// (cmd.exe on Windows).
func NewLocalRunner(shell string) *LocalRunner {
	if shell == "" || shell == "auto" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
		if runtime.GOOS == "windows" {
			shell = "cmd"
		}
	}
	return &LocalRunner{shell: shell}
}

// Run implements ports.Runner.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return run(exec.CommandContext(ctx, name, args...))
}

// Shell implements ports.Runner.
func (r *LocalRunner) Shell(ctx context.Context, command string) (string, error) {
	return run(exec.CommandContext(ctx, r.shell, r.shellArgs(command)...))
}

// Start implements ports.Runner.
func (r *LocalRunner) Start(command string) error {
	c := exec.Command(r.shell, r.shellArgs(command)...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}
	return c.Process.Release()
}

// LookPath implements ports.Runner.
func (r *LocalRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *LocalRunner) shellArgs(command string) []string {
	base := strings.ToLower(strings.TrimSuffix(r.shell, ".exe"))
	if strings.HasSuffix(base, "cmd") {
		return []string{"/C", command}
	}
	if strings.HasSuffix(base, "powershell") || strings.HasSuffix(base, "pwsh") {
		return []string{"-NoProfile", "-Command", command}
	}
	return []string{"-c", command}
}

// run returns stdout followed by stderr. A non-zero exit is an error that
// carries the exit code and the trimmed stderr.
func run(c *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" && !strings.HasSuffix(output, "\n") {
			output += "\n"
		}
		output += stderr.String()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return output, fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), msg)
	}
	if err != nil {
		return output, err
	}
	return output, nil
}

var _ ports.Runner = (*LocalRunner)(nil)
