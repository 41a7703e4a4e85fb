package executors

import (
	"fmt"
	"os/exec"

	"github.com/skratchdot/open-golang/open"

	"github.com/doeshing/jarvis-go/internal/ports"
)

// DesktopLauncher hands URLs and files to the desktop's default handlers.
type DesktopLauncher struct{}

// NewDesktopLauncher returns the launcher used outside tests.
func NewDesktopLauncher() *DesktopLauncher {
	return &DesktopLauncher{}
}

func (DesktopLauncher) OpenURL(url string) error {
	if err := open.Start(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

func (DesktopLauncher) OpenFile(path string) error {
	if err := open.Start(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

// StartApp starts a program found in PATH and does not wait for it.
func (DesktopLauncher) StartApp(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("application %s not found: %w", name, err)
	}
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return cmd.Process.Release()
}

var _ ports.Launcher = DesktopLauncher{}
